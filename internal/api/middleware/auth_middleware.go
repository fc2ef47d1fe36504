package middleware

import (
	"strings"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/api/handlers"
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-API-Key"

type AuthMiddleware struct {
	keys  service.ApiKeyService
	users service.UserService
	cfg   config.Config
}

func NewAuthMiddleware(cfg config.Config, keys service.ApiKeyService, users service.UserService) *AuthMiddleware {
	return &AuthMiddleware{keys: keys, users: users, cfg: cfg}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func apiKey(c *fiber.Ctx) string {
	if k := c.Get(apiKeyHeader); k != "" {
		return k
	}
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "ApiKey ") {
		return strings.TrimPrefix(auth, "ApiKey ")
	}
	return c.Query("api_key")
}

// AuthMiddleware accepts either an API key or the session cookie and stores the user id in locals.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key := apiKey(c); key != "" {
			userID, err := m.keys.GetUserID(c.Context(), key)
			if err != nil {
				return unauthorized(c, "invalid api key")
			}
			c.Locals(handlers.UserIDKey, userID)
			return c.Next()
		}

		tokenString := c.Cookies(m.cfg.CookieName)
		if tokenString == "" {
			return unauthorized(c, "missing api key or session")
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			logger.Log.Debug("token validation failed", zap.Error(err))
			return unauthorized(c, "invalid or expired session")
		}

		c.Locals(handlers.UserIDKey, claims.UserID)
		return c.Next()
	}
}

// AdminOnly lets through users whose email is listed in ADMIN_EMAILS. It must run after AuthMiddleware.
func (m *AuthMiddleware) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := m.users.GetUserInfo(c.Context(), handlers.GetUserID(c))
		if err != nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "admin access required",
			})
		}
		return c.Next()
	}
}
