package handlers

import (
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	sessionDuration = 24 * time.Hour
	stateCookie     = "oauth_state"
)

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) secureCookies() bool {
	return h.cfg.AppEnv != "dev" && h.cfg.AppEnv != "development"
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state, err := utils.GenerateRandomKey(16)
	if err != nil {
		return handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		HTTPOnly: true,
		Secure:   h.secureCookies(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/login",
		Expires:  time.Now().Add(10 * time.Minute),
	})
	return c.Redirect(h.s.LoginURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) LoginCallbackHandler(c *fiber.Ctx) error {
	state := c.Cookies(stateCookie)
	if state == "" || state != c.Query("state") {
		return fail(c, fiber.StatusBadRequest, "invalid login state")
	}
	c.ClearCookie(stateCookie)

	userID, err := h.s.LoginCallback(c.Context(), c.Query("code"))
	if err != nil {
		logger.Log.Warn("google login", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "login failed")
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, userID, "", sessionDuration)
	if err != nil {
		return handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.secureCookies(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return success(c, fiber.StatusOK, nil)
}
