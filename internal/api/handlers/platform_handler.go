package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const stateDuration = 10 * time.Minute

type PlatformHandler struct {
	ps  service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(ps service.PlatformService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		cfg: cfg,
	}
}

// Connect redirects to the platform consent screen. The state is a short-lived
// token naming the user, since the callback arrives without the session cookie
// on some platforms. mode=oauth1 selects the OAuth 1.0a flow where offered.
func (h *PlatformHandler) Connect(c *fiber.Ctx) error {
	state, err := utils.GenerateStateToken(h.cfg.SecretKey, GetUserID(c), stateDuration)
	if err != nil {
		return handleError(c, err)
	}

	var authURL string
	if c.Query("mode") == "oauth1" {
		authURL, err = h.ps.GetOAuth1URL(c.Context(), c.Params("platform"), state)
	} else {
		authURL, err = h.ps.GetAuthURL(c.Context(), c.Params("platform"), state)
	}
	if err != nil {
		return handleError(c, err)
	}

	if c.Query("redirect") == "false" {
		return success(c, fiber.StatusOK, fiber.Map{"url": authURL})
	}
	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) accountsPage(values url.Values) string {
	return fmt.Sprintf("%s/dashboard/accounts?%s", h.cfg.FrontendURL, values.Encode())
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	platform := c.Params("platform")

	if denied := c.Query("error"); denied != "" {
		return c.Redirect(h.accountsPage(url.Values{"error": {denied}, "platform": {platform}}), fiber.StatusTemporaryRedirect)
	}
	if c.Query("denied") != "" {
		return c.Redirect(h.accountsPage(url.Values{"error": {"access_denied"}, "platform": {platform}}), fiber.StatusTemporaryRedirect)
	}

	state := c.Query("state")
	claims, err := utils.ValidateStateToken(h.cfg.SecretKey, state)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid or expired state")
	}

	if verifier := c.Query("oauth_verifier"); verifier != "" {
		err = h.ps.OAuth1Callback(c.Context(), platform, c.Query("oauth_token"), verifier, claims.UserID)
	} else {
		err = h.ps.Callback(c.Context(), platform, c.Query("code"), state, claims.UserID)
	}
	if err != nil {
		logger.Log.Warn("social account callback",
			zap.String("platform", platform),
			zap.Int64("user_id", claims.UserID),
			zap.Error(err))

		reason := "connection_failed"
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			reason = "account_already_connected"
		case errors.Is(err, repository.ErrForeignKey):
			reason = "user_not_found"
		case errors.Is(err, service.ErrUnknownPlatform):
			reason = "unsupported_platform"
		}
		return c.Redirect(h.accountsPage(url.Values{"error": {reason}, "platform": {platform}}), fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(h.accountsPage(url.Values{"connected": {platform}}), fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	accountList, err := h.ps.List(c.Context(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	accountID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.ps.Delete(c.Context(), GetUserID(c), accountID); err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, nil)
}
