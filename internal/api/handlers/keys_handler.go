package handlers

import (
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type ApiKeyHandler struct {
	s service.ApiKeyService
}

func NewApiKeyHandler(service service.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{s: service}
}

func (h *ApiKeyHandler) CreateApiKey(c *fiber.Ctx) error {
	var req transfer.ApiKeyCreation
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "unable to parse request")
		}
	}

	key, err := h.s.Create(c.Context(), GetUserID(c), req.Name)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusCreated, key)
}

func (h *ApiKeyHandler) ListKeys(c *fiber.Ctx) error {
	keys, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, keys)
}

func (h *ApiKeyHandler) RemoveAPIKey(c *fiber.Ctx) error {
	keyID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.s.RemoveAPIKey(c.Context(), GetUserID(c), keyID); err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, nil)
}
