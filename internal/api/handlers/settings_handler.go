package handlers

import (
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	s service.SettingsService
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{s: service}
}

func (h *SettingsHandler) GetSettingsInfo(c *fiber.Ctx) error {
	settingsInfo, err := h.s.GetSettingsInfo(c.Context(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, settingsInfo)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req transfer.SettingsUpdate
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "unable to parse request")
	}

	settings, err := h.s.UpdateSettings(c.Context(), GetUserID(c), &req)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, settings)
}
