package handlers

import (
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	s     service.UserService
	usage service.UsageService
}

func NewUserHandler(service service.UserService, usage service.UsageService) *UserHandler {
	return &UserHandler{s: service, usage: usage}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userInfo, err := h.s.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, userInfo)
}

func (h *UserHandler) GetUsage(c *fiber.Ctx) error {
	info, err := h.usage.Info(c.Context(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, info)
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.s.RemoveUser(c.Context(), GetUserID(c)); err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, nil)
}
