package handlers

import (
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	s service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{s: service}
}

func (h *AdminHandler) SystemMetrics(c *fiber.Ctx) error {
	m, err := h.s.SystemMetrics(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, m)
}

func (h *AdminHandler) ListAIModels(c *fiber.Ctx) error {
	list, err := h.s.ListAIModels(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, list)
}

func (h *AdminHandler) CreateAIModel(c *fiber.Ctx) error {
	var req transfer.AIModelRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "unable to parse request")
	}

	m, err := h.s.CreateAIModel(c.Context(), &req)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusCreated, m)
}

func (h *AdminHandler) UpdateAIModel(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req transfer.AIModelRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "unable to parse request")
	}

	m, err := h.s.UpdateAIModel(c.Context(), id, &req)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, m)
}

func (h *AdminHandler) SetDefaultAIModel(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.s.SetDefaultAIModel(c.Context(), id); err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, nil)
}
