package handlers

import (
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: service}
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	days := c.QueryInt("days", service.DefaultAnalyticsDays)

	overview, err := h.s.Overview(c.Context(), GetUserID(c), days)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, overview)
}

func (h *AnalyticsHandler) PostAnalytics(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.s.PostAnalytics(c.Context(), GetUserID(c), postID)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, rows)
}

func (h *AnalyticsHandler) Refresh(c *fiber.Ctx) error {
	result, err := h.s.Refresh(c.Context(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, result)
}
