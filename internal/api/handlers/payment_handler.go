package handlers

import (
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	s service.SubscriptionService
}

func NewPaymentHandler(service service.SubscriptionService) *PaymentHandler {
	return &PaymentHandler{s: service}
}

func (h *PaymentHandler) PaymentWebhook(c *fiber.Ctx) error {
	var requestData transfer.SubscriptionEvent
	if err := c.BodyParser(&requestData); err != nil {
		logger.Log.Warn("payment webhook body", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "unable to parse event")
	}

	if err := h.s.HandleSubscription(c.Context(), &requestData); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
