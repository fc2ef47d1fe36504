package handlers

import (
	"errors"

	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const UserIDKey = "user_id"

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals(UserIDKey).(int64)
	return userID
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// statusFor maps service and repository errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnknownPlatform):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrLimitReached):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError writes the error envelope. Internal errors are logged and hidden from the client.
func handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int64("user_id", GetUserID(c)),
			zap.Error(err))
		return fail(c, status, "internal server error")
	}
	return fail(c, status, err.Error())
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int64(id), nil
}
