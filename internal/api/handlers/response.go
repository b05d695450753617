package handlers

import (
	"errors"

	"album-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// writeError maps a service error to its status. Only the caller facing
// message of known errors leaves the service.
func writeError(c fiber.Ctx, log *zap.Logger, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, service.ErrValidation):
		status, message = fiber.StatusBadRequest, service.Message(err)
	case errors.Is(err, service.ErrUnauthenticated):
		status, message = fiber.StatusUnauthorized, service.Message(err)
	case errors.Is(err, service.ErrForbidden):
		status, message = fiber.StatusForbidden, service.Message(err)
	case errors.Is(err, service.ErrNotFound):
		status, message = fiber.StatusNotFound, service.Message(err)
	case errors.Is(err, service.ErrUpload):
		status, message = fiber.StatusBadGateway, "Media host request failed"
	case errors.Is(err, service.ErrOAuth):
		status, message = fiber.StatusUnauthorized, "Authentication with Google failed"
	}

	if status >= fiber.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// ErrorHandler answers errors that escape the handlers, including the ones
// fiber raises itself.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
				return badRequest(c, "Request body is too large")
			}
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}
		return writeError(c, log, err)
	}
}
