package serverutils

import (
	"errors"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping a handler into structured
// JSON. Upstream error bodies, credentials, and stack traces stay in the
// server log; the client gets a generic message and a status code.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		case apperror.IsKind(err, apperror.KindInvalidInput):
			status = fiber.StatusBadRequest
			message = err.Error()
		}

		if status >= 500 {
			log.Error("http", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		} else {
			log.Warn("http", "request rejected", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}

		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}
