package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrNotFound marks service-level lookups that found nothing; the middleware
// maps it to a 404 instead of a 500.
var ErrNotFound = errors.New("resource not found")

// ErrorHandlerMiddleware converts errors escaping controllers into the
// standard response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, ErrNotFound):
			code = fiber.StatusNotFound
		}

		return ctx.Status(code).JSON(ErrorResponse(message))
	}
}
