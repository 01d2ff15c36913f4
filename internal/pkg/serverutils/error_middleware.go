package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts uncaught errors into the standard JSON
// envelope so handlers can simply return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
