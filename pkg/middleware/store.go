package middleware

import (
	"finease/pkg/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequireStore makes sure the store connection is up before the handler runs.
func RequireStore(gateway store.Gateway, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := gateway.Connect(c.UserContext()); err != nil {
			logger.Error("Database connection failed", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Database connection failed",
			})
		}
		return c.Next()
	}
}
