package handlers

import (
	"errors"

	"finease/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError is the single place service failures become HTTP responses.
// fallback is shown for server-side failures; their details are only logged.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	status, message := classify(err, fallback)
	if status >= fiber.StatusInternalServerError {
		logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}

func classify(err error, fallback string) (int, string) {
	var svcErr *service.Error
	public := func(def string) string {
		if errors.As(err, &svcErr) {
			return svcErr.Message
		}
		return def
	}

	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return fiber.StatusBadRequest, public("Bad request")
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, service.ErrInvalidCredential):
		return fiber.StatusUnauthorized, "Invalid token"
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, public("Forbidden")
	case errors.Is(err, service.ErrStoreUnavailable):
		return fiber.StatusInternalServerError, "Database connection failed"
	default:
		return fiber.StatusInternalServerError, fallback
	}
}
