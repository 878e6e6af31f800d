package middleware

import (
	"context"
	"strings"
	"time"

	"finease/pkg/auth"
	"finease/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token on every request and stores the caller's identity.
func AuthMiddleware(verifier auth.Verifier, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			logger.Warn("Missing authorization token", zap.String("path", c.Path()))
			if m != nil {
				m.IncrementAuthFailure("missing")
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			logger.Warn("Invalid token", zap.String("path", c.Path()), zap.Error(err))
			if m != nil {
				m.IncrementAuthFailure("invalid")
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware, or nil.
func IdentityFrom(c *fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals(identityKey).(*auth.Identity)
	return identity
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
