package handlers

import (
	"context"
	"time"

	"finease/pkg/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HealthHandler struct {
	gateway store.Gateway
	timeout time.Duration
	logger  *zap.Logger
}

func NewHealthHandler(gateway store.Gateway, timeout time.Duration, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		gateway: gateway,
		timeout: timeout,
		logger:  logger,
	}
}

// Greeting godoc
// @Summary Greeting
// @Tags health
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func (h *HealthHandler) Greeting(c *fiber.Ctx) error {
	return c.SendString("Hello FinEase Server")
}

// Health godoc
// @Summary Readiness probe
// @Description Reports whether the store can be reached.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.gateway.Connect(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
