package handlers

import (
	"finease/internal/dto"
	"finease/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// @Summary Current identity
// @Description Returns the identity the bearer token was verified as.
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.IdentityResponse
// @Failure 401 {object} dto.MessageResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}
	return c.JSON(dto.IdentityResponse{
		UID:   identity.UID,
		Email: identity.Email,
	})
}
