package middleware

import (
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ActiveArtistRequired rejects callers without a live artist subscription.
// It runs after JWTProtected, before any upload is read.
func ActiveArtistRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthorized(c)
		}
		if !services.IsActiveArtist(user, time.Now()) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: services.ErrNotArtist.Error(),
			})
		}
		return c.Next()
	}
}
