package middleware

import (
	"errors"
	"strings"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const currentUserKey = "current_user"

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}

// JWTProtected verifies the bearer access token and loads its user into
// the request context.
func JWTProtected(authService *services.AuthService, cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTAccessSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c)
			}
			userID, err := services.SubjectFromClaims(claims)
			if err != nil {
				return unauthorized(c)
			}
			user, err := authService.ResolveUser(c.UserContext(), userID)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					return unauthorized(c)
				}
				return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
					Error: true, Message: "Internal server error",
				})
			}
			c.Locals(currentUserKey, user)
			return c.Next()
		},
	})
}

// OptionalUser attaches the caller when a valid bearer token is present and
// lets anonymous requests through.
func OptionalUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			if user, err := authService.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(currentUserKey, user)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
