package handler

import (
	"log"
	"time"

	"backend-evoting/internal/config"
	"backend-evoting/internal/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// Logout cabut token sampai masa berlakunya habis.
func Logout(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*config.JWTClaims)

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(config.Now()); remaining > 0 {
			ttl = remaining
		}
	}

	if err := config.Redis.Set(c.Context(), middleware.RevokedKey(claims.ID), 1, ttl).Err(); err != nil {
		log.Printf("[auth] gagal mencabut token %s: %v", claims.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Logout gagal",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout berhasil",
	})
}
