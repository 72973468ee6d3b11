package middleware

import (
	"errors"
	"strings"

	"backend-evoting/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RevokedKey - key Redis untuk jti token yang sudah logout.
func RevokedKey(jti string) string {
	return "auth:revoked:" + jti
}

func JWTAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing authorization header",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid authorization format",
			})
		}

		claims, err := config.ValidateToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}

		err = config.Redis.Get(c.Context(), RevokedKey(claims.ID)).Err()
		if err == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Sesi sudah berakhir, silakan login kembali",
			})
		}
		if !errors.Is(err, redis.Nil) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   "Gagal memvalidasi sesi",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("nama", claims.Nama)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)

		return c.Next()
	}
}

func RoleAuth(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Anda tidak memiliki akses ke resource ini",
		})
	}
}
