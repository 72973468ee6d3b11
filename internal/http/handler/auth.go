package handler

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoginFailures = 5
	loginFailWindow  = 15 * time.Minute
)

func loginFailKey(scope, id string) string {
	return fmt.Sprintf("login:fail:%s:%s", scope, strings.ToLower(id))
}

// loginBlocked - true kalau gagal login sudah mencapai batas dalam window.
func loginBlocked(c *fiber.Ctx, key string) bool {
	n, err := config.Redis.Get(c.Context(), key).Int()
	return err == nil && n >= maxLoginFailures
}

func recordLoginFailure(c *fiber.Ctx, key string) {
	pipe := config.Redis.TxPipeline()
	pipe.Incr(c.Context(), key)
	pipe.Expire(c.Context(), key, loginFailWindow)
	if _, err := pipe.Exec(c.Context()); err != nil {
		log.Printf("[auth] gagal mencatat login gagal %s: %v", key, err)
	}
}

func clearLoginFailures(c *fiber.Ctx, key string) {
	config.Redis.Del(c.Context(), key)
}

func tooManyAttempts(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"success": false,
		"error":   "Terlalu banyak percobaan login, coba lagi dalam 15 menit",
	})
}

// AdminLogin - login panitia dengan email dan password
func AdminLogin(c *fiber.Ctx) error {
	var req models.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Email dan password harus diisi",
		})
	}

	key := loginFailKey("admin", req.Email)
	if loginBlocked(c, key) {
		return tooManyAttempts(c)
	}

	if config.RecaptchaEnabled() {
		if req.RecaptchaToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "reCAPTCHA token tidak valid",
			})
		}

		ok, score, err := config.VerifyRecaptcha(req.RecaptchaToken)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Gagal verifikasi reCAPTCHA",
			})
		}

		if !ok || score < 0.5 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Aktivitas mencurigakan terdeteksi",
			})
		}
	}

	admin, err := helper.GetAdminByEmail(req.Email)
	if errors.Is(err, helper.ErrAdminNotFound) {
		recordLoginFailure(c, key)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Email atau password salah",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		recordLoginFailure(c, key)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Email atau password salah",
		})
	}
	clearLoginFailures(c, key)

	token, expiresAt, err := config.GenerateToken(admin.ID, admin.Nama, config.RoleAdmin)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login berhasil! Selamat datang kembali, " + admin.Nama,
		"data": models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      models.ToAdminResponse(admin),
		},
	})
}

// ParticipantLogin - login peserta dengan NIM dan password
func ParticipantLogin(c *fiber.Ctx) error {
	var req models.ParticipantLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	key := loginFailKey("participant", req.NIM)
	if loginBlocked(c, key) {
		return tooManyAttempts(c)
	}

	p, namaKelas, err := helper.GetParticipantByNIM(req.NIM)
	if errors.Is(err, helper.ErrParticipantNotFound) {
		recordLoginFailure(c, key)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "NIM atau password salah",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(req.Password)); err != nil {
		recordLoginFailure(c, key)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "NIM atau password salah",
		})
	}
	clearLoginFailures(c, key)

	token, expiresAt, err := config.GenerateToken(p.ID, p.Nama, config.RoleParticipant)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login berhasil! Selamat datang, " + p.Nama,
		"data": models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      models.ToParticipantResponse(p, namaKelas),
		},
	})
}

// Me - data user yang sedang login
func Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	role := c.Locals("role").(string)

	if role == config.RoleAdmin {
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":   userID,
				"nama": c.Locals("nama"),
				"role": role,
			},
		})
	}

	p, namaKelas, err := helper.GetParticipantByID(userID)
	if errors.Is(err, helper.ErrParticipantNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Peserta tidak ditemukan",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data peserta",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.ToParticipantResponse(p, namaKelas),
	})
}
