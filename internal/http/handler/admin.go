package handler

import (
	"errors"
	"strings"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetAllAdmins - daftar akun panitia
func GetAllAdmins(c *fiber.Ctx) error {
	rows, err := config.DB.Query("SELECT id, nama, email FROM admins ORDER BY nama ASC")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data admin",
		})
	}
	defer rows.Close()

	admins := []models.AdminResponse{}
	for rows.Next() {
		var a models.AdminResponse
		if err := rows.Scan(&a.ID, &a.Nama, &a.Email); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Gagal membaca data admin",
			})
		}
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membaca data admin",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    admins,
	})
}

// CreateAdmin - tambah akun panitia baru
func CreateAdmin(c *fiber.Ctx) error {
	var req models.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nama = strings.TrimSpace(req.Nama)
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	_, err := helper.GetAdminByEmail(req.Email)
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Email admin sudah terdaftar",
		})
	}
	if !errors.Is(err, helper.ErrAdminNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal validasi admin",
		})
	}

	admin, err := CreateAdminAccount(req.Nama, req.Email, req.Password)
	if helper.IsDuplicateKey(err) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Email admin sudah terdaftar",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membuat admin",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Admin berhasil dibuat",
		"data":    models.ToAdminResponse(admin),
	})
}

// CreateAdminAccount hash password lalu simpan admin. Dipakai juga oleh cmd/migrate.
func CreateAdminAccount(nama, email, password string) (models.Admin, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Admin{}, err
	}

	now := config.Now()
	result, err := config.DB.Exec(
		"INSERT INTO admins (nama, email, password, created_at) VALUES (?, ?, ?, ?)",
		nama, email, string(hashed), now,
	)
	if err != nil {
		return models.Admin{}, err
	}

	id, _ := result.LastInsertId()
	return models.Admin{ID: id, Nama: nama, Email: email, CreatedAt: now}, nil
}
