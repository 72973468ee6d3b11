package handler

import (
	"database/sql"
	"errors"
	"strings"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"

	"github.com/gofiber/fiber/v2"
)

const classColumns = "id, nama_kelas, angkatan, created_at, updated_at"

func scanClass(row interface{ Scan(...any) error }) (models.Class, error) {
	var cl models.Class
	err := row.Scan(&cl.ID, &cl.NamaKelas, &cl.Angkatan, &cl.CreatedAt, &cl.UpdatedAt)
	return cl, err
}

func classFilter(c *fiber.Ctx) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if angkatan := c.QueryInt("angkatan", 0); angkatan > 0 {
		where += " AND angkatan = ?"
		args = append(args, angkatan)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		where += " AND nama_kelas LIKE ?"
		args = append(args, "%"+search+"%")
	}

	return where, args
}

func queryClasses(query string, args ...interface{}) ([]models.Class, error) {
	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []models.Class{}
	for rows.Next() {
		cl, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, cl)
	}
	return classes, rows.Err()
}

// GetAllClasses - Ambil semua kelas
func GetAllClasses(c *fiber.Ctx) error {
	where, args := classFilter(c)

	classes, err := queryClasses("SELECT "+classColumns+" FROM classes"+where+" ORDER BY angkatan DESC, nama_kelas ASC", args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kelas",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    classes,
	})
}

// GetAllClassesPagination - Ambil kelas dengan pagination
func GetAllClassesPagination(c *fiber.Ctx) error {
	p := helper.ParsePagination(c)
	where, args := classFilter(c)

	var totalData int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM classes"+where, args...).Scan(&totalData); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghitung total data",
		})
	}

	args = append(args, p.Limit, p.Offset)
	classes, err := queryClasses("SELECT "+classColumns+" FROM classes"+where+" ORDER BY angkatan DESC, nama_kelas ASC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kelas",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       classes,
		"pagination": p.Meta(totalData),
	})
}

// GetClassByID - Ambil kelas berdasarkan ID
func GetClassByID(c *fiber.Ctx) error {
	id := c.Params("id")

	cl, err := scanClass(config.DB.QueryRow("SELECT "+classColumns+" FROM classes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas tidak ditemukan",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kelas",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cl,
	})
}

// CreateClass - Buat kelas baru
func CreateClass(c *fiber.Ctx) error {
	var req models.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.NamaKelas = strings.TrimSpace(req.NamaKelas)
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var count int
	err := config.DB.QueryRow(
		"SELECT COUNT(*) FROM classes WHERE nama_kelas = ? AND angkatan = ?",
		req.NamaKelas, req.Angkatan,
	).Scan(&count)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal validasi kelas",
		})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas dengan nama dan angkatan tersebut sudah ada",
		})
	}

	now := config.Now()
	result, err := config.DB.Exec(
		"INSERT INTO classes (nama_kelas, angkatan, created_at, updated_at) VALUES (?, ?, ?, ?)",
		req.NamaKelas, req.Angkatan, now, now,
	)
	if helper.IsDuplicateKey(err) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas dengan nama dan angkatan tersebut sudah ada",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membuat kelas",
		})
	}

	id, _ := result.LastInsertId()
	cl, _ := scanClass(config.DB.QueryRow("SELECT "+classColumns+" FROM classes WHERE id = ?", id))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Kelas berhasil dibuat",
		"data":    cl,
	})
}

// UpdateClass - Update kelas berdasarkan ID
func UpdateClass(c *fiber.Ctx) error {
	id := c.Params("id")

	var req models.UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.NamaKelas = strings.TrimSpace(req.NamaKelas)
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	existing, err := scanClass(config.DB.QueryRow("SELECT "+classColumns+" FROM classes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas tidak ditemukan",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kelas",
		})
	}

	if req.NamaKelas == "" && req.Angkatan == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak ada data yang diupdate",
		})
	}

	if req.NamaKelas != "" {
		existing.NamaKelas = req.NamaKelas
	}
	if req.Angkatan != nil {
		existing.Angkatan = *req.Angkatan
	}

	var count int
	config.DB.QueryRow(
		"SELECT COUNT(*) FROM classes WHERE nama_kelas = ? AND angkatan = ? AND id != ?",
		existing.NamaKelas, existing.Angkatan, id,
	).Scan(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas dengan nama dan angkatan tersebut sudah ada",
		})
	}

	_, err = config.DB.Exec(
		"UPDATE classes SET nama_kelas = ?, angkatan = ?, updated_at = ? WHERE id = ?",
		existing.NamaKelas, existing.Angkatan, config.Now(), id,
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengupdate kelas",
		})
	}

	cl, _ := scanClass(config.DB.QueryRow("SELECT "+classColumns+" FROM classes WHERE id = ?", id))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Kelas berhasil diupdate",
		"data":    cl,
	})
}

// DeleteClass - Hapus kelas yang belum punya peserta
func DeleteClass(c *fiber.Ctx) error {
	id := c.Params("id")

	var exists int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM classes WHERE id = ?", id).Scan(&exists)
	if err != nil || exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas tidak ditemukan",
		})
	}

	var members int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM users WHERE class_id = ?", id).Scan(&members); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal validasi kelas",
		})
	}
	if members > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas masih memiliki peserta, pindahkan peserta terlebih dahulu",
		})
	}

	if _, err := config.DB.Exec("DELETE FROM classes WHERE id = ?", id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghapus kelas",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Kelas berhasil dihapus",
	})
}
