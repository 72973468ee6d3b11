package handler

import (
	"database/sql"
	"errors"
	"strings"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"
	"backend-evoting/internal/voting"

	"github.com/gofiber/fiber/v2"
)

const candidateColumns = "id, no_urut, nama, COALESCE(visi_misi, ''), COALESCE(foto_url, ''), created_at, updated_at"

func scanCandidate(row interface{ Scan(...any) error }) (models.Candidate, error) {
	var k models.Candidate
	err := row.Scan(&k.ID, &k.NoUrut, &k.Nama, &k.VisiMisi, &k.FotoURL, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// loadCandidates - semua kandidat urut no_urut menaik
func loadCandidates(q queryer) ([]models.Candidate, error) {
	rows, err := q.Query("SELECT " + candidateColumns + " FROM candidates ORDER BY no_urut ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		k, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, k)
	}
	return candidates, rows.Err()
}

func getCandidate(id interface{}) (models.Candidate, error) {
	return scanCandidate(config.DB.QueryRow("SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id))
}

// candidatesLocked - kandidat tidak boleh diubah saat voting berjalan atau sudah ada suara.
func candidatesLocked() (string, error) {
	if helper.CurrentEligibility().Status == voting.StatusActive {
		return "Voting sedang berlangsung, data kandidat tidak dapat diubah", nil
	}

	var votes int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM votes").Scan(&votes); err != nil {
		return "", err
	}
	if votes > 0 {
		return "Sudah ada suara masuk, data kandidat tidak dapat diubah", nil
	}
	return "", nil
}

func rejectIfLocked(c *fiber.Ctx) (bool, error) {
	reason, err := candidatesLocked()
	if err != nil {
		return true, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal memeriksa status voting",
		})
	}
	if reason != "" {
		return true, c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   reason,
		})
	}
	return false, nil
}

// GetAllCandidates - daftar kandidat
func GetAllCandidates(c *fiber.Ctx) error {
	candidates, err := loadCandidates(config.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kandidat",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    candidates,
	})
}

// GetCandidateByID - detail kandidat
func GetCandidateByID(c *fiber.Ctx) error {
	k, err := getCandidate(c.Params("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Kandidat tidak ditemukan",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kandidat",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    k,
	})
}

// CreateCandidate - tambah kandidat baru
func CreateCandidate(c *fiber.Ctx) error {
	var req models.CreateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.Nama = strings.TrimSpace(req.Nama)
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if locked, err := rejectIfLocked(c); locked {
		return err
	}

	var count int
	config.DB.QueryRow("SELECT COUNT(*) FROM candidates WHERE no_urut = ?", req.NoUrut).Scan(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Nomor urut sudah digunakan kandidat lain",
		})
	}

	now := config.Now()
	result, err := config.DB.Exec(
		"INSERT INTO candidates (no_urut, nama, visi_misi, foto_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		req.NoUrut, req.Nama, req.VisiMisi, req.FotoURL, now, now,
	)
	if helper.IsDuplicateKey(err) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Nomor urut sudah digunakan kandidat lain",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menambah kandidat",
		})
	}

	id, _ := result.LastInsertId()
	k, _ := getCandidate(id)

	invalidateTally()
	ResultsHub.Notify()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Kandidat berhasil ditambahkan",
		"data":    k,
	})
}

// UpdateCandidate - ubah data kandidat sebelum voting dibuka
func UpdateCandidate(c *fiber.Ctx) error {
	id := c.Params("id")

	var req models.UpdateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.Nama = strings.TrimSpace(req.Nama)
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if _, err := getCandidate(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Kandidat tidak ditemukan",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kandidat",
		})
	}

	if locked, err := rejectIfLocked(c); locked {
		return err
	}

	updates := []string{}
	args := []interface{}{}

	if req.NoUrut != nil {
		var count int
		config.DB.QueryRow("SELECT COUNT(*) FROM candidates WHERE no_urut = ? AND id != ?", *req.NoUrut, id).Scan(&count)
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Nomor urut sudah digunakan kandidat lain",
			})
		}
		updates = append(updates, "no_urut = ?")
		args = append(args, *req.NoUrut)
	}

	if req.Nama != "" {
		updates = append(updates, "nama = ?")
		args = append(args, req.Nama)
	}

	if req.VisiMisi != nil {
		updates = append(updates, "visi_misi = ?")
		args = append(args, *req.VisiMisi)
	}

	// foto_url kosong berarti hapus foto
	if req.FotoURL != nil {
		updates = append(updates, "foto_url = ?")
		if *req.FotoURL == "" {
			args = append(args, nil)
		} else {
			args = append(args, *req.FotoURL)
		}
	}

	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak ada data yang diupdate",
		})
	}

	updates = append(updates, "updated_at = ?")
	args = append(args, config.Now(), id)

	if _, err := config.DB.Exec("UPDATE candidates SET "+strings.Join(updates, ", ")+" WHERE id = ?", args...); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengupdate kandidat",
		})
	}

	k, _ := getCandidate(id)

	invalidateTally()
	ResultsHub.Notify()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Kandidat berhasil diupdate",
		"data":    k,
	})
}

// DeleteCandidate - hapus kandidat sebelum voting dibuka
func DeleteCandidate(c *fiber.Ctx) error {
	id := c.Params("id")

	if _, err := getCandidate(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Kandidat tidak ditemukan",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kandidat",
		})
	}

	if locked, err := rejectIfLocked(c); locked {
		return err
	}

	if _, err := config.DB.Exec("DELETE FROM candidates WHERE id = ?", id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghapus kandidat",
		})
	}

	invalidateTally()
	ResultsHub.Notify()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Kandidat berhasil dihapus",
	})
}
