package handler

import (
	"errors"
	"log"
	"strings"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CheckInRequest struct {
	QRToken string `json:"qr_token" validate:"required,uuid"`
}

// markPresent ubah status_kehadiran 0 -> 1. Tidak pernah balik ke 0.
func markPresent(p models.Participant) error {
	if p.StatusKehadiran {
		return helper.ErrAlreadyCheckedIn
	}

	result, err := config.DB.Exec(
		"UPDATE users SET status_kehadiran = ?, checked_in_at = ?, updated_at = ? WHERE id = ? AND status_kehadiran = ?",
		true, config.Now(), config.Now(), p.ID, false,
	)
	if err != nil {
		return err
	}

	// Scanner lain bisa menang duluan
	if n, _ := result.RowsAffected(); n == 0 {
		return helper.ErrAlreadyCheckedIn
	}
	return nil
}

func respondCheckIn(c *fiber.Ctx, p models.Participant, namaKelas string) error {
	if err := markPresent(p); err != nil {
		if errors.Is(err, helper.ErrAlreadyCheckedIn) {
			current, kelas, _ := helper.GetParticipantByID(p.ID)
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Peserta " + p.Nama + " sudah check-in sebelumnya",
				"data":    models.ToParticipantResponse(current, kelas),
			})
		}
		log.Printf("[checkin] gagal check-in peserta %d: %v", p.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menyimpan check-in",
		})
	}

	updated, kelas, err := helper.GetParticipantByID(p.ID)
	if err != nil {
		updated, kelas = p, namaKelas
	}

	log.Printf("[checkin] %s (%s) hadir", updated.Nama, updated.NIM)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Check-in berhasil, selamat datang " + updated.Nama,
		"data":    models.ToParticipantResponse(updated, kelas),
	})
}

// CheckIn - panitia memindai QR peserta
func CheckIn(c *fiber.Ctx) error {
	var req CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.QRToken = strings.TrimSpace(req.QRToken)
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "QR code tidak valid",
		})
	}

	p, namaKelas, err := helper.GetParticipantByQRToken(req.QRToken)
	if errors.Is(err, helper.ErrParticipantNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "QR code tidak terdaftar",
		})
	}
	if err != nil {
		return participantLookupError(c, err)
	}

	return respondCheckIn(c, p, namaKelas)
}

// ManualCheckIn - check-in berdasarkan ID peserta, untuk QR yang rusak/hilang
func ManualCheckIn(c *fiber.Ctx) error {
	p, namaKelas, err := participantFromParam(c)
	if err != nil {
		return participantLookupError(c, err)
	}

	return respondCheckIn(c, p, namaKelas)
}
