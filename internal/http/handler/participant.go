package handler

import (
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
)

const qrSize = 256

// Register - pendaftaran peserta baru
func Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.NIM = strings.TrimSpace(req.NIM)
	req.Nama = strings.TrimSpace(req.Nama)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var classExists int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM classes WHERE id = ?", req.ClassID).Scan(&classExists); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal validasi kelas",
		})
	}
	if classExists == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Kelas tidak ditemukan",
		})
	}

	var count int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM users WHERE nim = ? OR email = ?", req.NIM, req.Email).Scan(&count)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal validasi peserta",
		})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "NIM atau email sudah terdaftar",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal memproses password",
		})
	}

	now := config.Now()
	result, err := config.DB.Exec(`
		INSERT INTO users (nim, nama, email, password, class_id, qr_token, status_kehadiran, sudah_vote, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.NIM, req.Nama, req.Email, string(hashed), req.ClassID, uuid.NewString(), false, false, now, now,
	)
	if helper.IsDuplicateKey(err) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "NIM atau email sudah terdaftar",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mendaftarkan peserta",
		})
	}

	id, _ := result.LastInsertId()
	p, namaKelas, err := helper.GetParticipantByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data peserta",
		})
	}

	if config.MailEnabled() {
		go func() {
			if err := SendTicketMail(p); err != nil {
				log.Printf("[register] gagal kirim email QR ke %s: %v", p.Email, err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Pendaftaran berhasil, QR code check-in dikirim ke email",
		"data":    models.ToParticipantResponse(p, namaKelas),
	})
}

// SendTicketMail kirim QR check-in ke email peserta.
func SendTicketMail(p models.Participant) error {
	png, err := qrcode.Encode(p.QRToken, qrcode.Medium, qrSize)
	if err != nil {
		return err
	}

	eventName := "Pemilihan Raya"
	if cfg, err := helper.LoadEventConfig(config.DB); err == nil && cfg[models.ConfigEventName] != "" {
		eventName = cfg[models.ConfigEventName]
	}

	return config.SendMail(config.MailMessage{
		To:      []string{p.Email},
		Subject: "QR Code Check-in " + eventName,
		HTML: fmt.Sprintf(
			"<p>Halo %s (%s),</p><p>Tunjukkan QR code terlampir kepada panitia saat check-in %s.</p>",
			html.EscapeString(p.Nama), html.EscapeString(p.NIM), html.EscapeString(eventName),
		),
		Attachments: []config.MailAttachment{
			config.NewAttachment("qr-"+p.NIM+".png", png),
		},
	})
}

func parseFlag(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "1", "true", "y":
		return true, true
	case "0", "false", "n":
		return false, true
	}
	return false, false
}

func participantFilter(c *fiber.Ctx) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if classID := c.QueryInt("class_id", 0); classID > 0 {
		where += " AND u.class_id = ?"
		args = append(args, classID)
	}

	if v, ok := parseFlag(c.Query("status_kehadiran")); ok {
		where += " AND u.status_kehadiran = ?"
		args = append(args, v)
	}

	if v, ok := parseFlag(c.Query("sudah_vote")); ok {
		where += " AND u.sudah_vote = ?"
		args = append(args, v)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		search = "%" + search + "%"
		where += " AND (u.nim LIKE ? OR u.nama LIKE ? OR u.email LIKE ?)"
		args = append(args, search, search, search)
	}

	return where, args
}

func queryParticipants(query string, args ...interface{}) ([]models.ParticipantResponse, error) {
	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.ParticipantResponse{}
	for rows.Next() {
		p, namaKelas, err := helper.ScanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, models.ToParticipantResponse(p, namaKelas))
	}
	return participants, rows.Err()
}

// GetAllParticipants - Ambil semua peserta
func GetAllParticipants(c *fiber.Ctx) error {
	where, args := participantFilter(c)

	participants, err := queryParticipants(helper.ParticipantSelect+where+" ORDER BY u.nim ASC", args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data peserta",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    participants,
	})
}

// GetAllParticipantsPagination - Ambil peserta dengan pagination
func GetAllParticipantsPagination(c *fiber.Ctx) error {
	p := helper.ParsePagination(c)
	where, args := participantFilter(c)

	var totalData int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM users u"+where, args...).Scan(&totalData); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghitung total data",
		})
	}

	args = append(args, p.Limit, p.Offset)
	participants, err := queryParticipants(helper.ParticipantSelect+where+" ORDER BY u.nim ASC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data peserta",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       participants,
		"pagination": p.Meta(totalData),
	})
}

func participantFromParam(c *fiber.Ctx) (models.Participant, string, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return models.Participant{}, "", helper.ErrParticipantNotFound
	}
	return helper.GetParticipantByID(id)
}

func participantLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, helper.ErrParticipantNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Peserta tidak ditemukan",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Gagal mengambil data peserta",
	})
}

// GetParticipantByID - Detail peserta
func GetParticipantByID(c *fiber.Ctx) error {
	p, namaKelas, err := participantFromParam(c)
	if err != nil {
		return participantLookupError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.ToParticipantResponse(p, namaKelas),
	})
}

// UpdateParticipant - Update nama, email, atau kelas peserta
func UpdateParticipant(c *fiber.Ctx) error {
	var req models.UpdateParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.Nama = strings.TrimSpace(req.Nama)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := helper.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	p, _, err := participantFromParam(c)
	if err != nil {
		return participantLookupError(c, err)
	}

	updates := []string{}
	args := []interface{}{}

	if req.Nama != "" {
		updates = append(updates, "nama = ?")
		args = append(args, req.Nama)
	}

	if req.Email != "" && req.Email != p.Email {
		var count int
		config.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ? AND id != ?", req.Email, p.ID).Scan(&count)
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Email sudah digunakan peserta lain",
			})
		}
		updates = append(updates, "email = ?")
		args = append(args, req.Email)
	}

	if req.ClassID != nil {
		var classExists int
		config.DB.QueryRow("SELECT COUNT(*) FROM classes WHERE id = ?", *req.ClassID).Scan(&classExists)
		if classExists == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Kelas tidak ditemukan",
			})
		}
		updates = append(updates, "class_id = ?")
		args = append(args, *req.ClassID)
	}

	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak ada data yang diupdate",
		})
	}

	updates = append(updates, "updated_at = ?")
	args = append(args, config.Now(), p.ID)

	_, err = config.DB.Exec("UPDATE users SET "+strings.Join(updates, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengupdate peserta",
		})
	}

	updated, namaKelas, err := helper.GetParticipantByID(p.ID)
	if err != nil {
		return participantLookupError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Peserta berhasil diupdate",
		"data":    models.ToParticipantResponse(updated, namaKelas),
	})
}

// DeleteParticipant - Hapus peserta yang belum memberikan suara
func DeleteParticipant(c *fiber.Ctx) error {
	p, _, err := participantFromParam(c)
	if err != nil {
		return participantLookupError(c, err)
	}

	if p.SudahVote {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Peserta sudah memberikan suara dan tidak dapat dihapus",
		})
	}

	if _, err := config.DB.Exec("DELETE FROM users WHERE id = ? AND sudah_vote = ?", p.ID, false); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghapus peserta",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Peserta berhasil dihapus",
	})
}

func sendQR(c *fiber.Ctx, p models.Participant) error {
	png, err := qrcode.Encode(p.QRToken, qrcode.Medium, qrSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membuat QR code",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="qr-%s.png"`, p.NIM))
	return c.Send(png)
}

// GetMyQR - QR check-in milik peserta yang login
func GetMyQR(c *fiber.Ctx) error {
	p, _, err := helper.GetParticipantByID(c.Locals("user_id").(int64))
	if err != nil {
		return participantLookupError(c, err)
	}
	return sendQR(c, p)
}

// GetParticipantQR - QR check-in peserta tertentu (panitia)
func GetParticipantQR(c *fiber.Ctx) error {
	p, _, err := participantFromParam(c)
	if err != nil {
		return participantLookupError(c, err)
	}
	return sendQR(c, p)
}
