package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"

	"github.com/gofiber/fiber/v2"
)

func voteBlockedResponse(c *fiber.Ctx, reason error) error {
	if errors.Is(reason, helper.ErrAlreadyVoted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Anda sudah memberikan suara",
		})
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"error":   "Anda belum melakukan check-in kehadiran",
	})
}

// CastVote - peserta memberikan suara. Tanda sudah_vote dan surat suara
// ditulis dalam satu transaksi, jadi tidak ada suara tanpa tanda atau sebaliknya.
func CastVote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	var req models.CastVoteRequest
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

	eligibility := helper.CurrentEligibility()
	if !eligibility.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   eligibility.Message,
			"status":  eligibility.Status,
		})
	}

	p, _, err := helper.GetParticipantByID(userID)
	if err != nil {
		return participantLookupError(c, err)
	}
	if reason := helper.VoteBlockReason(p); reason != nil {
		return voteBlockedResponse(c, reason)
	}

	if _, err := getCandidate(req.CandidateID); err != nil {
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

	err = castBallot(userID, req.CandidateID)
	if errors.Is(err, helper.ErrAlreadyVoted) || errors.Is(err, helper.ErrNotCheckedIn) {
		return voteBlockedResponse(c, err)
	}
	if err != nil {
		log.Printf("[vote] gagal menyimpan suara peserta %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menyimpan suara, silakan coba lagi",
		})
	}

	invalidateTally()
	ResultsHub.Notify()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Terima kasih, suara Anda sudah tercatat",
	})
}

// castBallot - UPDATE bersyarat pada users menjamin satu peserta hanya sekali
// lolos, walaupun request dikirim bersamaan.
func castBallot(userID, candidateID int64) error {
	tx, err := config.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := config.Now()
	result, err := tx.Exec(
		"UPDATE users SET sudah_vote = ?, updated_at = ? WHERE id = ? AND status_kehadiran = ? AND sudah_vote = ?",
		true, now, userID, true, false,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		var hadir, sudah bool
		if err := tx.QueryRow("SELECT status_kehadiran, sudah_vote FROM users WHERE id = ?", userID).Scan(&hadir, &sudah); err != nil {
			return err
		}
		if reason := helper.VoteBlockReason(models.Participant{StatusKehadiran: hadir, SudahVote: sudah}); reason != nil {
			return reason
		}
		return fmt.Errorf("update sudah_vote mengubah %d baris", n)
	}

	if _, err := tx.Exec("INSERT INTO votes (candidate_id, created_at) VALUES (?, ?)", candidateID, now); err != nil {
		return err
	}

	return tx.Commit()
}
