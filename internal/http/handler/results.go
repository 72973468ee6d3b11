package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"
	"backend-evoting/internal/realtime"
	"backend-evoting/internal/voting"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	tallyEpochKey = "voting:tally:epoch"
	tallyCacheTTL = 10 * time.Second
)

// Cache tally disimpan per epoch. Setiap suara atau perubahan kandidat menaikkan
// epoch, jadi hasil yang dihitung sebelum perubahan tidak pernah dibaca lagi
// walaupun baru selesai ditulis sesudahnya.
func tallyCacheKey(epoch int64) string {
	return fmt.Sprintf("voting:tally:%d", epoch)
}

func tallyEpoch(ctx context.Context) (int64, error) {
	epoch, err := config.Redis.Get(ctx, tallyEpochKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return epoch, err
}

// ResultsHub - websocket hasil live. Setiap broadcast hitung ulang dari snapshot baru.
var ResultsHub = realtime.NewHub("results", buildResultsMessage)

func loadBallots(q queryer) ([]models.Vote, error) {
	rows, err := q.Query("SELECT id, candidate_id, created_at FROM votes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ballots := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.CandidateID, &v.CreatedAt); err != nil {
			return nil, err
		}
		ballots = append(ballots, v)
	}
	return ballots, rows.Err()
}

// computeTally baca kandidat dan suara dalam satu transaksi supaya snapshot konsisten.
func computeTally() (voting.Summary, error) {
	tx, err := config.DB.Begin()
	if err != nil {
		return voting.Summary{}, err
	}
	defer tx.Rollback()

	candidates, err := loadCandidates(tx)
	if err != nil {
		return voting.Summary{}, err
	}

	ballots, err := loadBallots(tx)
	if err != nil {
		return voting.Summary{}, err
	}

	return voting.Tally(candidates, ballots), nil
}

func invalidateTally() {
	if err := config.Redis.Incr(config.Ctx, tallyEpochKey).Err(); err != nil {
		log.Printf("[results] gagal hapus cache tally: %v", err)
	}
}

func buildResultsMessage() ([]byte, error) {
	summary, err := computeTally()
	if err != nil {
		return nil, err
	}

	return json.Marshal(fiber.Map{
		"type":      "tally_update",
		"data":      summary,
		"timestamp": config.LocalNow().Format(time.RFC3339),
	})
}

// GetResults - hasil perhitungan suara, di-cache sebentar di Redis
func GetResults(c *fiber.Ctx) error {
	// Epoch dibaca sebelum menghitung, hasil hitungan hanya disimpan di epoch ini
	epoch, epochErr := tallyEpoch(c.Context())
	if epochErr != nil {
		log.Printf("[results] gagal baca epoch tally: %v", epochErr)
	} else {
		cached, err := config.Redis.Get(c.Context(), tallyCacheKey(epoch)).Bytes()
		if err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			c.Set("X-Cache", "HIT")
			return c.Send(cached)
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("[results] gagal baca cache tally: %v", err)
		}
	}

	summary, err := computeTally()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghitung hasil suara",
		})
	}

	body, err := json.Marshal(fiber.Map{
		"success":      true,
		"data":         summary,
		"generated_at": config.LocalNow().Format(time.RFC3339),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghitung hasil suara",
		})
	}

	if epochErr == nil {
		if err := config.Redis.Set(c.Context(), tallyCacheKey(epoch), body, tallyCacheTTL).Err(); err != nil {
			log.Printf("[results] gagal simpan cache tally: %v", err)
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set("X-Cache", "MISS")
	return c.Send(body)
}

// GetResultsDetail - hasil suara lengkap dengan tingkat kehadiran untuk panitia
func GetResultsDetail(c *fiber.Ctx) error {
	summary, err := computeTally()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghitung hasil suara",
		})
	}

	turnout, err := loadTurnout()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data kehadiran",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"tally":   summary,
			"turnout": turnout,
			"status":  helper.CurrentEligibility(),
		},
	})
}
