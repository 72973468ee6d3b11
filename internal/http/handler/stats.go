package handler

import (
	"log"
	"math"

	"backend-evoting/internal/config"

	"github.com/gofiber/fiber/v2"
)

type ClassTurnout struct {
	ClassID    int64   `json:"class_id"`
	NamaKelas  string  `json:"nama_kelas"`
	Angkatan   int     `json:"angkatan"`
	Total      int     `json:"total"`
	Hadir      int     `json:"hadir"`
	SudahVote  int     `json:"sudah_vote"`
	PersenVote float64 `json:"persen_vote"`
}

type Turnout struct {
	TotalPeserta int            `json:"total_peserta"`
	Hadir        int            `json:"hadir"`
	SudahVote    int            `json:"sudah_vote"`
	PersenHadir  float64        `json:"persen_hadir"`
	PersenVote   float64        `json:"persen_vote"`
	PerKelas     []ClassTurnout `json:"per_kelas"`
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func loadTurnout() (Turnout, error) {
	var t Turnout
	err := config.DB.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status_kehadiran = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sudah_vote = 1 THEN 1 ELSE 0 END), 0)
		FROM users
	`).Scan(&t.TotalPeserta, &t.Hadir, &t.SudahVote)
	if err != nil {
		return t, err
	}

	t.PersenHadir = percent(t.Hadir, t.TotalPeserta)
	t.PersenVote = percent(t.SudahVote, t.TotalPeserta)

	rows, err := config.DB.Query(`
		SELECT
			c.id,
			c.nama_kelas,
			c.angkatan,
			COUNT(u.id),
			COALESCE(SUM(CASE WHEN u.status_kehadiran = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN u.sudah_vote = 1 THEN 1 ELSE 0 END), 0)
		FROM classes c
		LEFT JOIN users u ON u.class_id = c.id
		GROUP BY c.id, c.nama_kelas, c.angkatan
		ORDER BY c.angkatan DESC, c.nama_kelas ASC
	`)
	if err != nil {
		return t, err
	}
	defer rows.Close()

	t.PerKelas = []ClassTurnout{}
	for rows.Next() {
		var ct ClassTurnout
		if err := rows.Scan(&ct.ClassID, &ct.NamaKelas, &ct.Angkatan, &ct.Total, &ct.Hadir, &ct.SudahVote); err != nil {
			return t, err
		}
		ct.PersenVote = percent(ct.SudahVote, ct.Total)
		t.PerKelas = append(t.PerKelas, ct)
	}

	return t, rows.Err()
}

// GetStats - statistik kehadiran dan partisipasi untuk dashboard panitia
func GetStats(c *fiber.Ctx) error {
	turnout, err := loadTurnout()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil statistik",
		})
	}

	var totalBallots, totalCandidates int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM votes").Scan(&totalBallots); err != nil {
		log.Printf("[stats] gagal menghitung surat suara: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil statistik",
		})
	}
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM candidates").Scan(&totalCandidates); err != nil {
		log.Printf("[stats] gagal menghitung kandidat: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil statistik",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"turnout":        turnout,
			"total_suara":    totalBallots,
			"total_kandidat": totalCandidates,
			"selisih_tanda":  turnout.SudahVote - totalBallots,
		},
	})
}
