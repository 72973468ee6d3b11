package handler

import (
	"database/sql"
	"errors"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/models"
	"backend-evoting/internal/voting"

	"github.com/gofiber/fiber/v2"
)

// GetConfig - semua konfigurasi acara sebagai map
func GetConfig(c *fiber.Ctx) error {
	cfg, err := helper.LoadEventConfig(config.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data konfigurasi",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cfg,
	})
}

// GetVotingStatus - apakah voting sedang dibuka saat ini
func GetVotingStatus(c *fiber.Ctx) error {
	status := helper.CurrentEligibility()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    status,
		"now":     config.LocalNow().Format("2006-01-02 15:04:05"),
	})
}

// UpdateConfig - update sebagian konfigurasi acara
func UpdateConfig(c *fiber.Ctx) error {
	var req models.UpdateEventConfigRequest
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

	changes := models.EventConfig{}
	set := func(key string, v *string) {
		if v != nil {
			changes[key] = *v
		}
	}
	set(models.ConfigAllowVoting, req.AllowVoting)
	set(models.ConfigEventDate, req.EventDate)
	set(models.ConfigVotingStart, req.VotingStart)
	set(models.ConfigVotingEnd, req.VotingEnd)
	set(models.ConfigEventName, req.EventName)

	if len(changes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak ada konfigurasi yang diubah",
		})
	}

	tx, err := config.DB.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengupdate konfigurasi",
		})
	}
	defer tx.Rollback()

	current, err := helper.LoadEventConfig(tx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil data konfigurasi",
		})
	}

	merged := models.EventConfig{}
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range changes {
		merged[k] = v
	}

	start, okStart := merged[models.ConfigVotingStart]
	end, okEnd := merged[models.ConfigVotingEnd]
	if okStart && okEnd {
		if _, err := voting.ParseWindow(start, end); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
	}

	for key, value := range changes {
		if err := upsertConfig(tx, key, value); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Gagal mengupdate konfigurasi",
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengupdate konfigurasi",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Konfigurasi berhasil diupdate",
		"data":    merged,
		"status":  voting.Evaluate(merged, config.LocalNow()),
	})
}

func upsertConfig(tx *sql.Tx, key, value string) error {
	var count int
	err := tx.QueryRow("SELECT COUNT(*) FROM event_config WHERE config_key = ?", key).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if count > 0 {
		_, err = tx.Exec("UPDATE event_config SET config_value = ? WHERE config_key = ?", value, key)
		return err
	}

	_, err = tx.Exec("INSERT INTO event_config (config_key, config_value) VALUES (?, ?)", key, value)
	return err
}
