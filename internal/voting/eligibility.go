package voting

import (
	"fmt"
	"time"

	"backend-evoting/internal/models"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusDisabled  Status = "disabled"
	StatusWrongDate Status = "wrong_date"
	StatusTooEarly  Status = "too_early"
	StatusTooLate   Status = "too_late"
	StatusUnknown   Status = "unknown"
	StatusError     Status = "error"
)

const dateLayout = "2006-01-02"

// Eligibility - hasil evaluasi apakah surat suara boleh diberikan saat ini.
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Evaluate memeriksa konfigurasi acara terhadap now. Tanggal dan jam diambil
// dari lokasi now, jadi pemanggil yang menentukan zona waktunya.
func Evaluate(cfg models.EventConfig, now time.Time) Eligibility {
	if cfg[models.ConfigAllowVoting] != "true" {
		return Eligibility{
			Status:  StatusDisabled,
			Message: "Voting sedang dinonaktifkan oleh panitia",
		}
	}

	eventDate, okDate := cfg[models.ConfigEventDate]
	start, okStart := cfg[models.ConfigVotingStart]
	end, okEnd := cfg[models.ConfigVotingEnd]
	if !okDate || !okStart || !okEnd {
		return unknown("Konfigurasi jadwal voting belum lengkap")
	}

	if _, err := time.Parse(dateLayout, eventDate); err != nil {
		return unknown("Format tanggal acara tidak valid")
	}

	if now.Format(dateLayout) != eventDate {
		return Eligibility{
			Status:  StatusWrongDate,
			Message: fmt.Sprintf("Voting hanya dapat dilakukan pada tanggal %s", eventDate),
		}
	}

	window, err := ParseWindow(start, end)
	if err != nil {
		return unknown("Jadwal voting tidak valid: " + err.Error())
	}

	if clock := ClockOf(now); !window.Contains(clock) {
		if clock < window.Start {
			return Eligibility{
				Status:  StatusTooEarly,
				Message: fmt.Sprintf("Voting belum dibuka, dimulai pukul %s", window.Start),
			}
		}
		return Eligibility{
			Status:  StatusTooLate,
			Message: fmt.Sprintf("Voting sudah ditutup sejak pukul %s", window.End),
		}
	}

	return Eligibility{
		Allowed: true,
		Status:  StatusActive,
		Message: fmt.Sprintf("Voting sedang berlangsung sampai pukul %s", window.End),
	}
}

// ErrorEligibility dipakai ketika konfigurasi gagal dibaca.
func ErrorEligibility(err error) Eligibility {
	msg := "Gagal membaca konfigurasi voting"
	if err != nil {
		msg += ": " + err.Error()
	}
	return Eligibility{Status: StatusError, Message: msg}
}

func unknown(msg string) Eligibility {
	return Eligibility{Status: StatusUnknown, Message: msg}
}
