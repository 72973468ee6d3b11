package models

import (
	"database/sql"
	"time"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Baris tabel users (peserta pemilihan)
*/
type Participant struct {
	ID              int64
	NIM             string
	Nama            string
	Email           string
	Password        string
	ClassID         sql.NullInt64
	QRToken         string
	StatusKehadiran bool
	SudahVote       bool
	CheckedInAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type RegisterRequest struct {
	NIM      string `json:"nim" validate:"required,alphanum,min=5,max=20"`
	Nama     string `json:"nama" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	ClassID  int64  `json:"class_id" validate:"required,gt=0"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ParticipantLoginRequest struct {
	NIM      string `json:"nim" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateParticipantRequest struct {
	Nama    string `json:"nama" validate:"omitempty,max=255"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	ClassID *int64 `json:"class_id" validate:"omitempty,gt=0"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type ParticipantResponse struct {
	ID              int64   `json:"id"`
	NIM             string  `json:"nim"`
	Nama            string  `json:"nama"`
	Email           string  `json:"email"`
	ClassID         *int64  `json:"class_id,omitempty"`
	NamaKelas       string  `json:"nama_kelas,omitempty"`
	StatusKehadiran bool    `json:"status_kehadiran"`
	SudahVote       bool    `json:"sudah_vote"`
	CheckedInAt     *string `json:"checked_in_at"`
}

/*
|--------------------------------------------------------------------------
| MAPPER
|--------------------------------------------------------------------------
*/
func ToParticipantResponse(p Participant, namaKelas string) ParticipantResponse {
	var classID *int64
	if p.ClassID.Valid {
		classID = &p.ClassID.Int64
	}

	return ParticipantResponse{
		ID:              p.ID,
		NIM:             p.NIM,
		Nama:            p.Nama,
		Email:           p.Email,
		ClassID:         classID,
		NamaKelas:       namaKelas,
		StatusKehadiran: p.StatusKehadiran,
		SudahVote:       p.SudahVote,
		CheckedInAt:     formatNullTime(p.CheckedInAt),
	}
}

func formatNullTime(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(time.RFC3339)
	return &s
}
