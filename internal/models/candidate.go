package models

import "time"

// Candidate - Model untuk tabel candidates. NoUrut unik dan positif.
type Candidate struct {
	ID        int64     `json:"id"`
	NoUrut    int       `json:"no_urut"`
	Nama      string    `json:"nama"`
	VisiMisi  string    `json:"visi_misi"`
	FotoURL   string    `json:"foto_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCandidateRequest struct {
	NoUrut   int    `json:"no_urut" validate:"required,gt=0"`
	Nama     string `json:"nama" validate:"required,max=255"`
	VisiMisi string `json:"visi_misi" validate:"omitempty,max=5000"`
	FotoURL  string `json:"foto_url" validate:"omitempty,url,max=500"`
}

type UpdateCandidateRequest struct {
	NoUrut   *int    `json:"no_urut" validate:"omitempty,gt=0"`
	Nama     string  `json:"nama" validate:"omitempty,max=255"`
	VisiMisi *string `json:"visi_misi" validate:"omitempty,max=5000"`
	FotoURL  *string `json:"foto_url" validate:"omitempty,max=500"`
}
