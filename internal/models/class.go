package models

import "time"

type Class struct {
	ID        int64     `json:"id"`
	NamaKelas string    `json:"nama_kelas"`
	Angkatan  int       `json:"angkatan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateClassRequest struct {
	NamaKelas string `json:"nama_kelas" validate:"required,max=100"`
	Angkatan  int    `json:"angkatan" validate:"required,gte=2000,lte=2100"`
}

type UpdateClassRequest struct {
	NamaKelas string `json:"nama_kelas" validate:"omitempty,max=100"`
	Angkatan  *int   `json:"angkatan" validate:"omitempty,gte=2000,lte=2100"`
}
