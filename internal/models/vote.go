package models

import "time"

// Vote - Satu surat suara. Tidak ada kolom pemilih, suara bersifat anonim.
type Vote struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type CastVoteRequest struct {
	CandidateID int64 `json:"candidate_id" validate:"required,gt=0"`
}

// TallyResult - Hasil perhitungan per kandidat, tidak disimpan ke database.
type TallyResult struct {
	Candidate  Candidate `json:"candidate"`
	Votes      int       `json:"votes"`
	Percentage float64   `json:"percentage"`
	Leading    bool      `json:"leading"`
}
