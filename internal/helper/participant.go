package helper

import (
	"database/sql"
	"errors"

	"backend-evoting/internal/config"
	"backend-evoting/internal/models"
)

var (
	ErrParticipantNotFound = errors.New("peserta tidak ditemukan")
	ErrAdminNotFound       = errors.New("admin tidak ditemukan")
	ErrNotCheckedIn        = errors.New("peserta belum melakukan check-in")
	ErrAlreadyVoted        = errors.New("peserta sudah memberikan suara")
	ErrAlreadyCheckedIn    = errors.New("peserta sudah check-in")
)

const participantColumns = `u.id, u.nim, u.nama, u.email, u.password, u.class_id, u.qr_token,
	u.status_kehadiran, u.sudah_vote, u.checked_in_at, u.created_at, u.updated_at,
	COALESCE(c.nama_kelas, '')`

// ParticipantSelect - SELECT peserta beserta nama kelas, tinggal tambah WHERE.
const ParticipantSelect = `SELECT ` + participantColumns + `
	FROM users u
	LEFT JOIN classes c ON u.class_id = c.id`

type rowScanner interface {
	Scan(dest ...any) error
}

// ScanParticipant membaca satu baris hasil ParticipantSelect.
func ScanParticipant(row rowScanner) (models.Participant, string, error) {
	var p models.Participant
	var namaKelas string
	err := row.Scan(
		&p.ID,
		&p.NIM,
		&p.Nama,
		&p.Email,
		&p.Password,
		&p.ClassID,
		&p.QRToken,
		&p.StatusKehadiran,
		&p.SudahVote,
		&p.CheckedInAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&namaKelas,
	)
	return p, namaKelas, err
}

func getParticipant(where string, arg any) (models.Participant, string, error) {
	row := config.DB.QueryRow(ParticipantSelect+" WHERE "+where, arg)
	p, namaKelas, err := ScanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, "", ErrParticipantNotFound
	}
	return p, namaKelas, err
}

func GetParticipantByID(id int64) (models.Participant, string, error) {
	return getParticipant("u.id = ?", id)
}

func GetParticipantByNIM(nim string) (models.Participant, string, error) {
	return getParticipant("u.nim = ?", nim)
}

func GetParticipantByQRToken(token string) (models.Participant, string, error) {
	return getParticipant("u.qr_token = ?", token)
}

func GetAdminByEmail(email string) (models.Admin, error) {
	var a models.Admin
	err := config.DB.QueryRow(
		"SELECT id, nama, email, password, created_at FROM admins WHERE email = ?",
		email,
	).Scan(&a.ID, &a.Nama, &a.Email, &a.Password, &a.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrAdminNotFound
	}
	return a, err
}

// VoteBlockReason - kenapa peserta tidak bisa memberi suara, nil kalau bisa.
func VoteBlockReason(p models.Participant) error {
	if p.SudahVote {
		return ErrAlreadyVoted
	}
	if !p.StatusKehadiran {
		return ErrNotCheckedIn
	}
	return nil
}
