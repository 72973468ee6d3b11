// Package testutil menyiapkan app Fiber lengkap di atas sqlite sementara dan
// miniredis, untuk test handler.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"backend-evoting/internal/config"
	"backend-evoting/internal/http/router"
	"backend-evoting/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const Password = "rahasia123"

// Schema yang sama dengan schema.sql, dalam dialek sqlite.
var sqliteSchema = []string{
	`CREATE TABLE admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nama TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE classes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nama_kelas TEXT NOT NULL,
		angkatan INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (nama_kelas, angkatan)
	)`,
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nim TEXT NOT NULL UNIQUE,
		nama TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		class_id INTEGER NULL REFERENCES classes(id),
		qr_token TEXT NOT NULL UNIQUE,
		status_kehadiran BOOLEAN NOT NULL DEFAULT 0,
		sudah_vote BOOLEAN NOT NULL DEFAULT 0,
		checked_in_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE candidates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		no_urut INTEGER NOT NULL UNIQUE,
		nama TEXT NOT NULL,
		visi_misi TEXT NULL,
		foto_url TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE event_config (
		config_key TEXT PRIMARY KEY,
		config_value TEXT NOT NULL
	)`,
}

// Env berisi app dan Redis palsu untuk satu test.
type Env struct {
	App   *fiber.App
	Redis *miniredis.Miniredis
}

// EventDay - 18 Oktober 2026 pukul 10:00 WIB, di dalam jadwal OpenVoting.
func EventDay() time.Time {
	loc, _ := time.LoadLocation("Asia/Jakarta")
	return time.Date(2026, 10, 18, 10, 0, 0, 0, loc)
}

func Setup(t *testing.T) *Env {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("APP_ACCESS_LOG", "false")
	t.Setenv("RECAPTCHA_SECRET_KEY", "")
	t.Setenv("MAIL_API_URL", "")

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "evoting.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	prevDB, prevRedis, prevNow := config.DB, config.Redis, config.Now
	config.DB = db
	config.Redis = rdb
	SetNow(EventDay())

	t.Cleanup(func() {
		config.DB, config.Redis, config.Now = prevDB, prevRedis, prevNow
		rdb.Close()
		db.Close()
	})

	return &Env{App: router.New(), Redis: mr}
}

// SetNow membekukan jam aplikasi.
func SetNow(now time.Time) {
	config.Now = func() time.Time { return now }
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func SeedAdmin(t *testing.T, email string) int64 {
	t.Helper()
	res, err := config.DB.Exec(
		"INSERT INTO admins (nama, email, password, created_at) VALUES (?, ?, ?, ?)",
		"Panitia", email, hash(t, Password), config.Now(),
	)
	require.NoError(t, err)
	id, _ := res.LastInsertId()
	return id
}

func SeedClass(t *testing.T, nama string, angkatan int) int64 {
	t.Helper()
	res, err := config.DB.Exec(
		"INSERT INTO classes (nama_kelas, angkatan, created_at, updated_at) VALUES (?, ?, ?, ?)",
		nama, angkatan, config.Now(), config.Now(),
	)
	require.NoError(t, err)
	id, _ := res.LastInsertId()
	return id
}

// SeedParticipant membuat peserta dengan password Password.
func SeedParticipant(t *testing.T, nim string, classID int64, checkedIn bool) models.Participant {
	t.Helper()
	p := models.Participant{
		NIM:             nim,
		Nama:            "Mahasiswa " + nim,
		Email:           nim + "@kampus.ac.id",
		QRToken:         uuid.NewString(),
		StatusKehadiran: checkedIn,
	}
	p.ClassID = sql.NullInt64{Int64: classID, Valid: classID > 0}

	var checkedInAt interface{}
	if checkedIn {
		checkedInAt = config.Now()
	}

	res, err := config.DB.Exec(`
		INSERT INTO users (nim, nama, email, password, class_id, qr_token, status_kehadiran, sudah_vote, checked_in_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.NIM, p.Nama, p.Email, hash(t, Password), p.ClassID, p.QRToken, checkedIn, false, checkedInAt, config.Now(), config.Now(),
	)
	require.NoError(t, err)
	p.ID, _ = res.LastInsertId()
	return p
}

func SeedCandidate(t *testing.T, noUrut int, nama string) int64 {
	t.Helper()
	res, err := config.DB.Exec(
		"INSERT INTO candidates (no_urut, nama, created_at, updated_at) VALUES (?, ?, ?, ?)",
		noUrut, nama, config.Now(), config.Now(),
	)
	require.NoError(t, err)
	id, _ := res.LastInsertId()
	return id
}

// SeedBallots menambah n surat suara langsung ke tabel votes.
func SeedBallots(t *testing.T, candidateID int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := config.DB.Exec("INSERT INTO votes (candidate_id, created_at) VALUES (?, ?)", candidateID, config.Now())
		require.NoError(t, err)
	}
}

func SetEventConfig(t *testing.T, cfg models.EventConfig) {
	t.Helper()
	for k, v := range cfg {
		_, err := config.DB.Exec("DELETE FROM event_config WHERE config_key = ?", k)
		require.NoError(t, err)
		_, err = config.DB.Exec("INSERT INTO event_config (config_key, config_value) VALUES (?, ?)", k, v)
		require.NoError(t, err)
	}
}

// OpenVoting - voting aktif pada EventDay dari 08:00 sampai 17:00.
func OpenVoting(t *testing.T) {
	SetEventConfig(t, models.EventConfig{
		models.ConfigAllowVoting: "true",
		models.ConfigEventDate:   "2026-10-18",
		models.ConfigVotingStart: "08:00",
		models.ConfigVotingEnd:   "17:00",
	})
}

func Token(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, _, err := config.GenerateToken(userID, "Tester", role)
	require.NoError(t, err)
	return token
}

// Do kirim request JSON dan kembalikan response beserta body mentahnya.
func (e *Env) Do(t *testing.T, method, path string, body interface{}, token string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// DoJSON seperti Do, body response di-decode ke map.
func (e *Env) DoJSON(t *testing.T, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, raw := e.Do(t, method, path, body, token)

	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp, out
}
