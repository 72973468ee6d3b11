package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"backend-evoting/internal/config"
	"backend-evoting/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIn_ByQRToken(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	p := testutil.SeedParticipant(t, "2023001", 0, false)

	resp, body := env.DoJSON(t, http.MethodPost, "/api/checkin", map[string]string{"qr_token": p.QRToken}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["status_kehadiran"])
	assert.NotNil(t, data["checked_in_at"])

	// Scan kedua tidak mengubah apa pun
	resp, body = env.DoJSON(t, http.MethodPost, "/api/checkin", map[string]string{"qr_token": p.QRToken}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]interface{})["status_kehadiran"])
}

func TestCheckIn_InvalidToken(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)

	resp, _ := env.DoJSON(t, http.MethodPost, "/api/checkin", map[string]string{"qr_token": "bukan-uuid"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.DoJSON(t, http.MethodPost, "/api/checkin", map[string]string{"qr_token": uuid.NewString()}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestManualCheckIn(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	p := testutil.SeedParticipant(t, "2023001", 0, false)

	resp, _ := env.DoJSON(t, http.MethodPost, fmt.Sprintf("/api/checkin/manual/%d", p.ID), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hadir bool
	require.NoError(t, config.DB.QueryRow("SELECT status_kehadiran FROM users WHERE id = ?", p.ID).Scan(&hadir))
	assert.True(t, hadir)

	resp, _ = env.DoJSON(t, http.MethodPost, "/api/checkin/manual/9999", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
