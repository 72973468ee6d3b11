package handler_test

import (
	"net/http"
	"testing"
	"time"

	"backend-evoting/internal/config"
	"backend-evoting/internal/http/middleware"
	"backend-evoting/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	env := testutil.Setup(t)
	testutil.SeedAdmin(t, "panitia@kampus.ac.id")

	resp, body := env.DoJSON(t, http.MethodPost, "/auth/admin/login", map[string]string{
		"email":    "panitia@kampus.ac.id",
		"password": testutil.Password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	token := data["token"].(string)
	claims, err := config.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, config.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	env := testutil.Setup(t)
	testutil.SeedAdmin(t, "panitia@kampus.ac.id")

	resp, body := env.DoJSON(t, http.MethodPost, "/auth/admin/login", map[string]string{
		"email":    "panitia@kampus.ac.id",
		"password": "salah",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestParticipantLogin_ThrottledAfterFailures(t *testing.T) {
	env := testutil.Setup(t)
	p := testutil.SeedParticipant(t, "2021001", 0, false)

	for i := 0; i < 5; i++ {
		resp, _ := env.DoJSON(t, http.MethodPost, "/auth/login", map[string]string{
			"nim":      p.NIM,
			"password": "salah",
		}, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Password benar pun ditolak selama masih diblokir
	resp, _ := env.DoJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"nim":      p.NIM,
		"password": testutil.Password,
	}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	env.Redis.FastForward(16 * time.Minute)

	resp, _ = env.DoJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"nim":      p.NIM,
		"password": testutil.Password,
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMe_Participant(t *testing.T) {
	env := testutil.Setup(t)
	classID := testutil.SeedClass(t, "TI-A", 2022)
	p := testutil.SeedParticipant(t, "2022001", classID, true)

	resp, body := env.DoJSON(t, http.MethodGet, "/api/me", nil, testutil.Token(t, p.ID, config.RoleParticipant))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "2022001", data["nim"])
	assert.Equal(t, "TI-A", data["nama_kelas"])
	assert.Equal(t, true, data["status_kehadiran"])
	assert.Equal(t, false, data["sudah_vote"])
}

func TestJWTAuth_RejectsMissingAndMalformedToken(t *testing.T) {
	env := testutil.Setup(t)

	resp, _ := env.DoJSON(t, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.DoJSON(t, http.MethodGet, "/api/me", nil, "bukan-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleAuth_ParticipantCannotReachAdminRoutes(t *testing.T) {
	env := testutil.Setup(t)
	p := testutil.SeedParticipant(t, "2022001", 0, true)

	resp, _ := env.DoJSON(t, http.MethodGet, "/api/stats", nil, testutil.Token(t, p.ID, config.RoleParticipant))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := testutil.Setup(t)
	adminID := testutil.SeedAdmin(t, "panitia@kampus.ac.id")
	token := testutil.Token(t, adminID, config.RoleAdmin)

	resp, _ := env.DoJSON(t, http.MethodPost, "/api/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	claims, err := config.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, env.Redis.Exists(middleware.RevokedKey(claims.ID)))
	assert.Equal(t, config.TokenTTL(), env.Redis.TTL(middleware.RevokedKey(claims.ID)))

	resp, _ = env.DoJSON(t, http.MethodGet, "/api/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
