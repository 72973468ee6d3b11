package handler_test

import (
	"net/http"
	"testing"

	"backend-evoting/internal/config"
	"backend-evoting/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdmin(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "ketua@kampus.ac.id"), config.RoleAdmin)

	body := map[string]string{
		"nama":     "Sekretaris",
		"email":    "Sekretaris@Kampus.ac.id",
		"password": "password123",
	}
	resp, out := env.DoJSON(t, http.MethodPost, "/api/admins", body, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, out)
	assert.Equal(t, "sekretaris@kampus.ac.id", out["data"].(map[string]interface{})["email"])

	resp, _ = env.DoJSON(t, http.MethodPost, "/api/admins", body, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, out = env.DoJSON(t, http.MethodGet, "/api/admins", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out["data"], 2)

	// Admin baru bisa login
	resp, _ = env.DoJSON(t, http.MethodPost, "/auth/admin/login", map[string]string{
		"email":    "sekretaris@kampus.ac.id",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAdmin_Validation(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "ketua@kampus.ac.id"), config.RoleAdmin)

	resp, out := env.DoJSON(t, http.MethodPost, "/api/admins", map[string]string{
		"nama":     "Tanpa Email",
		"password": "pendek",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "email wajib diisi")
}

func TestUnknownRoute_JSONError(t *testing.T) {
	env := testutil.Setup(t)

	resp, out := env.DoJSON(t, http.MethodGet, "/tidak-ada", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, out["success"])
}
