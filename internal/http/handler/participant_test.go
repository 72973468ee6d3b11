package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-evoting/internal/config"
	"backend-evoting/internal/http/handler"
	"backend-evoting/internal/models"
	"backend-evoting/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody(nim string, classID int64) map[string]interface{} {
	return map[string]interface{}{
		"nim":      nim,
		"nama":     "Budi Santoso",
		"email":    nim + "@kampus.ac.id",
		"class_id": classID,
		"password": "password123",
	}
}

func TestRegister(t *testing.T) {
	env := testutil.Setup(t)
	classID := testutil.SeedClass(t, "TI-A", 2023)

	resp, body := env.DoJSON(t, http.MethodPost, "/auth/register", registerBody("2023001", classID), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "2023001", data["nim"])
	assert.Equal(t, "TI-A", data["nama_kelas"])
	assert.Equal(t, false, data["status_kehadiran"])
	assert.Equal(t, false, data["sudah_vote"])
	assert.NotContains(t, data, "password")

	var qrToken string
	require.NoError(t, config.DB.QueryRow("SELECT qr_token FROM users WHERE nim = ?", "2023001").Scan(&qrToken))
	assert.Len(t, qrToken, 36)

	// Peserta baru bisa langsung login
	resp, _ = env.DoJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"nim":      "2023001",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_Rejected(t *testing.T) {
	env := testutil.Setup(t)
	classID := testutil.SeedClass(t, "TI-A", 2023)
	testutil.SeedParticipant(t, "2023001", classID, false)

	short := registerBody("2023002", classID)
	short["password"] = "pendek"

	cases := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"nim sudah terdaftar", registerBody("2023001", classID), http.StatusConflict},
		{"kelas tidak ada", registerBody("2023003", classID+99), http.StatusBadRequest},
		{"nim bukan alfanumerik", registerBody("2023-004", classID), http.StatusBadRequest},
		{"password terlalu pendek", short, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := env.DoJSON(t, http.MethodPost, "/auth/register", tc.body, "")
			assert.Equal(t, tc.status, resp.StatusCode, body)
		})
	}
}

func TestParticipantsPaginationAndFilter(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	classA := testutil.SeedClass(t, "TI-A", 2023)
	classB := testutil.SeedClass(t, "TI-B", 2023)
	for i := 1; i <= 3; i++ {
		testutil.SeedParticipant(t, fmt.Sprintf("A00%d", i), classA, i == 1)
	}
	testutil.SeedParticipant(t, "B001", classB, true)

	resp, body := env.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/participants/paginate?class_id=%d&limit=2", classA), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 2)
	assert.EqualValues(t, 3, body["pagination"].(map[string]interface{})["total_data"])

	resp, body = env.DoJSON(t, http.MethodGet, "/api/participants?status_kehadiran=1", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 2)

	resp, body = env.DoJSON(t, http.MethodGet, "/api/participants?search=B00", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"], 1)
	assert.Equal(t, "B001", body["data"].([]interface{})[0].(map[string]interface{})["nim"])
}

func TestUpdateParticipant(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	classA := testutil.SeedClass(t, "TI-A", 2023)
	classB := testutil.SeedClass(t, "TI-B", 2023)
	p := testutil.SeedParticipant(t, "2023001", classA, false)
	other := testutil.SeedParticipant(t, "2023002", classA, false)

	resp, body := env.DoJSON(t, http.MethodPut, fmt.Sprintf("/api/participants/%d", p.ID), map[string]interface{}{
		"nama":     "Nama Baru",
		"class_id": classB,
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Nama Baru", data["nama"])
	assert.Equal(t, "TI-B", data["nama_kelas"])

	resp, _ = env.DoJSON(t, http.MethodPut, fmt.Sprintf("/api/participants/%d", p.ID), map[string]interface{}{
		"email": other.Email,
	}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.DoJSON(t, http.MethodPut, "/api/participants/9999", map[string]interface{}{
		"nama": "Siapa",
	}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteParticipant(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	p := testutil.SeedParticipant(t, "2023001", 0, true)
	voted := testutil.SeedParticipant(t, "2023002", 0, true)
	_, err := config.DB.Exec("UPDATE users SET sudah_vote = ? WHERE id = ?", true, voted.ID)
	require.NoError(t, err)

	resp, _ := env.DoJSON(t, http.MethodDelete, fmt.Sprintf("/api/participants/%d", voted.ID), nil, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.DoJSON(t, http.MethodDelete, fmt.Sprintf("/api/participants/%d", p.ID), nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/participants/%d", p.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParticipantQR(t *testing.T) {
	env := testutil.Setup(t)
	p := testutil.SeedParticipant(t, "2023001", 0, false)

	resp, raw := env.Do(t, http.MethodGet, "/api/participants/me/qr", nil, testutil.Token(t, p.ID, config.RoleParticipant))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), raw[:4])

	adminToken := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	resp, _ = env.Do(t, http.MethodGet, fmt.Sprintf("/api/participants/%d/qr", p.ID), nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetAllParticipants_UnreadableRowFailsRequest(t *testing.T) {
	env := testutil.Setup(t)
	token := testutil.Token(t, testutil.SeedAdmin(t, "panitia@kampus.ac.id"), config.RoleAdmin)
	testutil.SeedParticipant(t, "2023001", 0, false)
	broken := testutil.SeedParticipant(t, "2023002", 0, false)

	_, err := config.DB.Exec("UPDATE users SET updated_at = ? WHERE id = ?", "bukan-tanggal", broken.ID)
	require.NoError(t, err)

	resp, body := env.DoJSON(t, http.MethodGet, "/api/participants", nil, token)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestSendTicketMail_EscapesUserInput(t *testing.T) {
	testutil.Setup(t)
	testutil.SetEventConfig(t, models.EventConfig{models.ConfigEventName: "Pemira <b>2026</b>"})

	var got config.MailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	t.Setenv("MAIL_API_URL", srv.URL)

	err := handler.SendTicketMail(models.Participant{
		NIM:     "2023001",
		Nama:    `<a href="https://evil.example">Klik</a>`,
		Email:   "budi@kampus.ac.id",
		QRToken: uuid.NewString(),
	})
	require.NoError(t, err)

	assert.NotContains(t, got.HTML, "<a href")
	assert.NotContains(t, got.HTML, "<b>")
	assert.Contains(t, got.HTML, "&lt;a href=&#34;https://evil.example&#34;&gt;Klik&lt;/a&gt;")
	assert.Contains(t, got.HTML, "Pemira &lt;b&gt;2026&lt;/b&gt;")
	assert.Equal(t, []string{"budi@kampus.ac.id"}, got.To)
	require.Len(t, got.Attachments, 1)
}
