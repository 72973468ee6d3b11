package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"backend-evoting/internal/config"
	"backend-evoting/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countBallots(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, config.DB.QueryRow("SELECT COUNT(*) FROM votes").Scan(&n))
	return n
}

func hasVoted(t *testing.T, userID int64) bool {
	t.Helper()
	var v bool
	require.NoError(t, config.DB.QueryRow("SELECT sudah_vote FROM users WHERE id = ?", userID).Scan(&v))
	return v
}

func TestCastVote(t *testing.T) {
	env := testutil.Setup(t)
	testutil.OpenVoting(t)
	candidateID := testutil.SeedCandidate(t, 1, "Paslon Satu")
	p := testutil.SeedParticipant(t, "2023001", 0, true)
	token := testutil.Token(t, p.ID, config.RoleParticipant)

	resp, body := env.DoJSON(t, http.MethodPost, "/api/vote", map[string]int64{"candidate_id": candidateID}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, 1, countBallots(t))
	assert.True(t, hasVoted(t, p.ID))

	resp, _ = env.DoJSON(t, http.MethodPost, "/api/vote", map[string]int64{"candidate_id": candidateID}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 1, countBallots(t))
}

func TestCastVote_NotCheckedIn(t *testing.T) {
	env := testutil.Setup(t)
	testutil.OpenVoting(t)
	candidateID := testutil.SeedCandidate(t, 1, "Paslon Satu")
	p := testutil.SeedParticipant(t, "2023001", 0, false)

	resp, _ := env.DoJSON(t, http.MethodPost, "/api/vote", map[string]int64{"candidate_id": candidateID}, testutil.Token(t, p.ID, config.RoleParticipant))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, countBallots(t))
	assert.False(t, hasVoted(t, p.ID))
}

func TestCastVote_OutsideWindow(t *testing.T) {
	env := testutil.Setup(t)
	testutil.OpenVoting(t)
	testutil.SetNow(time.Date(2026, 10, 18, 18, 0, 0, 0, testutil.EventDay().Location()))
	candidateID := testutil.SeedCandidate(t, 1, "Paslon Satu")
	p := testutil.SeedParticipant(t, "2023001", 0, true)

	resp, body := env.DoJSON(t, http.MethodPost, "/api/vote", map[string]int64{"candidate_id": candidateID}, testutil.Token(t, p.ID, config.RoleParticipant))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "too_late", body["status"])
	assert.Equal(t, 0, countBallots(t))
	assert.False(t, hasVoted(t, p.ID))
}

func TestCastVote_UnknownCandidate(t *testing.T) {
	env := testutil.Setup(t)
	testutil.OpenVoting(t)
	p := testutil.SeedParticipant(t, "2023001", 0, true)

	resp, _ := env.DoJSON(t, http.MethodPost, "/api/vote", map[string]int64{"candidate_id": 42}, testutil.Token(t, p.ID, config.RoleParticipant))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, hasVoted(t, p.ID))
}

func TestCastVote_AdminCannotVote(t *testing.T) {
	env := testutil.Setup(t)
	testutil.OpenVoting(t)
	candidateID := testutil.SeedCandidate(t, 1, "Paslon Satu")
	adminID := testutil.SeedAdmin(t, "panitia@kampus.ac.id")

	resp, _ := env.DoJSON(t, http.MethodPost, "/api/vote", map[string]int64{"candidate_id": candidateID}, testutil.Token(t, adminID, config.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCastVote_ConcurrentRequestsCountOnce(t *testing.T) {
	env := testutil.Setup(t)
	testutil.OpenVoting(t)
	candidateID := testutil.SeedCandidate(t, 1, "Paslon Satu")
	p := testutil.SeedParticipant(t, "2023001", 0, true)
	token := testutil.Token(t, p.ID, config.RoleParticipant)
	payload, _ := json.Marshal(map[string]int64{"candidate_id": candidateID})

	const n = 8
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/vote", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := env.App.Test(req, -1)
			if err != nil {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for _, s := range statuses {
		if s == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, s)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, countBallots(t))
}
