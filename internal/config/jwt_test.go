package config

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeNow(t *testing.T, now time.Time) {
	prev := Now
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = prev })
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "rahasia")
	t.Setenv("JWT_TTL_HOURS", "2")
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	freezeNow(t, now)

	token, expiresAt, err := GenerateToken(7, "Budi", RoleParticipant)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), expiresAt)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "Budi", claims.Nama)
	assert.Equal(t, RoleParticipant, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	t.Setenv("JWT_SECRET", "rahasia")

	a, _, err := GenerateToken(1, "A", RoleAdmin)
	require.NoError(t, err)
	b, _, err := GenerateToken(1, "A", RoleAdmin)
	require.NoError(t, err)

	ca, err := ValidateToken(a)
	require.NoError(t, err)
	cb, err := ValidateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestGenerateToken_NoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, _, err := GenerateToken(1, "A", RoleAdmin)
	assert.Error(t, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	t.Setenv("JWT_SECRET", "rahasia")
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	freezeNow(t, now)

	token, _, err := GenerateToken(1, "A", RoleAdmin)
	require.NoError(t, err)

	t.Run("secret lain", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "bukan")
		_, err := ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("kedaluwarsa", func(t *testing.T) {
		Now = func() time.Time { return now.Add(TokenTTL() + time.Minute) }
		defer func() { Now = func() time.Time { return now } }()
		_, err := ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("algoritma none", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: 1, Role: RoleAdmin})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateToken(s)
		assert.Error(t, err)
	})
}
