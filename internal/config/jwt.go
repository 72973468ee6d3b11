package config

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

type JWTClaims struct {
	UserID int64  `json:"user_id"`
	Nama   string `json:"nama"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(GetEnv("JWT_SECRET", ""))
}

func TokenTTL() time.Duration {
	return time.Duration(GetEnvInt("JWT_TTL_HOURS", 12)) * time.Hour
}

// GenerateToken - token HS256 dengan jti unik supaya bisa dicabut saat logout.
func GenerateToken(userID int64, nama, role string) (string, time.Time, error) {
	if len(jwtSecret()) == 0 {
		return "", time.Time{}, errors.New("JWT_SECRET belum diatur")
	}

	now := Now()
	expiresAt := now.Add(TokenTTL())
	claims := JWTClaims{
		UserID: userID,
		Nama:   nama,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(Now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
