package models

import "time"

type Admin struct {
	ID        int64
	Nama      string
	Email     string
	Password  string
	CreatedAt time.Time
}

type AdminLoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type CreateAdminRequest struct {
	Nama     string `json:"nama" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AdminResponse struct {
	ID    int64  `json:"id"`
	Nama  string `json:"nama"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      interface{} `json:"user"`
}

func ToAdminResponse(a Admin) AdminResponse {
	return AdminResponse{
		ID:    a.ID,
		Nama:  a.Nama,
		Email: a.Email,
	}
}
