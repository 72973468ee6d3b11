package config

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

var RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var httpClient = &http.Client{Timeout: 10 * time.Second}

type RecaptchaResponse struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
	Action  string  `json:"action"`
}

// RecaptchaEnabled - verifikasi hanya aktif kalau secret diisi.
func RecaptchaEnabled() bool {
	return GetEnv("RECAPTCHA_SECRET_KEY", "") != ""
}

func VerifyRecaptcha(token string) (bool, float64, error) {
	data := url.Values{}
	data.Set("secret", GetEnv("RECAPTCHA_SECRET_KEY", ""))
	data.Set("response", token)

	resp, err := httpClient.PostForm(RecaptchaVerifyURL, data)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	var result RecaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, 0, err
	}

	return result.Success, result.Score, nil
}
