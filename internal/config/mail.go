package config

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrMailDisabled = errors.New("mail API belum diatur")

type MailAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type MailMessage struct {
	From        string           `json:"from"`
	To          []string         `json:"to"`
	Subject     string           `json:"subject"`
	HTML        string           `json:"html"`
	Attachments []MailAttachment `json:"attachments,omitempty"`
}

func MailEnabled() bool {
	return GetEnv("MAIL_API_URL", "") != ""
}

// NewAttachment - lampiran dikirim sebagai base64.
func NewAttachment(filename string, content []byte) MailAttachment {
	return MailAttachment{
		Filename: filename,
		Content:  base64.StdEncoding.EncodeToString(content),
	}
}

// SendMail kirim email lewat HTTP email API (MAIL_API_URL, MAIL_API_KEY).
func SendMail(msg MailMessage) error {
	if !MailEnabled() {
		return ErrMailDisabled
	}
	if msg.From == "" {
		msg.From = GetEnv("MAIL_FROM", "panitia@localhost")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, GetEnv("MAIL_API_URL", ""), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := GetEnv("MAIL_API_KEY", ""); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail API status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
