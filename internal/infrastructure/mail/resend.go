package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skillshare/api/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

type resendMailer struct {
	apiKey string
	from   string
	client *http.Client
}

func newResendMailer(cfg *config.Config) *resendMailer {
	return &resendMailer{
		apiKey: cfg.ResendAPIKey,
		from:   cfg.MailFrom,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *resendMailer) SendEmail(to, subject, body string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    m.from,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}
