package mail

import "log/slog"

// logMailer writes emails to the log instead of sending them. Development
// fallback only.
type logMailer struct{}

func (logMailer) SendEmail(to, subject, body string) error {
	slog.Info("mail (not sent)", "to", to, "subject", subject, "body", body)
	return nil
}
