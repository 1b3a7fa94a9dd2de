package mail

import "github.com/skillshare/api/internal/config"

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// New picks a backend from the configuration: Resend when an API key is
// set, SMTP when a host is set, and a log-only mailer otherwise so local
// development works without any mail service.
func New(cfg *config.Config) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return newResendMailer(cfg)
	case cfg.SMTPHost != "":
		return newSMTPMailer(cfg)
	default:
		return logMailer{}
	}
}
