package otp

import (
	"context"
	"fmt"
)

// mailer matches internal/infrastructure/mail.Mailer.
type mailer interface {
	SendEmail(to, subject, body string) error
}

type template struct {
	subject string
	body    string // fmt: display name, code, minutes valid
}

// One fixed template per purpose.
var templates = map[Purpose]template{
	PurposeRegistration: {
		subject: "Welcome to SkillShare — confirm your email",
		body:    "Hi %s,\n\nYour SkillShare registration code is %s. It expires in %d minutes.\n\nIf you did not sign up, you can ignore this email.",
	},
	PurposePasswordReset: {
		subject: "SkillShare password reset code",
		body:    "Hi %s,\n\nUse code %s to reset your SkillShare password. It expires in %d minutes.\n\nIf you did not request a reset, you can ignore this email.",
	},
	PurposeVerification: {
		subject: "SkillShare verification code",
		body:    "Hi %s,\n\nYour SkillShare verification code is %s. It expires in %d minutes.",
	},
}

// EmailSender formats the per-purpose message and hands it to a mailer.
type EmailSender struct {
	mailer       mailer
	validMinutes int
}

func NewEmailSender(m mailer, ttlMinutes int) *EmailSender {
	return &EmailSender{mailer: m, validMinutes: ttlMinutes}
}

func (s *EmailSender) Send(_ context.Context, identity, displayName, code string, purpose Purpose) error {
	t, ok := templates[purpose]
	if !ok {
		return fmt.Errorf("no template for purpose %q", purpose)
	}
	if displayName == "" {
		displayName = "there"
	}
	body := fmt.Sprintf(t.body, displayName, code, s.validMinutes)
	return s.mailer.SendEmail(identity, t.subject, body)
}
