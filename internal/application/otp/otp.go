package otp

import (
	"context"
	"fmt"
	"time"
)

// Purpose scopes a code to one flow so codes for different flows never collide.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password-reset"
	PurposeVerification  Purpose = "verification"
)

func (p Purpose) String() string { return string(p) }

// ParsePurpose validates a purpose received over the wire.
func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeRegistration, PurposePasswordReset, PurposeVerification:
		return Purpose(s), nil
	}
	return "", fmt.Errorf("unknown purpose %q", s)
}

// Entry is one issued code. At most one live (unused, unexpired) entry
// exists per (identity, purpose); Save overwrites any prior one.
type Entry struct {
	Code        string    `json:"code"`
	Identity    string    `json:"identity"`
	Purpose     Purpose   `json:"purpose"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	Used        bool      `json:"used"`
}

// Verification is the successful outcome of Verify.
type Verification struct {
	Identity   string    `json:"identity"`
	Purpose    Purpose   `json:"purpose"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Store persists entries keyed by (identity, purpose). Implementations
// must make Save an atomic replace so issuing a new code invalidates the
// prior one even under concurrent issuers.
type Store interface {
	Save(ctx context.Context, e Entry) error
	Get(ctx context.Context, identity string, purpose Purpose) (*Entry, error)
	Delete(ctx context.Context, identity string, purpose Purpose) error
	// IncrementAttempts bumps the failed-attempt counter and returns the new value.
	IncrementAttempts(ctx context.Context, identity string, purpose Purpose) (int, error)
	MarkUsed(ctx context.Context, identity string, purpose Purpose) error
	// Sweep removes expired and used entries. Advisory: every read path
	// re-checks expiry and the used flag, so skipping it only costs memory.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// RateLimiter bounds how many codes one identity may request per window.
type RateLimiter interface {
	CheckAndIncrement(ctx context.Context, identity string, limit int, window time.Duration) error
}

// Sender delivers a code to an identity. Implementations must not assume
// delivery confirmation beyond the returned error.
type Sender interface {
	Send(ctx context.Context, identity, displayName, code string, purpose Purpose) error
}
