package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"
)

// Config carries the ledger's tunables. Zero values fall back to the
// defaults below.
type Config struct {
	TTL         time.Duration // code validity window
	MaxAttempts int           // failed verifications before the entry is purged
	RateLimit   int           // issuances per identity per RateWindow
	RateWindow  time.Duration
}

const (
	defaultTTL         = 10 * time.Minute
	defaultMaxAttempts = 3
	defaultRateLimit   = 3
	defaultRateWindow  = time.Minute
)

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = defaultTTL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateWindow <= 0 {
		c.RateWindow = defaultRateWindow
	}
	return c
}

// Ledger issues, verifies and retires one-time codes. It is independent of
// the delivery mechanism and of where entries live; both are injected.
type Ledger struct {
	store   Store
	limiter RateLimiter
	sender  Sender
	cfg     Config
	now     func() time.Time
}

func NewLedger(store Store, limiter RateLimiter, sender Sender, cfg Config) *Ledger {
	return &Ledger{
		store:   store,
		limiter: limiter,
		sender:  sender,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// Issue generates and dispatches a fresh code for (identity, purpose),
// invalidating any code previously issued for the pair. It returns the
// expiry countdown in seconds.
func (l *Ledger) Issue(ctx context.Context, identity, displayName string, purpose Purpose) (int, error) {
	if err := l.limiter.CheckAndIncrement(ctx, identity, l.cfg.RateLimit, l.cfg.RateWindow); err != nil {
		// Only a genuine limit hit is the caller's fault; a broken limiter
		// backend must not masquerade as one.
		if errors.Is(err, ErrRateLimited) {
			return 0, fmt.Errorf("identity %s: %w", identity, ErrRateLimited)
		}
		return 0, fmt.Errorf("rate check: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return 0, fmt.Errorf("generate code: %w", err)
	}

	now := l.now()
	e := Entry{
		Code:        code,
		Identity:    identity,
		Purpose:     purpose,
		CreatedAt:   now,
		ExpiresAt:   now.Add(l.cfg.TTL),
		MaxAttempts: l.cfg.MaxAttempts,
	}
	// Save overwrites: at most one live code per (identity, purpose).
	if err := l.store.Save(ctx, e); err != nil {
		return 0, fmt.Errorf("store code: %w", err)
	}

	if err := l.sender.Send(ctx, identity, displayName, code, purpose); err != nil {
		// The entry must not stay verifiable if the user never received it.
		if dErr := l.store.Delete(ctx, identity, purpose); dErr != nil {
			slog.Warn("could not roll back undelivered code", "identity", identity, "purpose", purpose, "err", dErr)
		}
		return 0, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	return int(l.cfg.TTL.Seconds()), nil
}

// Verify checks code against the live entry for (identity, purpose).
// On success the entry is kept and marked used so a replay of the same
// code reports ErrAlreadyUsed rather than falling through to not-found.
func (l *Ledger) Verify(ctx context.Context, identity, code string, purpose Purpose) (*Verification, error) {
	e, err := l.store.Get(ctx, identity, purpose)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load code: %w", err)
	}

	if e.Used {
		return nil, ErrAlreadyUsed
	}

	now := l.now()
	if now.After(e.ExpiresAt) {
		l.discard(ctx, identity, purpose)
		return nil, ErrExpired
	}

	if e.Attempts >= e.MaxAttempts {
		l.discard(ctx, identity, purpose)
		return nil, ErrAttemptsExhausted
	}

	if code != e.Code {
		attempts, err := l.store.IncrementAttempts(ctx, identity, purpose)
		if err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		if attempts >= e.MaxAttempts {
			l.discard(ctx, identity, purpose)
			return nil, ErrAttemptsExhausted
		}
		remaining := e.MaxAttempts - attempts
		return nil, fmt.Errorf("%w, %d attempt(s) remaining", ErrMismatch, remaining)
	}

	if err := l.store.MarkUsed(ctx, identity, purpose); err != nil {
		return nil, fmt.Errorf("mark code used: %w", err)
	}
	return &Verification{Identity: identity, Purpose: purpose, VerifiedAt: now.UTC()}, nil
}

func (l *Ledger) discard(ctx context.Context, identity string, purpose Purpose) {
	if err := l.store.Delete(ctx, identity, purpose); err != nil {
		slog.Warn("could not delete dead code entry", "identity", identity, "purpose", purpose, "err", err)
	}
}

type sweepable interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// RunSweeper periodically removes expired/used entries and lapsed rate
// windows until ctx is cancelled. Memory hygiene only: correctness never
// depends on it because Verify re-checks expiry and the used flag.
func (l *Ledger) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := l.now()
			removed, err := l.store.Sweep(ctx, now)
			if err != nil {
				slog.Warn("otp sweep failed", "err", err)
				continue
			}
			if s, ok := l.limiter.(sweepable); ok {
				n, err := s.Sweep(ctx, now)
				if err != nil {
					slog.Warn("rate window sweep failed", "err", err)
				}
				removed += n
			}
			if removed > 0 {
				slog.Info("otp sweep", "removed", removed)
			}
		}
	}
}

// generateCode draws a 6-digit code uniformly from 100000–999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
