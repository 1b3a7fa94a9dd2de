package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type captureSender struct {
	identity string
	name     string
	code     string
	purpose  Purpose
	calls    int
	err      error
}

func (s *captureSender) Send(_ context.Context, identity, name, code string, purpose Purpose) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.identity, s.name, s.code, s.purpose = identity, name, code, purpose
	return nil
}

func newTestLedger(t *testing.T) (*Ledger, *captureSender, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	sender := &captureSender{}
	limiter := NewMemoryRateLimiter()
	limiter.now = clock.Now
	l := NewLedger(NewMemoryStore(), limiter, sender, Config{})
	l.now = clock.Now
	return l, sender, clock
}

// --- Issue ---

func TestIssue_SendsCodeAndReturnsExpiry(t *testing.T) {
	l, sender, _ := newTestLedger(t)

	expiresIn, err := l.Issue(context.Background(), "alice@example.com", "Alice", PurposeRegistration)

	require.NoError(t, err)
	assert.Equal(t, 600, expiresIn)
	assert.Equal(t, "alice@example.com", sender.identity)
	assert.Equal(t, "Alice", sender.name)
	assert.Equal(t, PurposeRegistration, sender.purpose)
	require.Len(t, sender.code, 6)
	assert.GreaterOrEqual(t, sender.code, "100000")
	assert.LessOrEqual(t, sender.code, "999999")
}

type failingLimiter struct{ err error }

func (f failingLimiter) CheckAndIncrement(context.Context, string, int, time.Duration) error {
	return f.err
}

// A limiter backend outage is an internal failure, not a limit hit: the
// caller must never be told to slow down because Redis is unreachable.
func TestIssue_LimiterBackendFailureIsNotRateLimited(t *testing.T) {
	infraErr := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	l := NewLedger(NewMemoryStore(), failingLimiter{err: infraErr}, &captureSender{}, Config{})

	_, err := l.Issue(context.Background(), "alice@example.com", "Alice", PurposeRegistration)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, infraErr)
}

func TestIssue_FourthRequestWithinWindowIsRateLimited(t *testing.T) {
	l, _, clock := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Issue(ctx, "bob@example.com", "Bob", PurposeRegistration)
		require.NoError(t, err)
	}

	_, err := l.Issue(ctx, "bob@example.com", "Bob", PurposeRegistration)
	require.ErrorIs(t, err, ErrRateLimited)

	// Once the 60s window lapses a new request succeeds.
	clock.Advance(61 * time.Second)
	_, err = l.Issue(ctx, "bob@example.com", "Bob", PurposeRegistration)
	require.NoError(t, err)
}

func TestIssue_RateWindowIsPerIdentity(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Issue(ctx, "bob@example.com", "Bob", PurposeRegistration)
		require.NoError(t, err)
	}

	_, err := l.Issue(ctx, "carol@example.com", "Carol", PurposeRegistration)
	require.NoError(t, err)
}

func TestIssue_NewCodeInvalidatesPriorOne(t *testing.T) {
	l, sender, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.NoError(t, err)
	oldCode := sender.code

	_, err = l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.NoError(t, err)
	if sender.code == oldCode {
		t.Skipf("freshly generated code collided with the old one")
	}

	_, err = l.Verify(ctx, "alice@example.com", oldCode, PurposeRegistration)
	require.Error(t, err)

	_, err = l.Verify(ctx, "alice@example.com", sender.code, PurposeRegistration)
	require.NoError(t, err)
}

func TestIssue_DispatchFailureRollsBackEntry(t *testing.T) {
	l, sender, _ := newTestLedger(t)
	sender.err = errors.New("smtp: connection refused")
	ctx := context.Background()

	_, err := l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.ErrorIs(t, err, ErrDispatchFailed)

	// The undelivered code must not be verifiable.
	_, err = l.Verify(ctx, "alice@example.com", "123456", PurposeRegistration)
	require.ErrorIs(t, err, ErrNotFound)
}

// --- Verify ---

func TestVerify_UnknownIdentity(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.Verify(context.Background(), "nobody@example.com", "123456", PurposeRegistration)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_PurposesDoNotCollide(t *testing.T) {
	l, sender, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.NoError(t, err)

	_, err = l.Verify(ctx, "alice@example.com", sender.code, PurposePasswordReset)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_SuccessThenReplay(t *testing.T) {
	l, sender, clock := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.NoError(t, err)

	// Wrong code first: one attempt consumed, two remaining.
	_, err = l.Verify(ctx, "alice@example.com", "000000", PurposeRegistration)
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "2 attempt(s) remaining")

	v, err := l.Verify(ctx, "alice@example.com", sender.code, PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", v.Identity)
	assert.Equal(t, PurposeRegistration, v.Purpose)
	assert.Equal(t, clock.Now().UTC(), v.VerifiedAt)

	// Replaying the consumed code is distinguishable from an unknown one.
	_, err = l.Verify(ctx, "alice@example.com", sender.code, PurposeRegistration)
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestVerify_ExpiredCode(t *testing.T) {
	l, sender, clock := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.NoError(t, err)

	clock.Advance(10*time.Minute + time.Second)

	_, err = l.Verify(ctx, "alice@example.com", sender.code, PurposeRegistration)
	require.ErrorIs(t, err, ErrExpired)

	// The expired entry was purged on that read.
	_, err = l.Verify(ctx, "alice@example.com", sender.code, PurposeRegistration)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_AttemptsExhausted(t *testing.T) {
	l, sender, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Issue(ctx, "alice@example.com", "Alice", PurposeRegistration)
	require.NoError(t, err)

	_, err = l.Verify(ctx, "alice@example.com", "000000", PurposeRegistration)
	require.ErrorIs(t, err, ErrMismatch)
	_, err = l.Verify(ctx, "alice@example.com", "000001", PurposeRegistration)
	require.ErrorIs(t, err, ErrMismatch)

	// Third failure exhausts the limit and purges the entry.
	_, err = l.Verify(ctx, "alice@example.com", "000002", PurposeRegistration)
	require.ErrorIs(t, err, ErrAttemptsExhausted)

	// Even the correct code is gone now.
	_, err = l.Verify(ctx, "alice@example.com", sender.code, PurposeRegistration)
	require.ErrorIs(t, err, ErrNotFound)
}

// --- Sweep ---

func TestSweep_RemovesDeadEntriesAndWindows(t *testing.T) {
	l, sender, clock := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Issue(ctx, "used@example.com", "U", PurposeRegistration)
	require.NoError(t, err)
	_, err = l.Verify(ctx, "used@example.com", sender.code, PurposeRegistration)
	require.NoError(t, err)

	_, err = l.Issue(ctx, "stale@example.com", "S", PurposeRegistration)
	require.NoError(t, err)
	_, err = l.Issue(ctx, "fresh@example.com", "F", PurposeRegistration)
	require.NoError(t, err)

	clock.Advance(10*time.Minute + time.Second)
	_, err = l.Issue(ctx, "fresh@example.com", "F", PurposeRegistration)
	require.NoError(t, err)

	removed, err := l.store.Sweep(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, removed) // used + stale; fresh survives

	// Correctness does not depend on the sweep: fresh still verifies.
	_, err = l.Verify(ctx, "fresh@example.com", sender.code, PurposeRegistration)
	require.NoError(t, err)
}

func TestRunSweeper_StopsOnCancel(t *testing.T) {
	l, _, _ := newTestLedger(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestParsePurpose(t *testing.T) {
	for _, s := range []string{"registration", "password-reset", "verification"} {
		p, err := ParsePurpose(s)
		require.NoError(t, err)
		assert.Equal(t, s, p.String())
	}
	_, err := ParsePurpose("login")
	require.Error(t, err)
}
