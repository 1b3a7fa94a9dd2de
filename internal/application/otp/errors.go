package otp

import "errors"

// Every ledger failure is one of these expected, user-facing outcomes.
// Handlers map them to HTTP statuses; none is ever a panic.
var (
	ErrRateLimited       = errors.New("too many codes requested, try again later")
	ErrDispatchFailed    = errors.New("could not deliver the code")
	ErrNotFound          = errors.New("code is invalid or expired, request a new one")
	ErrAlreadyUsed       = errors.New("code has already been used")
	ErrExpired           = errors.New("code expired, request a new one")
	ErrAttemptsExhausted = errors.New("too many incorrect attempts, request a new code")
	ErrMismatch          = errors.New("incorrect code")
)
