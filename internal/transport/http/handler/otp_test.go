package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skillshare/api/internal/application/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Issue(ctx context.Context, identity, displayName string, purpose otp.Purpose) (int, error) {
	args := m.Called(ctx, identity, displayName, purpose)
	return args.Int(0), args.Error(1)
}

func (m *mockLedger) Verify(ctx context.Context, identity, code string, purpose otp.Purpose) (*otp.Verification, error) {
	args := m.Called(ctx, identity, code, purpose)
	if v, _ := args.Get(0).(*otp.Verification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func newOTPRouter(ledger *mockLedger) http.Handler {
	h := NewOTPHandler(ledger)
	r := chi.NewRouter()
	r.Post("/otp/request", h.Request)
	r.Post("/otp/verify", h.Verify)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestOTPRequest(t *testing.T) {
	ledger := new(mockLedger)
	ledger.On("Issue", mock.Anything, "ana@uni.edu", "", otp.PurposeRegistration).Return(600, nil)
	router := newOTPRouter(ledger)

	rec := postJSON(t, router, "/otp/request", map[string]string{
		"identity": "ana@uni.edu",
		"purpose":  "registration",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var env CodeIssuedEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 600, env.ExpiresIn)
	ledger.AssertExpectations(t)
}

func TestOTPRequest_UnknownPurpose(t *testing.T) {
	ledger := new(mockLedger)
	router := newOTPRouter(ledger)

	rec := postJSON(t, router, "/otp/request", map[string]string{
		"identity": "ana@uni.edu",
		"purpose":  "telepathy",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ledger.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOTPRequest_RateLimited(t *testing.T) {
	ledger := new(mockLedger)
	ledger.On("Issue", mock.Anything, "ana@uni.edu", "", otp.PurposePasswordReset).
		Return(0, otp.ErrRateLimited)
	router := newOTPRouter(ledger)

	rec := postJSON(t, router, "/otp/request", map[string]string{
		"identity": "ana@uni.edu",
		"purpose":  "password-reset",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestOTPVerify(t *testing.T) {
	ledger := new(mockLedger)
	ledger.On("Verify", mock.Anything, "ana@uni.edu", "123456", otp.PurposeRegistration).
		Return(&otp.Verification{
			Identity:   "ana@uni.edu",
			Purpose:    otp.PurposeRegistration,
			VerifiedAt: time.Now().UTC(),
		}, nil)
	router := newOTPRouter(ledger)

	rec := postJSON(t, router, "/otp/verify", map[string]string{
		"identity": "ana@uni.edu",
		"purpose":  "registration",
		"code":     "123456",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var v otp.Verification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "ana@uni.edu", v.Identity)
	ledger.AssertExpectations(t)
}

func TestOTPVerify_BadCodeShape(t *testing.T) {
	ledger := new(mockLedger)
	router := newOTPRouter(ledger)

	rec := postJSON(t, router, "/otp/verify", map[string]string{
		"identity": "ana@uni.edu",
		"purpose":  "registration",
		"code":     "12ab56",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ledger.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOTPVerify_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"mismatch", otp.ErrMismatch, http.StatusUnauthorized},
		{"exhausted", otp.ErrAttemptsExhausted, http.StatusUnauthorized},
		{"expired", otp.ErrExpired, http.StatusGone},
		{"already used", otp.ErrAlreadyUsed, http.StatusConflict},
		{"no live code", otp.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := new(mockLedger)
			ledger.On("Verify", mock.Anything, "ana@uni.edu", "123456", otp.PurposeRegistration).
				Return(nil, tc.err)
			router := newOTPRouter(ledger)

			rec := postJSON(t, router, "/otp/verify", map[string]string{
				"identity": "ana@uni.edu",
				"purpose":  "registration",
				"code":     "123456",
			})

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
