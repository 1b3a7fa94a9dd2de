package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/skillshare/api/internal/application/otp"
	"github.com/skillshare/api/internal/pkg/validate"
)

// CodeLedger is the slice of the OTP ledger the generic endpoints need.
type CodeLedger interface {
	Issue(ctx context.Context, identity, displayName string, purpose otp.Purpose) (int, error)
	Verify(ctx context.Context, identity, code string, purpose otp.Purpose) (*otp.Verification, error)
}

// OTPHandler exposes the raw issue/verify operations for clients that drive
// their own flows (e.g. a mobile app confirming a new contact address).
type OTPHandler struct {
	ledger CodeLedger
}

func NewOTPHandler(ledger CodeLedger) *OTPHandler { return &OTPHandler{ledger: ledger} }

type issueCodeRequest struct {
	Identity string `json:"identity" validate:"required,email"`
	Purpose  string `json:"purpose" validate:"required"`
}

type verifyCodeRequest struct {
	Identity string `json:"identity" validate:"required,email"`
	Purpose  string `json:"purpose" validate:"required"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req issueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purpose, err := otp.ParsePurpose(req.Purpose)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expiresIn, err := h.ledger.Issue(r.Context(), req.Identity, "", purpose)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CodeIssuedEnvelope{Message: "code sent", ExpiresIn: expiresIn})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purpose, err := otp.ParsePurpose(req.Purpose)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.ledger.Verify(r.Context(), req.Identity, req.Code, purpose)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
