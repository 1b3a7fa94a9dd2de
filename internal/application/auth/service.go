package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillshare/api/internal/application/otp"
	"github.com/skillshare/api/internal/domain"
	jwtinfra "github.com/skillshare/api/internal/infrastructure/jwt"
	"github.com/skillshare/api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// RegisterResult carries what the registration endpoint returns: the
// created (still disabled) account and how long its code stays valid.
type RegisterResult struct {
	User          *domain.User `json:"user"`
	CodeExpiresIn int          `json:"code_expires_in"`
}

// ErrTokensUnavailable means the service was built without signing keys.
// Token-issuing flows refuse up front instead of burning the user's code
// and failing halfway.
var ErrTokensUnavailable = errors.New("token provider not configured")

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*RegisterResult, error)
	VerifyRegistration(ctx context.Context, req VerifyRequest) (bearer string, u *domain.User, err error)
	Login(ctx context.Context, username, password string) (bearer string, u *domain.User, err error)
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (int, error)
	VerifyPasswordReset(ctx context.Context, req VerifyRequest) (resetToken string, err error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	RequestAccountVerification(ctx context.Context, userID string) (int, error)
	ConfirmAccountVerification(ctx context.Context, userID, code string) error
}

// codeLedger is the slice of the OTP ledger the auth flows need.
type codeLedger interface {
	Issue(ctx context.Context, identity, displayName string, purpose otp.Purpose) (int, error)
	Verify(ctx context.Context, identity, code string, purpose otp.Purpose) (*otp.Verification, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenProvider interface {
	Sign(userID, role string) (string, error)
	SignReset(userID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	users  userStore
	ledger codeLedger
	tokens tokenProvider
}

type ServiceDeps struct {
	UserRepo userStore
	Ledger   codeLedger
	Tokens   tokenProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.UserRepo, ledger: deps.Ledger, tokens: deps.Tokens}
}

// Register creates a disabled account and emails it a registration code.
// The account stays unusable until VerifyRegistration succeeds.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*RegisterResult, error) {
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		DisplayName:  req.DisplayName,
		University:   req.University,
		Skills:       req.Skills,
		Enable:       0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	expiresIn, err := s.ledger.Issue(ctx, u.Email, u.DisplayName, otp.PurposeRegistration)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: u, CodeExpiresIn: expiresIn}, nil
}

func (s *service) VerifyRegistration(ctx context.Context, req VerifyRequest) (string, *domain.User, error) {
	if s.tokens == nil {
		return "", nil, ErrTokensUnavailable
	}
	if _, err := s.ledger.Verify(ctx, req.Email, req.Code, otp.PurposeRegistration); err != nil {
		return "", nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
		"enable":          1,
		"email_confirmed": true,
	}); err != nil {
		return "", nil, err
	}
	u.Enable = 1
	u.EmailConfirmed = true
	bearer, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return bearer, u, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if s.tokens == nil {
		return "", nil, ErrTokensUnavailable
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if u.Enable != 1 {
		return "", nil, fmt.Errorf("account not activated: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	bearer, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return bearer, u, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (int, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return 0, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return s.ledger.Issue(ctx, u.Email, u.DisplayName, otp.PurposePasswordReset)
}

// VerifyPasswordReset trades a valid reset code for a short-lived reset
// token. The password change itself happens in ResetPassword so the code
// is burned even if the user abandons the flow.
func (s *service) VerifyPasswordReset(ctx context.Context, req VerifyRequest) (string, error) {
	if s.tokens == nil {
		return "", ErrTokensUnavailable
	}
	if _, err := s.ledger.Verify(ctx, req.Email, req.Code, otp.PurposePasswordReset); err != nil {
		return "", err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return s.tokens.SignReset(u.UserID)
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if s.tokens == nil {
		return ErrTokensUnavailable
	}
	claims, err := s.tokens.Verify(req.ResetToken)
	if err != nil {
		return fmt.Errorf("invalid reset token: %w", domain.ErrUnauthorized)
	}
	if claims.Purpose != jwtinfra.PurposePasswordReset {
		return fmt.Errorf("not a reset token: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, claims.UserID, map[string]interface{}{"password_hash": string(hash)})
}

// RequestAccountVerification emails a code the user confirms to get the
// "verified" badge on their profile.
func (s *service) RequestAccountVerification(ctx context.Context, userID string) (int, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if u.Verified {
		return 0, fmt.Errorf("account already verified: %w", domain.ErrConflict)
	}
	return s.ledger.Issue(ctx, u.Email, u.DisplayName, otp.PurposeVerification)
}

func (s *service) ConfirmAccountVerification(ctx context.Context, userID, code string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.ledger.Verify(ctx, u.Email, code, otp.PurposeVerification); err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"verified": true})
}
