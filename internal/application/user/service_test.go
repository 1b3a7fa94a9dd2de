package user

import (
	"context"
	"errors"
	"testing"

	"github.com/skillshare/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

func strPtr(s string) *string { return &s }

func TestUpdate_EmptyRequestReadsBack(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(us)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_UsernameTakenByOther(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "bob").Return(&domain.User{UserID: "u2"}, nil)

	svc := NewService(us)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Username: strPtr("bob")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_InvalidRole(t *testing.T) {
	us := &mockUserStore{}
	role := "superuser"

	svc := NewService(us)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Role: &role})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_NegativeHourlyRate(t *testing.T) {
	rate := int64(-100)

	svc := NewService(&mockUserStore{})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{HourlyRate: &rate})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_ProfileFields(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldBio:        "I build things",
		fieldUniversity: "MIT",
	}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(us)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		Bio:        strPtr("I build things"),
		University: strPtr("MIT"),
	})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	svc := NewService(us)
	err = svc.ChangePassword(context.Background(), "u1", "wrong", "newpassword1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_HappyPath(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		newHash, ok := updates[fieldPasswordHash].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(newHash), []byte("newpassword1")) == nil
	})).Return(nil)

	svc := NewService(us)
	err = svc.ChangePassword(context.Background(), "u1", "correct-password", "newpassword1")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestList_DefaultsLimit(t *testing.T) {
	us := &mockUserStore{}
	us.On("ScanPage", mock.Anything, int32(50), "").Return([]domain.User{}, "", nil)

	svc := NewService(us)
	_, _, err := svc.List(context.Background(), 0, "")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
