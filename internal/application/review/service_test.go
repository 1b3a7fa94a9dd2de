package review

import (
	"context"
	"errors"
	"testing"

	"github.com/skillshare/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReviewStore struct{ mock.Mock }

func (m *mockReviewStore) Put(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReviewStore) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	args := m.Called(ctx, reviewID)
	if r, _ := args.Get(0).(*domain.Review); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReviewStore) ListByProject(ctx context.Context, projectID string) ([]domain.Review, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *mockReviewStore) GetByOrder(ctx context.Context, orderID string) (*domain.Review, error) {
	args := m.Called(ctx, orderID)
	if r, _ := args.Get(0).(*domain.Review); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReviewStore) SoftDelete(ctx context.Context, reviewID string) error {
	return m.Called(ctx, reviewID).Error(0)
}

type mockOrderGetter struct{ mock.Mock }

func (m *mockOrderGetter) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func completedOrder() *domain.Order {
	return &domain.Order{
		OrderID:   "o1",
		ProjectID: "p1",
		BuyerID:   "buyer",
		SellerID:  "seller",
		Status:    domain.OrderCompleted,
	}
}

func TestCreate_HappyPath(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(completedOrder(), nil)

	rs := &mockReviewStore{}
	rs.On("GetByOrder", mock.Anything, "o1").Return(nil, domain.ErrNotFound)
	rs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	svc := NewService(ServiceDeps{ReviewRepo: rs, OrderRepo: og})
	r, err := svc.Create(context.Background(), "buyer", domain.CreateReviewRequest{
		OrderID: "o1", Rating: 5, Comment: "great work",
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", r.ProjectID)
	assert.Equal(t, 5, r.Rating)
	rs.AssertExpectations(t)
}

func TestCreate_OnlyBuyerReviews(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(completedOrder(), nil)

	svc := NewService(ServiceDeps{ReviewRepo: &mockReviewStore{}, OrderRepo: og})
	_, err := svc.Create(context.Background(), "seller", domain.CreateReviewRequest{OrderID: "o1", Rating: 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreate_OrderMustBeCompleted(t *testing.T) {
	o := completedOrder()
	o.Status = domain.OrderDelivered
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(o, nil)

	svc := NewService(ServiceDeps{ReviewRepo: &mockReviewStore{}, OrderRepo: og})
	_, err := svc.Create(context.Background(), "buyer", domain.CreateReviewRequest{OrderID: "o1", Rating: 4})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreate_OnePerOrder(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(completedOrder(), nil)

	rs := &mockReviewStore{}
	rs.On("GetByOrder", mock.Anything, "o1").Return(&domain.Review{ReviewID: "r1"}, nil)

	svc := NewService(ServiceDeps{ReviewRepo: rs, OrderRepo: og})
	_, err := svc.Create(context.Background(), "buyer", domain.CreateReviewRequest{OrderID: "o1", Rating: 3})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	rs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestDelete_StrangerForbidden(t *testing.T) {
	rs := &mockReviewStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.Review{ReviewID: "r1", ReviewerID: "buyer"}, nil)

	svc := NewService(ServiceDeps{ReviewRepo: rs, OrderRepo: &mockOrderGetter{}})
	err := svc.Delete(context.Background(), "r1", "stranger", false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDelete_AdminAllowed(t *testing.T) {
	rs := &mockReviewStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.Review{ReviewID: "r1", ReviewerID: "buyer"}, nil)
	rs.On("SoftDelete", mock.Anything, "r1").Return(nil)

	svc := NewService(ServiceDeps{ReviewRepo: rs, OrderRepo: &mockOrderGetter{}})
	err := svc.Delete(context.Background(), "r1", "admin-user", true)

	require.NoError(t, err)
	rs.AssertExpectations(t)
}
