package order

import (
	"context"
	"errors"
	"testing"

	"github.com/skillshare/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) Put(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderStore) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *mockOrderStore) ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *mockOrderStore) TransitionStatus(ctx context.Context, orderID, from, to string) error {
	return m.Called(ctx, orderID, from, to).Error(0)
}

type mockProjectGetter struct{ mock.Mock }

func (m *mockProjectGetter) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if p, _ := args.Get(0).(*domain.Project); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}

// --- helpers ---

func newTestService(os *mockOrderStore, pg *mockProjectGetter) Service {
	return NewService(ServiceDeps{OrderRepo: os, ProjectRepo: pg, Events: nopPublisher{}})
}

func openOrder(status string) *domain.Order {
	return &domain.Order{
		OrderID:  "o1",
		BuyerID:  "buyer",
		SellerID: "seller",
		Status:   status,
	}
}

// --- Create ---

func TestCreate_SnapshotsListingPrice(t *testing.T) {
	pg := &mockProjectGetter{}
	pg.On("Get", mock.Anything, "p1").Return(&domain.Project{
		ProjectID: "p1", CreatorID: "seller", PriceCents: 5000, Enable: 1,
	}, nil)

	os := &mockOrderStore{}
	var created *domain.Order
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.Order")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Order)
	}).Return(nil)

	svc := newTestService(os, pg)
	o, err := svc.Create(context.Background(), "buyer", domain.CreateOrderRequest{ProjectID: "p1"})

	require.NoError(t, err)
	assert.Equal(t, int64(5000), o.PriceCents)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, "seller", o.SellerID)
	require.NotNil(t, created)
}

func TestCreate_RejectsOwnListing(t *testing.T) {
	pg := &mockProjectGetter{}
	pg.On("Get", mock.Anything, "p1").Return(&domain.Project{
		ProjectID: "p1", CreatorID: "seller", Enable: 1,
	}, nil)

	svc := newTestService(&mockOrderStore{}, pg)
	_, err := svc.Create(context.Background(), "seller", domain.CreateOrderRequest{ProjectID: "p1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Get ---

func TestGet_StrangerForbidden(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderPending), nil)

	svc := newTestService(os, nil)
	_, err := svc.Get(context.Background(), "o1", "stranger", false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestGet_AdminAllowed(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderPending), nil)

	svc := newTestService(os, nil)
	o, err := svc.Get(context.Background(), "o1", "stranger", true)

	require.NoError(t, err)
	assert.Equal(t, "o1", o.OrderID)
}

// --- UpdateStatus ---

func TestUpdateStatus_SellerAccepts(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderPending), nil)
	os.On("TransitionStatus", mock.Anything, "o1", domain.OrderPending, domain.OrderInProgress).Return(nil)

	svc := newTestService(os, nil)
	o, err := svc.UpdateStatus(context.Background(), "o1", "seller",
		domain.UpdateOrderStatusRequest{Status: domain.OrderInProgress})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderInProgress, o.Status)
	os.AssertExpectations(t)
}

func TestUpdateStatus_BuyerCannotAccept(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderPending), nil)

	svc := newTestService(os, nil)
	_, err := svc.UpdateStatus(context.Background(), "o1", "buyer",
		domain.UpdateOrderStatusRequest{Status: domain.OrderInProgress})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	os.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_OnlyBuyerCompletes(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderDelivered), nil)

	svc := newTestService(os, nil)
	_, err := svc.UpdateStatus(context.Background(), "o1", "seller",
		domain.UpdateOrderStatusRequest{Status: domain.OrderCompleted})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdateStatus_NoSkippingStates(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderPending), nil)

	svc := newTestService(os, nil)
	_, err := svc.UpdateStatus(context.Background(), "o1", "seller",
		domain.UpdateOrderStatusRequest{Status: domain.OrderDelivered})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdateStatus_TerminalOrderRejected(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderCompleted), nil)

	svc := newTestService(os, nil)
	_, err := svc.UpdateStatus(context.Background(), "o1", "buyer",
		domain.UpdateOrderStatusRequest{Status: domain.OrderCancelled})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdateStatus_EitherPartyCancelsOpenOrder(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderInProgress), nil)
	os.On("TransitionStatus", mock.Anything, "o1", domain.OrderInProgress, domain.OrderCancelled).Return(nil)

	svc := newTestService(os, nil)
	o, err := svc.UpdateStatus(context.Background(), "o1", "buyer",
		domain.UpdateOrderStatusRequest{Status: domain.OrderCancelled})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
}

func TestUpdateStatus_LostRaceSurfacesConflict(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(openOrder(domain.OrderPending), nil)
	os.On("TransitionStatus", mock.Anything, "o1", domain.OrderPending, domain.OrderInProgress).
		Return(domain.ErrConflict)

	svc := newTestService(os, nil)
	_, err := svc.UpdateStatus(context.Background(), "o1", "seller",
		domain.UpdateOrderStatusRequest{Status: domain.OrderInProgress})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
