package payment

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

type mockPaymentStore struct{ mock.Mock }

func (m *mockPaymentStore) Put(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPaymentStore) Get(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if p, _ := args.Get(0).(*domain.Payment); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentStore) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *mockPaymentStore) TransitionStatus(ctx context.Context, paymentID, from, to, providerRef string) error {
	return m.Called(ctx, paymentID, from, to, providerRef).Error(0)
}

type mockWalletStore struct{ mock.Mock }

func (m *mockWalletStore) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if w, _ := args.Get(0).(*domain.Wallet); w != nil {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockWalletStore) ListEntries(ctx context.Context, userID string) ([]domain.WalletEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.WalletEntry), args.Error(1)
}
func (m *mockWalletStore) CreditForPayment(ctx context.Context, e *domain.WalletEntry, providerRef string) error {
	return m.Called(ctx, e, providerRef).Error(0)
}
func (m *mockWalletStore) Withdraw(ctx context.Context, e *domain.WalletEntry) error {
	return m.Called(ctx, e).Error(0)
}

type mockOrderGetter struct{ mock.Mock }

func (m *mockOrderGetter) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderGetter) TransitionStatus(ctx context.Context, orderID, from, to string) error {
	return m.Called(ctx, orderID, from, to).Error(0)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}

// --- helpers ---

func newTestService(ps *mockPaymentStore, ws *mockWalletStore, og *mockOrderGetter) Service {
	return NewService(ServiceDeps{PaymentRepo: ps, WalletRepo: ws, OrderRepo: og, Events: nopPublisher{}})
}

func testOrder() *domain.Order {
	return &domain.Order{
		OrderID:    "o1",
		BuyerID:    "buyer",
		SellerID:   "seller",
		PriceCents: 5000,
		Status:     domain.OrderPending,
	}
}

// --- Create ---

func TestCreate_OnlyBuyerPays(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(testOrder(), nil)

	svc := newTestService(&mockPaymentStore{}, nil, og)
	_, err := svc.Create(context.Background(), "seller", domain.CreatePaymentRequest{OrderID: "o1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreate_OpensProcessingPaymentAtOrderPrice(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(testOrder(), nil)

	ps := &mockPaymentStore{}
	ps.On("ListByOrder", mock.Anything, "o1").Return([]domain.Payment{}, nil)
	ps.On("Put", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)

	svc := newTestService(ps, nil, og)
	p, err := svc.Create(context.Background(), "buyer", domain.CreatePaymentRequest{OrderID: "o1"})

	require.NoError(t, err)
	assert.Equal(t, int64(5000), p.AmountCents)
	assert.Equal(t, domain.PaymentProcessing, p.Status)
	assert.Equal(t, "seller", p.PayeeID)
	assert.Equal(t, "USD", p.Currency)
}

func TestCreate_RejectsSecondActivePayment(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(testOrder(), nil)

	ps := &mockPaymentStore{}
	ps.On("ListByOrder", mock.Anything, "o1").Return([]domain.Payment{
		{PaymentID: "pay1", Status: domain.PaymentProcessing},
	}, nil)

	svc := newTestService(ps, nil, og)
	_, err := svc.Create(context.Background(), "buyer", domain.CreatePaymentRequest{OrderID: "o1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	ps.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_FailedPaymentCanBeRetried(t *testing.T) {
	og := &mockOrderGetter{}
	og.On("Get", mock.Anything, "o1").Return(testOrder(), nil)

	ps := &mockPaymentStore{}
	ps.On("ListByOrder", mock.Anything, "o1").Return([]domain.Payment{
		{PaymentID: "pay1", Status: domain.PaymentFailed},
	}, nil)
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ps, nil, og)
	_, err := svc.Create(context.Background(), "buyer", domain.CreatePaymentRequest{OrderID: "o1"})

	require.NoError(t, err)
}

// --- HandleProviderEvent ---

func TestHandleProviderEvent_CompletedCreditsPayee(t *testing.T) {
	ps := &mockPaymentStore{}
	ps.On("Get", mock.Anything, "pay1").Return(&domain.Payment{
		PaymentID: "pay1", OrderID: "o1", PayeeID: "seller", AmountCents: 5000, Status: domain.PaymentProcessing,
	}, nil)

	ws := &mockWalletStore{}
	ws.On("CreditForPayment", mock.Anything,
		mock.MatchedBy(func(e *domain.WalletEntry) bool {
			return e.UserID == "seller" && e.AmountCents == 5000 &&
				e.Kind == domain.EntryCredit && e.PaymentID == "pay1"
		}), "ref-1").Return(nil)

	og := &mockOrderGetter{}
	og.On("TransitionStatus", mock.Anything, "o1",
		domain.OrderPending, domain.OrderInProgress).Return(nil)

	svc := newTestService(ps, ws, og)
	err := svc.HandleProviderEvent(context.Background(), domain.ProviderEvent{
		PaymentID: "pay1", ProviderRef: "ref-1", Status: domain.PaymentCompleted,
	})

	require.NoError(t, err)
	ws.AssertExpectations(t)
	og.AssertExpectations(t)
}

// The seller having started the order already must not fail the webhook.
func TestHandleProviderEvent_CompletedOrderAlreadyStarted(t *testing.T) {
	ps := &mockPaymentStore{}
	ps.On("Get", mock.Anything, "pay1").Return(&domain.Payment{
		PaymentID: "pay1", OrderID: "o1", PayeeID: "seller", AmountCents: 5000, Status: domain.PaymentProcessing,
	}, nil)

	ws := &mockWalletStore{}
	ws.On("CreditForPayment", mock.Anything, mock.Anything, "ref-1").Return(nil)

	og := &mockOrderGetter{}
	og.On("TransitionStatus", mock.Anything, "o1",
		domain.OrderPending, domain.OrderInProgress).Return(domain.ErrConflict)

	svc := newTestService(ps, ws, og)
	err := svc.HandleProviderEvent(context.Background(), domain.ProviderEvent{
		PaymentID: "pay1", ProviderRef: "ref-1", Status: domain.PaymentCompleted,
	})

	require.NoError(t, err)
}

func TestHandleProviderEvent_ReplayedCompletionConflicts(t *testing.T) {
	ps := &mockPaymentStore{}
	ps.On("Get", mock.Anything, "pay1").Return(&domain.Payment{
		PaymentID: "pay1", PayeeID: "seller", AmountCents: 5000, Status: domain.PaymentCompleted,
	}, nil)

	ws := &mockWalletStore{}
	ws.On("CreditForPayment", mock.Anything, mock.Anything, "ref-1").Return(domain.ErrConflict)

	svc := newTestService(ps, ws, nil)
	err := svc.HandleProviderEvent(context.Background(), domain.ProviderEvent{
		PaymentID: "pay1", ProviderRef: "ref-1", Status: domain.PaymentCompleted,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestHandleProviderEvent_Failed(t *testing.T) {
	ps := &mockPaymentStore{}
	ps.On("Get", mock.Anything, "pay1").Return(&domain.Payment{
		PaymentID: "pay1", Status: domain.PaymentProcessing,
	}, nil)
	ps.On("TransitionStatus", mock.Anything, "pay1",
		domain.PaymentProcessing, domain.PaymentFailed, "ref-1").Return(nil)

	svc := newTestService(ps, &mockWalletStore{}, nil)
	err := svc.HandleProviderEvent(context.Background(), domain.ProviderEvent{
		PaymentID: "pay1", ProviderRef: "ref-1", Status: domain.PaymentFailed,
	})

	require.NoError(t, err)
	ps.AssertExpectations(t)
}

func TestHandleProviderEvent_UnknownStatus(t *testing.T) {
	ps := &mockPaymentStore{}
	ps.On("Get", mock.Anything, "pay1").Return(&domain.Payment{PaymentID: "pay1"}, nil)

	svc := newTestService(ps, nil, nil)
	err := svc.HandleProviderEvent(context.Background(), domain.ProviderEvent{
		PaymentID: "pay1", Status: "exploded",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Withdraw ---

func TestWithdraw_NegatesAmount(t *testing.T) {
	ws := &mockWalletStore{}
	ws.On("Withdraw", mock.Anything, mock.MatchedBy(func(e *domain.WalletEntry) bool {
		return e.UserID == "seller" && e.AmountCents == -3000 && e.Kind == domain.EntryWithdrawal
	})).Return(nil)

	svc := newTestService(nil, ws, nil)
	entry, err := svc.Withdraw(context.Background(), "seller", domain.WithdrawRequest{AmountCents: 3000})

	require.NoError(t, err)
	assert.Equal(t, int64(-3000), entry.AmountCents)
	ws.AssertExpectations(t)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	ws := &mockWalletStore{}
	ws.On("Withdraw", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newTestService(nil, ws, nil)
	_, err := svc.Withdraw(context.Background(), "seller", domain.WithdrawRequest{AmountCents: 999999})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
