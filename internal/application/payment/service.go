package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, payerID string, req domain.CreatePaymentRequest) (*domain.Payment, error)
	Get(ctx context.Context, paymentID, callerID string, isAdmin bool) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID, callerID string, isAdmin bool) ([]domain.Payment, error)
	HandleProviderEvent(ctx context.Context, ev domain.ProviderEvent) error
	Wallet(ctx context.Context, userID string) (*domain.Wallet, error)
	WalletEntries(ctx context.Context, userID string) ([]domain.WalletEntry, error)
	Withdraw(ctx context.Context, userID string, req domain.WithdrawRequest) (*domain.WalletEntry, error)
}

type paymentStore interface {
	Put(ctx context.Context, p *domain.Payment) error
	Get(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)
	TransitionStatus(ctx context.Context, paymentID, from, to, providerRef string) error
}

type walletStore interface {
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	ListEntries(ctx context.Context, userID string) ([]domain.WalletEntry, error)
	CreditForPayment(ctx context.Context, e *domain.WalletEntry, providerRef string) error
	Withdraw(ctx context.Context, e *domain.WalletEntry) error
}

type orderGetter interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, orderID, from, to string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type service struct {
	payments paymentStore
	wallets  walletStore
	orders   orderGetter
	events   eventPublisher
}

type ServiceDeps struct {
	PaymentRepo paymentStore
	WalletRepo  walletStore
	OrderRepo   orderGetter
	Events      eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		payments: deps.PaymentRepo,
		wallets:  deps.WalletRepo,
		orders:   deps.OrderRepo,
		events:   deps.Events,
	}
}

// Create opens a payment for an order. The payment starts in processing:
// the provider owns it from here and reports the outcome via webhook.
func (s *service) Create(ctx context.Context, payerID string, req domain.CreatePaymentRequest) (*domain.Payment, error) {
	o, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != payerID {
		return nil, fmt.Errorf("only the buyer can pay for an order: %w", domain.ErrForbidden)
	}
	if domain.OrderTerminal(o.Status) {
		return nil, fmt.Errorf("order already %s: %w", o.Status, domain.ErrConflict)
	}
	priors, err := s.payments.ListByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	for _, prior := range priors {
		if prior.Status == domain.PaymentProcessing || prior.Status == domain.PaymentCompleted {
			return nil, fmt.Errorf("order already has an active payment: %w", domain.ErrConflict)
		}
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	now := time.Now().UTC()
	p := &domain.Payment{
		PaymentID:   id.New(),
		OrderID:     o.OrderID,
		PayerID:     o.BuyerID,
		PayeeID:     o.SellerID,
		AmountCents: o.PriceCents,
		Currency:    currency,
		Status:      domain.PaymentProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.payments.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, paymentID, callerID string, isAdmin bool) (*domain.Payment, error) {
	p, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.PayerID != callerID && p.PayeeID != callerID && !isAdmin {
		return nil, fmt.Errorf("not your payment: %w", domain.ErrForbidden)
	}
	return p, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID, callerID string, isAdmin bool) ([]domain.Payment, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != callerID && o.SellerID != callerID && !isAdmin {
		return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
	}
	return s.payments.ListByOrder(ctx, orderID)
}

// HandleProviderEvent applies a provider webhook. Every path goes through a
// conditional status transition, so redelivered events turn into ErrConflict
// instead of double-applying; the handler maps that to a 2xx ack.
func (s *service) HandleProviderEvent(ctx context.Context, ev domain.ProviderEvent) error {
	p, err := s.payments.Get(ctx, ev.PaymentID)
	if err != nil {
		return err
	}
	switch ev.Status {
	case domain.PaymentCompleted:
		entry := &domain.WalletEntry{
			EntryID:     id.New(),
			UserID:      p.PayeeID,
			PaymentID:   p.PaymentID,
			Kind:        domain.EntryCredit,
			AmountCents: p.AmountCents,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.wallets.CreditForPayment(ctx, entry, ev.ProviderRef); err != nil {
			return err
		}
		// Kick the order off. Best effort: the seller may already have
		// started it, which is not the webhook's problem.
		if err := s.orders.TransitionStatus(ctx, p.OrderID, domain.OrderPending, domain.OrderInProgress); err != nil && !errors.Is(err, domain.ErrConflict) {
			slog.Warn("order not started after payment", "order_id", p.OrderID, "err", err)
		}
		s.events.Publish(ctx, "payment.completed", p)
		return nil
	case domain.PaymentFailed:
		return s.payments.TransitionStatus(ctx, ev.PaymentID, domain.PaymentProcessing, domain.PaymentFailed, ev.ProviderRef)
	case domain.PaymentRefunded:
		return s.payments.TransitionStatus(ctx, ev.PaymentID, domain.PaymentCompleted, domain.PaymentRefunded, ev.ProviderRef)
	default:
		return fmt.Errorf("unknown provider status %q: %w", ev.Status, domain.ErrBadRequest)
	}
}

func (s *service) Wallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return s.wallets.Get(ctx, userID)
}

func (s *service) WalletEntries(ctx context.Context, userID string) ([]domain.WalletEntry, error) {
	return s.wallets.ListEntries(ctx, userID)
}

// Withdraw debits the wallet. The store rejects the debit when the balance
// is too low, so there's no check-then-act race here.
func (s *service) Withdraw(ctx context.Context, userID string, req domain.WithdrawRequest) (*domain.WalletEntry, error) {
	entry := &domain.WalletEntry{
		EntryID:     id.New(),
		UserID:      userID,
		Kind:        domain.EntryWithdrawal,
		AmountCents: -req.AmountCents,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.wallets.Withdraw(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
