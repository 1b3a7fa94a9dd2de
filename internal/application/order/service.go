package order

import (
	"context"
	"fmt"
	"time"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, buyerID string, req domain.CreateOrderRequest) (*domain.Order, error)
	Get(ctx context.Context, orderID, callerID string, isAdmin bool) (*domain.Order, error)
	ListAsBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListAsSeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, callerID string, req domain.UpdateOrderStatusRequest) (*domain.Order, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	TransitionStatus(ctx context.Context, orderID, from, to string) error
}

type projectGetter interface {
	Get(ctx context.Context, projectID string) (*domain.Project, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type service struct {
	repo     orderStore
	projects projectGetter
	events   eventPublisher
}

type ServiceDeps struct {
	OrderRepo   orderStore
	ProjectRepo projectGetter
	Events      eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.OrderRepo, projects: deps.ProjectRepo, events: deps.Events}
}

// Create places an order at the listing's current price. The price is
// snapshotted so later listing edits don't change what the buyer owes.
func (s *service) Create(ctx context.Context, buyerID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	p, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.Enable != 1 {
		return nil, fmt.Errorf("project not available: %w", domain.ErrNotFound)
	}
	if p.CreatorID == buyerID {
		return nil, fmt.Errorf("cannot order your own listing: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	o := &domain.Order{
		OrderID:      id.New(),
		ProjectID:    p.ProjectID,
		BuyerID:      buyerID,
		SellerID:     p.CreatorID,
		PriceCents:   p.PriceCents,
		Status:       domain.OrderPending,
		Requirements: req.Requirements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, o); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, "order.created", o)
	return o, nil
}

func (s *service) Get(ctx context.Context, orderID, callerID string, isAdmin bool) (*domain.Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != callerID && o.SellerID != callerID && !isAdmin {
		return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
	}
	return o, nil
}

func (s *service) ListAsBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

func (s *service) ListAsSeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// UpdateStatus applies one transition. Who may trigger which transition:
//
//	pending    -> in_progress  seller accepts
//	in_progress-> delivered    seller delivers
//	delivered  -> completed    buyer accepts the delivery
//	any open   -> cancelled    either party
//
// The store transition is conditional on the current status, so two racing
// updates cannot both win.
func (s *service) UpdateStatus(ctx context.Context, orderID, callerID string, req domain.UpdateOrderStatusRequest) (*domain.Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != callerID && o.SellerID != callerID {
		return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
	}
	if domain.OrderTerminal(o.Status) {
		return nil, fmt.Errorf("order already %s: %w", o.Status, domain.ErrConflict)
	}

	var allowed bool
	switch req.Status {
	case domain.OrderInProgress:
		allowed = o.Status == domain.OrderPending && callerID == o.SellerID
	case domain.OrderDelivered:
		allowed = o.Status == domain.OrderInProgress && callerID == o.SellerID
	case domain.OrderCompleted:
		allowed = o.Status == domain.OrderDelivered && callerID == o.BuyerID
	case domain.OrderCancelled:
		allowed = true
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move order from %s to %s: %w", o.Status, req.Status, domain.ErrConflict)
	}

	if err := s.repo.TransitionStatus(ctx, orderID, o.Status, req.Status); err != nil {
		return nil, err
	}
	o.Status = req.Status
	o.UpdatedAt = time.Now().UTC()
	s.events.Publish(ctx, "order."+req.Status, o)
	return o, nil
}
