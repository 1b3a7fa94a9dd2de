package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, reviewerID string, req domain.CreateReviewRequest) (*domain.Review, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Review, error)
	Delete(ctx context.Context, reviewID, callerID string, isAdmin bool) error
}

type reviewStore interface {
	Put(ctx context.Context, r *domain.Review) error
	Get(ctx context.Context, reviewID string) (*domain.Review, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Review, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.Review, error)
	SoftDelete(ctx context.Context, reviewID string) error
}

type orderGetter interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
}

type service struct {
	repo   reviewStore
	orders orderGetter
}

type ServiceDeps struct {
	ReviewRepo reviewStore
	OrderRepo  orderGetter
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ReviewRepo, orders: deps.OrderRepo}
}

// Create posts a review. Only the buyer of a completed order may review,
// and only once per order.
func (s *service) Create(ctx context.Context, reviewerID string, req domain.CreateReviewRequest) (*domain.Review, error) {
	o, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != reviewerID {
		return nil, fmt.Errorf("only the buyer can review an order: %w", domain.ErrForbidden)
	}
	if o.Status != domain.OrderCompleted {
		return nil, fmt.Errorf("order is not completed: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByOrder(ctx, req.OrderID); err == nil {
		return nil, fmt.Errorf("order already reviewed: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	r := &domain.Review{
		ReviewID:   id.New(),
		ProjectID:  o.ProjectID,
		OrderID:    o.OrderID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Enable:     1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListByProject(ctx context.Context, projectID string) ([]domain.Review, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *service) Delete(ctx context.Context, reviewID, callerID string, isAdmin bool) error {
	r, err := s.repo.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if r.ReviewerID != callerID && !isAdmin {
		return fmt.Errorf("not your review: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, reviewID)
}
