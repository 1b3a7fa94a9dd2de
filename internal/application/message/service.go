package message

import (
	"context"
	"fmt"
	"time"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/id"
)

type Service interface {
	Send(ctx context.Context, senderID string, req domain.SendMessageRequest) (*domain.Message, error)
	ListUnread(ctx context.Context, recipientID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID, callerID string) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	Get(ctx context.Context, messageID string) (*domain.Message, error)
	ListUnread(ctx context.Context, recipientID string) ([]domain.Message, error)
	MarkAsRead(ctx context.Context, messageID string) error
}

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type orderGetter interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
}

type service struct {
	repo   messageStore
	users  userGetter
	orders orderGetter
}

type ServiceDeps struct {
	MessageRepo messageStore
	UserRepo    userGetter
	OrderRepo   orderGetter
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.MessageRepo, users: deps.UserRepo, orders: deps.OrderRepo}
}

func (s *service) Send(ctx context.Context, senderID string, req domain.SendMessageRequest) (*domain.Message, error) {
	if req.RecipientID == senderID {
		return nil, fmt.Errorf("cannot message yourself: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, req.RecipientID); err != nil {
		return nil, fmt.Errorf("recipient not found: %w", domain.ErrNotFound)
	}
	// An order-scoped message must come from one of the order's parties.
	if req.OrderID != nil {
		o, err := s.orders.Get(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.BuyerID != senderID && o.SellerID != senderID {
			return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
		}
	}
	now := time.Now().UTC()
	m := &domain.Message{
		MessageID:   id.New(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		OrderID:     req.OrderID,
		Body:        req.Body,
		Read:        0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListUnread(ctx context.Context, recipientID string) ([]domain.Message, error) {
	return s.repo.ListUnread(ctx, recipientID)
}

func (s *service) MarkRead(ctx context.Context, messageID, callerID string) error {
	m, err := s.repo.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if m.RecipientID != callerID {
		return fmt.Errorf("not your message: %w", domain.ErrForbidden)
	}
	return s.repo.MarkAsRead(ctx, messageID)
}
