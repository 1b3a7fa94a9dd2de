package category

import (
	"context"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, req domain.CategoryInput) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, req domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Scan(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, categoryID string) error
}

type service struct {
	repo categoryStore
}

func NewService(repo categoryStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req domain.CategoryInput) (*domain.Category, error) {
	c := &domain.Category{
		CategoryID:  id.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Update(ctx context.Context, categoryID string, req domain.CategoryInput) (*domain.Category, error) {
	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}
	if err := s.repo.Update(ctx, categoryID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Delete(ctx context.Context, categoryID string) error {
	return s.repo.HardDelete(ctx, categoryID)
}
