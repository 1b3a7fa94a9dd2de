package project

import (
	"context"
	"fmt"
	"time"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldCategoryID   = "category_id"
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldPriceCents   = "price_cents"
	fieldDeliveryDays = "delivery_days"
	fieldTags         = "tags"
	fieldEnable       = "enable"
)

type Service interface {
	Create(ctx context.Context, creatorID string, req domain.CreateProjectRequest) (*domain.Project, error)
	Get(ctx context.Context, projectID string) (*domain.Project, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Project, string, error)
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Project, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Project, error)
	Update(ctx context.Context, projectID, callerID string, isAdmin bool, req domain.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, projectID, callerID string, isAdmin bool) error
}

type projectStore interface {
	Put(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, projectID string) (*domain.Project, error)
	Update(ctx context.Context, projectID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, projectID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Project, string, error)
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Project, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Project, error)
}

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type categoryGetter interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
}

type service struct {
	repo       projectStore
	users      userGetter
	categories categoryGetter
}

type ServiceDeps struct {
	ProjectRepo  projectStore
	UserRepo     userGetter
	CategoryRepo categoryGetter
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ProjectRepo, users: deps.UserRepo, categories: deps.CategoryRepo}
}

// Create publishes a listing. Only student accounts sell.
func (s *service) Create(ctx context.Context, creatorID string, req domain.CreateProjectRequest) (*domain.Project, error) {
	u, err := s.users.Get(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleStudent {
		return nil, fmt.Errorf("only student accounts can publish listings: %w", domain.ErrForbidden)
	}
	if _, err := s.categories.Get(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("category not found: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	p := &domain.Project{
		ProjectID:    id.New(),
		CreatorID:    creatorID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DeliveryDays: req.DeliveryDays,
		Tags:         req.Tags,
		Enable:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Enable != 1 {
		return nil, fmt.Errorf("project not found: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Project, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) ListByCreator(ctx context.Context, creatorID string) ([]domain.Project, error) {
	return s.repo.ListByCreator(ctx, creatorID)
}

func (s *service) ListByCategory(ctx context.Context, categoryID string) ([]domain.Project, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

func (s *service) Update(ctx context.Context, projectID, callerID string, isAdmin bool, req domain.UpdateProjectRequest) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != callerID && !isAdmin {
		return nil, fmt.Errorf("not your listing: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("category not found: %w", domain.ErrBadRequest)
		}
		updates[fieldCategoryID] = *req.CategoryID
	}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.PriceCents != nil {
		updates[fieldPriceCents] = *req.PriceCents
	}
	if req.DeliveryDays != nil {
		updates[fieldDeliveryDays] = *req.DeliveryDays
	}
	if req.Tags != nil {
		updates[fieldTags] = *req.Tags
	}
	if req.Enable != nil {
		updates[fieldEnable] = *req.Enable
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.repo.Update(ctx, projectID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, projectID)
}

func (s *service) Delete(ctx context.Context, projectID, callerID string, isAdmin bool) error {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.CreatorID != callerID && !isAdmin {
		return fmt.Errorf("not your listing: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, projectID)
}
