package file

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/infrastructure/dynamo"
	s3infra "github.com/skillshare/api/internal/infrastructure/s3"
	"github.com/skillshare/api/internal/pkg/id"
)

type UploadBase64Input struct {
	Filename  string
	Data      string // base64-encoded file body
	ProjectID *string
	IsPrivate bool
}

type Service interface {
	UploadBase64(ctx context.Context, uploaderID string, input UploadBase64Input) (*domain.File, error)
	Get(ctx context.Context, fileID, requesterID string, isAdmin bool) (*domain.File, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.File, error)
	Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error
}

type service struct {
	s3       *s3infra.Store
	fileRepo *dynamo.FileRepo
	projects projectGetter
}

type projectGetter interface {
	Get(ctx context.Context, projectID string) (*domain.Project, error)
}

func NewService(s3 *s3infra.Store, fileRepo *dynamo.FileRepo, projects projectGetter) Service {
	return &service{s3: s3, fileRepo: fileRepo, projects: projects}
}

// UploadBase64 stores a portfolio attachment. When ProjectID is set the
// uploader must own that listing.
func (s *service) UploadBase64(ctx context.Context, uploaderID string, input UploadBase64Input) (*domain.File, error) {
	if input.ProjectID != nil {
		p, err := s.projects.Get(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		if p.CreatorID != uploaderID {
			return nil, fmt.Errorf("not your listing: %w", domain.ErrForbidden)
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(input.Data)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", domain.ErrBadRequest)
	}
	obj, err := s.s3.PutAttachment(ctx, uploaderID, input.Filename, decoded)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f := &domain.File{
		FileID:           id.New(),
		Object:           obj.Key,
		Size:             obj.Size,
		Type:             obj.ContentType,
		Name:             obj.Name,
		ProjectID:        input.ProjectID,
		IsPrivate:        input.IsPrivate,
		UploadedByUserID: uploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.fileRepo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the metadata with a time-limited presigned download URL.
func (s *service) Get(ctx context.Context, fileID, requesterID string, isAdmin bool) (*domain.File, error) {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !f.Enable {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.IsPrivate && f.UploadedByUserID != requesterID && !isAdmin {
		return nil, fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	url, err := s.s3.DownloadURL(ctx, f.Object)
	if err != nil {
		return nil, err
	}
	f.URL = &url
	return f, nil
}

func (s *service) ListByProject(ctx context.Context, projectID string) ([]domain.File, error) {
	return s.fileRepo.ListByProject(ctx, projectID)
}

func (s *service) Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Enable {
		return fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.UploadedByUserID != requesterID && !isAdmin {
		return fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	if err := s.s3.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.fileRepo.SoftDelete(ctx, fileID)
}
