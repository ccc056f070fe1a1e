package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/counterline/counterline-backend/pkg/db/models"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBannerNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
	ErrBannerRemoved  = pkgerrors.New(pkgerrors.CodeNotFound, "banner has been deleted")
)

// Service manages storefront banners.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Remove(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, params pagination.Params) (pagination.Page[BannerDTO], error)
	FetchActive(ctx context.Context) ([]BannerDTO, error)
}

type CreateInput struct {
	Title       string
	Description string
	FileURL     string
}

// UpdateInput carries a partial update; blank values leave the field unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	FileURL     *string
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BannerDTO, error) {
	banner := &models.Banner{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		FileURL:     strings.TrimSpace(input.FileURL),
	}
	if banner.Title == "" || banner.Description == "" || banner.FileURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title, description and fileUrl are required")
	}
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert banner")
	}
	dto := NewBannerDTO(*banner)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BannerDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsDeleted {
		return nil, ErrBannerRemoved
	}

	fields := map[string]any{}
	setIfPresent(fields, "title", input.Title)
	setIfPresent(fields, "description", input.Description)
	setIfPresent(fields, "file_url", input.FileURL)
	if len(fields) > 0 {
		rows, err := s.repo.Update(ctx, id, fields)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update banner")
		}
		if rows == 0 {
			return nil, ErrBannerRemoved
		}
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewBannerDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete banner")
	}
	if rows == 0 {
		return ErrBannerNotFound
	}
	return nil
}

// Remove hides the banner from every listing.
func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove banner")
	}
	if rows == 0 {
		return ErrBannerNotFound
	}
	return nil
}

func (s *service) List(ctx context.Context, search string, params pagination.Params) (pagination.Page[BannerDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, search, params.Offset(), params.Limit)
	if err != nil {
		return pagination.Page[BannerDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list banners")
	}
	return pagination.Map(pagination.NewPage(rows, total, params), NewBannerDTO), nil
}

func (s *service) FetchActive(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.ListLive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list banners")
	}
	out := make([]BannerDTO, 0, len(rows))
	for _, b := range rows {
		out = append(out, NewBannerDTO(b))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBannerNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load banner")
	}
	return banner, nil
}

func setIfPresent(fields map[string]any, column string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		fields[column] = v
	}
}
