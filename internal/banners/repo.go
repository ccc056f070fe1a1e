package banners

import (
	"context"
	"strings"
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// liveBanners limits a query to banners that have not been removed.
func liveBanners(db *gorm.DB) *gorm.DB {
	return db.Where("banners.is_deleted = ?", false)
}

func titleContains(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		return db.Where(`LOWER(banners.title) LIKE ? ESCAPE '\'`, pattern)
	}
}

// Repository persists storefront banners.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

// FindByID returns the banner even when it has been removed.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, "banners.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Banner{}).
		Scopes(liveBanners).
		Where("banners.id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes the row permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.Update(ctx, id, map[string]any{"is_deleted": true})
}

// List pages through live banners, newest first, optionally filtered by title.
func (r *Repository) List(ctx context.Context, search string, offset, limit int) ([]models.Banner, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Banner{}).
		Scopes(liveBanners, titleContains(search)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var banners []models.Banner
	if err := r.db.WithContext(ctx).
		Scopes(liveBanners, titleContains(search)).
		Order("banners.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&banners).Error; err != nil {
		return nil, 0, err
	}
	return banners, total, nil
}

func (r *Repository) ListLive(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	if err := r.db.WithContext(ctx).
		Scopes(liveBanners).
		Order("banners.created_at DESC").
		Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}
