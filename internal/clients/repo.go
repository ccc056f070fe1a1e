package clients

import (
	"context"
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func liveClients(db *gorm.DB) *gorm.DB {
	return db.Where("clients.is_deleted = ?", false)
}

// Repository exposes client persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a clients repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// FindCurrent returns the single non-deleted client.
func (r *Repository) FindCurrent(ctx context.Context) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Scopes(liveClients).
		Order("clients.created_at ASC").
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Scopes(liveClients).
		First(&client, "clients.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByUserName matches deleted rows too; user names are never reused.
func (r *Repository) FindByUserName(ctx context.Context, userName string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("clients.user_name = ?", userName).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *Repository) CountWithPin(ctx context.Context, pin int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Scopes(liveClients).
		Where("clients.pin = ?", pin).
		Count(&n).Error
	return n, err
}

func (r *Repository) ToggleActive(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Scopes(liveClients).
		Where("clients.id = ?", id).
		Updates(map[string]any{
			"is_active":  gorm.Expr("NOT is_active"),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *Repository) UpdateConvenienceFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Scopes(liveClients).
		Where("clients.id = ?", id).
		Updates(map[string]any{"convenience_fee": fee, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// UpdateLastLogin refreshes the client's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
