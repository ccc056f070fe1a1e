package orders

import (
	"context"

	"github.com/counterline/counterline-backend/internal/clients"
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and the daily token counter.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextToken(ctx context.Context, day string) (int, error)
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (int64, error)
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Order, int64, error)
	FindLatest(ctx context.Context, filter ListFilter) (*models.Order, error)
	SumTotal(ctx context.Context, statuses []enums.OrderStatus) (decimal.Decimal, error)
	SoftDelete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (int64, error)
}

// ListFilter narrows order listings. Deleted orders are always excluded.
type ListFilter struct {
	UserID   *uuid.UUID
	Statuses []enums.OrderStatus
}

// FeeSource supplies the business fee configuration at placement time.
// A nil config means no client is registered.
type FeeSource interface {
	Current(ctx context.Context) (*clients.FeeConfig, error)
}

// PinVerifier checks the reconciliation PIN.
type PinVerifier interface {
	VerifyPin(ctx context.Context, pin int) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
