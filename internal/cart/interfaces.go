package cart

import (
	"context"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service
// and the order factory.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	EnsureActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error)
	UpsertLine(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	SetLineQuantity(ctx context.Context, userID, cartID, itemID uuid.UUID, quantity int) (int64, error)
	DeleteLine(ctx context.Context, cartID, itemID uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, id, userID uuid.UUID) (int64, error)
	MarkPurchased(ctx context.Context, id uuid.UUID) (int64, error)
	Lines(ctx context.Context, cartID uuid.UUID) ([]Line, error)
}

// itemResolver answers whether an end user may put an item in a cart.
type itemResolver interface {
	FindPublishedItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
