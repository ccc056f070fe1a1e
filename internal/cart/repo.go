package cart

import (
	"context"
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activeCarts restricts a query to the carts a user can still mutate.
func activeCarts(db *gorm.DB) *gorm.DB {
	return db.Where("carts.is_deleted = ? AND carts.is_purchased = ?", false, false)
}

const ensureActiveCartSQL = `
INSERT INTO carts (id, user_id, is_deleted, is_purchased, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

const upsertLineSQL = `
INSERT INTO cart_items (id, cart_id, item_id, quantity, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (cart_id, item_id)
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`

const setLineQuantitySQL = `
UPDATE cart_items
SET quantity = ?, updated_at = ?
WHERE cart_id = ? AND item_id = ?
  AND cart_id IN (
    SELECT id FROM carts
    WHERE id = ? AND user_id = ? AND is_deleted = ? AND is_purchased = ?
  )`

const cartLinesSQL = `
SELECT ci.item_id,
       ci.quantity,
       i.item_name,
       i.item_price,
       i.parcel_fee_per_piece,
       i.description,
       i.image,
       i.is_published,
       c.category_name
FROM cart_items ci
LEFT JOIN items i ON i.id = ci.item_id
LEFT JOIN categories c ON c.id = i.category_id AND c.is_deleted = ?
WHERE ci.cart_id = ?
ORDER BY ci.created_at ASC, ci.id ASC`

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// EnsureActive finds or creates the user's active cart. The partial unique
// index on carts(user_id) turns a concurrent second insert into a no-op.
func (r *Repository) EnsureActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Exec(ensureActiveCartSQL, uuid.New(), userID, false, false, now, now).Error; err != nil {
		return nil, err
	}
	return r.FindActiveByUser(ctx, userID)
}

// FindActiveByUser loads the user's active cart with its lines.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Scopes(activeCarts).
		Where("carts.user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByIDAndUser loads any cart the user owns, purchased or not.
func (r *Repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Where("carts.id = ? AND carts.user_id = ?", id, userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertLine adds quantity to an existing line or inserts a new one.
func (r *Repository) UpsertLine(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Exec(upsertLineSQL, uuid.New(), cartID, itemID, quantity, now, now).Error
}

// SetLineQuantity overwrites a line's quantity when the cart is active and owned by the user.
func (r *Repository) SetLineQuantity(ctx context.Context, userID, cartID, itemID uuid.UUID, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Exec(setLineQuantitySQL, quantity, time.Now().UTC(), cartID, itemID, cartID, userID, false, false)
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteLine(ctx context.Context, cartID, itemID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *Repository) SoftDelete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(map[string]any{"is_deleted": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// MarkPurchased flips is_purchased only if no other checkout got there first.
func (r *Repository) MarkPurchased(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND is_purchased = ? AND is_deleted = ?", id, false, false).
		Updates(map[string]any{"is_purchased": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// Lines joins every cart line with its item and active category in one query.
func (r *Repository) Lines(ctx context.Context, cartID uuid.UUID) ([]Line, error) {
	var lines []Line
	if err := r.db.WithContext(ctx).Raw(cartLinesSQL, false, cartID).Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
