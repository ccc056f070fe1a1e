package orders

import (
	"context"
	"errors"
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const nextTokenSQL = `
INSERT INTO day_sequences (day, counter, updated_at)
VALUES (?, 1, ?)
ON CONFLICT (day)
DO UPDATE SET counter = day_sequences.counter + 1, updated_at = excluded.updated_at
RETURNING counter`

const sumTotalSQL = `
SELECT COALESCE(SUM(total_price), 0)
FROM orders
WHERE is_deleted = ? AND order_status IN ?`

func liveOrders(db *gorm.DB) *gorm.DB {
	return db.Where("orders.is_deleted = ?", false)
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	db = liveOrders(db)
	if f.UserID != nil {
		db = db.Where("orders.user_id = ?", *f.UserID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("orders.order_status IN ?", enums.OrderStatusStrings(f.Statuses))
	}
	return db
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.position ASC")
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextToken atomically increments and returns the counter for day.
func (r *repository) NextToken(ctx context.Context, day string) (int, error) {
	var counter int
	if err := r.db.WithContext(ctx).
		Raw(nextTokenSQL, day, time.Now().UTC()).
		Scan(&counter).Error; err != nil {
		return 0, err
	}
	if counter < 1 {
		return 0, errors.New("day sequence returned no counter")
	}
	return counter, nil
}

// Create inserts the order together with its item snapshot rows.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Scopes(liveOrders).
		First(&order, "orders.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Exists reports whether the order was ever placed, deleted or not.
func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("orders.id = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatus moves the order only if it still has the expected status.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(liveOrders).
		Where("orders.id = ? AND orders.order_status = ?", id, from).
		Updates(map[string]any{"order_status": to, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// List returns one page of orders, newest first, and the total count.
func (r *repository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(filter.scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Scopes(filter.scope).
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) FindLatest(ctx context.Context, filter ListFilter) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Scopes(filter.scope).
		Order("orders.created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) SumTotal(ctx context.Context, statuses []enums.OrderStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Raw(sumTotalSQL, false, enums.OrderStatusStrings(statuses)).Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

// SoftDelete hides the order. A non-nil userID restricts the delete to that owner.
func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(liveOrders).
		Where("orders.id = ?", id)
	if userID != nil {
		q = q.Where("orders.user_id = ?", *userID)
	}
	res := q.Updates(map[string]any{"is_deleted": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
