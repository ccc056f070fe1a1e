package catalog

import (
	"context"
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activeCategories limits a query to categories that have not been soft deleted.
func activeCategories(db *gorm.DB) *gorm.DB {
	return db.Where("categories.is_deleted = ?", false)
}

// publishedItems limits a query to items visible to end users.
func publishedItems(db *gorm.DB) *gorm.DB {
	return db.Where("items.is_published = ?", true)
}

// Repository persists categories and items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindActiveCategory returns gorm.ErrRecordNotFound for missing or deleted rows.
func (r *Repository) FindActiveCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Scopes(activeCategories).
		First(&category, "categories.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) FindActiveCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Scopes(activeCategories).
		Where("categories.category_name = ?", name).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) RenameCategory(ctx context.Context, id uuid.UUID, name string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Scopes(activeCategories).
		Where("categories.id = ?", id).
		Updates(map[string]any{"category_name": name, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *Repository) SoftDeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Scopes(activeCategories).
		Where("categories.id = ?", id).
		Updates(map[string]any{"is_deleted": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// ListActiveCategories returns one page of categories, newest first, and the total count.
func (r *Repository) ListActiveCategories(ctx context.Context, offset, limit int) ([]models.Category, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Category{}).Scopes(activeCategories)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Scopes(activeCategories).
		Order("categories.created_at DESC").
		Order("categories.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// AllActiveCategories returns every active category in creation order.
func (r *Repository) AllActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Scopes(activeCategories).
		Order("categories.created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "items.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindPublishedItem resolves an item an end user is allowed to reference.
func (r *Repository) FindPublishedItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Scopes(publishedItems).
		First(&item, "items.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindItemByName(ctx context.Context, categoryID uuid.UUID, name string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("items.category_id = ? AND items.item_name = ?", categoryID, name).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem applies a column patch and reports how many rows matched.
func (r *Repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("items.id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// ToggleItemFlag flips a boolean column in a single statement.
func (r *Repository) ToggleItemFlag(ctx context.Context, id uuid.UUID, column string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("items.id = ?", id).
		Updates(map[string]any{
			column:       gorm.Expr("NOT " + column),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})
	return res.RowsAffected, res.Error
}

func (r *Repository) ListPublishedByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Scopes(publishedItems).
		Where("items.category_id = ?", categoryID).
		Order("items.created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListItems returns one page of every item regardless of flags, plus the total count.
func (r *Repository) ListItems(ctx context.Context, offset, limit int) ([]models.Item, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	if err := r.db.WithContext(ctx).
		Order("items.created_at ASC").
		Order("items.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
