package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/counterline/counterline-backend/pkg/db/models"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound  = pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	ErrItemNotFound      = pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	ErrCategoryReference = pkgerrors.New(pkgerrors.CodeInvalidReference, "category does not exist")
)

const (
	columnPublished = "is_published"
	columnAvailable = "is_available"
)

// Service manages the menu: categories and their items.
type Service interface {
	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, params pagination.Params) (pagination.Page[CategoryDTO], error)

	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	TogglePublished(ctx context.Context, id uuid.UUID) (*ToggleResult, error)
	ToggleAvailable(ctx context.Context, id uuid.UUID) (*ToggleResult, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]ItemDTO, error)
	ListGrouped(ctx context.Context, params pagination.Params) (*GroupedItems, error)
}

// CreateItemInput holds the fields required to add a menu item.
type CreateItemInput struct {
	CategoryID        uuid.UUID
	ItemName          string
	ItemPrice         decimal.Decimal
	Image             string
	Description       string
	ParcelFeePerPiece decimal.Decimal
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	CategoryID        *uuid.UUID
	ItemName          *string
	ItemPrice         *decimal.Decimal
	Image             *string
	Description       *string
	ParcelFeePerPiece *decimal.Decimal
	IsAvailable       *bool
	IsPublished       *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryName is required")
	}
	category := &models.Category{CategoryName: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	dto := NewCategoryDTO(*category)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryName is required")
	}
	rows, err := s.repo.RenameCategory(ctx, id, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
	}
	if rows == 0 {
		return nil, ErrCategoryNotFound
	}
	category, err := s.repo.FindActiveCategory(ctx, id)
	if err != nil {
		return nil, mapCategoryErr(err)
	}
	dto := NewCategoryDTO(*category)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.SoftDeleteCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context, params pagination.Params) (pagination.Page[CategoryDTO], error) {
	params = params.Normalize()
	categories, total, err := s.repo.ListActiveCategories(ctx, params.Offset(), params.Limit)
	if err != nil {
		return pagination.Page[CategoryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	page := pagination.NewPage(categories, total, params)
	return pagination.Map(page, NewCategoryDTO), nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	input.ItemName = strings.TrimSpace(input.ItemName)
	input.Image = strings.TrimSpace(input.Image)
	if input.ItemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "itemName is required")
	}
	if input.Image == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if err := validateMoney("itemPrice", input.ItemPrice); err != nil {
		return nil, err
	}
	if err := validateMoney("parcelFeePerPiece", input.ParcelFeePerPiece); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	item := &models.Item{
		CategoryID:        input.CategoryID,
		ItemName:          input.ItemName,
		ItemPrice:         input.ItemPrice.Round(2),
		Image:             input.Image,
		Description:       strings.TrimSpace(input.Description),
		ParcelFeePerPiece: input.ParcelFeePerPiece.Round(2),
		IsAvailable:       true,
		IsPublished:       true,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	dto := NewItemDTO(*item)
	return &dto, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	updates := map[string]any{}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.ItemName != nil {
		name := strings.TrimSpace(*input.ItemName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "itemName cannot be empty")
		}
		updates["item_name"] = name
	}
	if input.ItemPrice != nil {
		if err := validateMoney("itemPrice", *input.ItemPrice); err != nil {
			return nil, err
		}
		updates["item_price"] = input.ItemPrice.Round(2)
	}
	if input.Image != nil {
		image := strings.TrimSpace(*input.Image)
		if image == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image cannot be empty")
		}
		updates["image"] = image
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.ParcelFeePerPiece != nil {
		if err := validateMoney("parcelFeePerPiece", *input.ParcelFeePerPiece); err != nil {
			return nil, err
		}
		updates["parcel_fee_per_piece"] = input.ParcelFeePerPiece.Round(2)
	}
	if input.IsAvailable != nil {
		updates[columnAvailable] = *input.IsAvailable
	}
	if input.IsPublished != nil {
		updates[columnPublished] = *input.IsPublished
	}

	if len(updates) == 0 {
		return s.GetItem(ctx, id)
	}

	rows, err := s.repo.UpdateItem(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	if rows == 0 {
		return nil, ErrItemNotFound
	}
	return s.GetItem(ctx, id)
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *service) TogglePublished(ctx context.Context, id uuid.UUID) (*ToggleResult, error) {
	item, err := s.toggle(ctx, id, columnPublished)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{ItemID: item.ID, IsPublished: &item.IsPublished}, nil
}

func (s *service) ToggleAvailable(ctx context.Context, id uuid.UUID) (*ToggleResult, error) {
	item, err := s.toggle(ctx, id, columnAvailable)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{ItemID: item.ID, IsAvailable: &item.IsAvailable}, nil
}

func (s *service) toggle(ctx context.Context, id uuid.UUID, column string) (*models.Item, error) {
	rows, err := s.repo.ToggleItemFlag(ctx, id, column)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: toggle item "+column)
	}
	if rows == 0 {
		return nil, ErrItemNotFound
	}
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, mapItemErr(err)
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, mapItemErr(err)
	}
	dto := NewItemDTO(*item)
	return &dto, nil
}

func (s *service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]ItemDTO, error) {
	if categoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	items, err := s.repo.ListPublishedByCategory(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items by category")
	}
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemDTO(item))
	}
	return out, nil
}

// ListGrouped pages through all items and files each under its active category.
// Every active category is present even when none of its items fall on the page.
func (s *service) ListGrouped(ctx context.Context, params pagination.Params) (*GroupedItems, error) {
	params = params.Normalize()

	categories, err := s.repo.AllActiveCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	items, total, err := s.repo.ListItems(ctx, params.Offset(), params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}

	byCategory := make(map[uuid.UUID][]ItemDTO, len(categories))
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], NewItemDTO(item))
	}

	groups := make([]CategoryGroup, 0, len(categories))
	for _, category := range categories {
		groupItems := byCategory[category.ID]
		if groupItems == nil {
			groupItems = []ItemDTO{}
		}
		groups = append(groups, CategoryGroup{
			CategoryID:   category.ID,
			CategoryName: category.CategoryName,
			Items:        groupItems,
		})
	}

	return &GroupedItems{
		Categories: groups,
		Pagination: GroupedPagination{
			Total:      total,
			Page:       params.Page,
			PageSize:   params.Limit,
			TotalPages: pagination.TotalPages(total, params.Limit),
		},
	}, nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	if _, err := s.repo.FindActiveCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryReference
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return nil
}

func validateMoney(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be zero or greater")
	}
	return nil
}

func mapCategoryErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCategoryNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
}

func mapItemErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
}
