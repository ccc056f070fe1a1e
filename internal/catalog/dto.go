package catalog

import (
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryDTO is the API shape of a category.
type CategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	CategoryName string    `json:"categoryName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ItemDTO is the API shape of a menu item.
type ItemDTO struct {
	ID                uuid.UUID       `json:"id"`
	CategoryID        uuid.UUID       `json:"categoryId"`
	ItemName          string          `json:"itemName"`
	ItemPrice         decimal.Decimal `json:"itemPrice"`
	Image             string          `json:"image"`
	Description       string          `json:"description"`
	ParcelFeePerPiece decimal.Decimal `json:"parcelFeePerPiece"`
	IsAvailable       bool            `json:"isAvailable"`
	IsPublished       bool            `json:"isPublished"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// CategoryGroup is one category with the items of the current page that belong to it.
type CategoryGroup struct {
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Items        []ItemDTO `json:"items"`
}

// GroupedPagination describes the item page behind a grouped listing.
type GroupedPagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// GroupedItems is the client-side menu view.
type GroupedItems struct {
	Categories []CategoryGroup   `json:"categories"`
	Pagination GroupedPagination `json:"pagination"`
}

// ToggleResult reports the new value of a flipped item flag.
type ToggleResult struct {
	ItemID      uuid.UUID `json:"itemId"`
	IsPublished *bool     `json:"isPublished,omitempty"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
}

func NewCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		CategoryName: c.CategoryName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func NewItemDTO(i models.Item) ItemDTO {
	return ItemDTO{
		ID:                i.ID,
		CategoryID:        i.CategoryID,
		ItemName:          i.ItemName,
		ItemPrice:         i.ItemPrice,
		Image:             i.Image,
		Description:       i.Description,
		ParcelFeePerPiece: i.ParcelFeePerPiece,
		IsAvailable:       i.IsAvailable,
		IsPublished:       i.IsPublished,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
