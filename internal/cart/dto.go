package cart

import (
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel names the category of a line whose item or category cannot be resolved.
const UncategorizedLabel = "Uncategorized"

// Line is one cart entry joined with its item and active category.
// Item columns are nil when the item no longer exists.
type Line struct {
	ItemID            uuid.UUID
	Quantity          int
	ItemName          *string
	ItemPrice         decimal.NullDecimal
	ParcelFeePerPiece decimal.NullDecimal
	Description       *string
	Image             *string
	IsPublished       *bool
	CategoryName      *string
}

func (l Line) ItemExists() bool {
	return l.ItemName != nil
}

func (l Line) Name() string {
	if l.ItemName == nil {
		return ""
	}
	return *l.ItemName
}

func (l Line) Price() decimal.Decimal {
	if !l.ItemPrice.Valid {
		return decimal.Zero
	}
	return l.ItemPrice.Decimal
}

func (l Line) ParcelFee() decimal.Decimal {
	if !l.ParcelFeePerPiece.Valid {
		return decimal.Zero
	}
	return l.ParcelFeePerPiece.Decimal
}

func (l Line) Category() string {
	if l.CategoryName == nil || *l.CategoryName == "" {
		return UncategorizedLabel
	}
	return *l.CategoryName
}

// LineTotal is price × quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.Price().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartDTO is the stored cart returned by mutations.
type CartDTO struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"userId"`
	IsDeleted   bool          `json:"isDeleted"`
	IsPurchased bool          `json:"isPurchased"`
	Items       []CartLineDTO `json:"items"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type CartLineDTO struct {
	ItemID   uuid.UUID `json:"itemId"`
	Quantity int       `json:"quantity"`
}

// EnrichedCart is the priced view of the active cart.
type EnrichedCart struct {
	CartID     *uuid.UUID         `json:"cartId"`
	Items      []EnrichedCartLine `json:"items"`
	CartTotal  decimal.Decimal    `json:"cartTotal"`
	TotalItems int                `json:"totalItems"`
}

type EnrichedCartLine struct {
	ItemID            uuid.UUID       `json:"itemId"`
	ItemName          string          `json:"itemName"`
	ItemPrice         decimal.Decimal `json:"itemPrice"`
	Quantity          int             `json:"quantity"`
	ItemTotal         decimal.Decimal `json:"itemTotal"`
	ParcelFeePerPiece decimal.Decimal `json:"parcelFeePerPiece"`
	Category          string          `json:"category"`
	Description       string          `json:"description"`
	Image             string          `json:"image"`
	IsPublished       bool            `json:"isPublished"`
}

// EmptyCart is returned when the user has no active cart.
func EmptyCart() *EnrichedCart {
	return &EnrichedCart{Items: []EnrichedCartLine{}, CartTotal: decimal.Zero}
}

func NewCartDTO(c *models.Cart) *CartDTO {
	items := make([]CartLineDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartLineDTO{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	return &CartDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		IsDeleted:   c.IsDeleted,
		IsPurchased: c.IsPurchased,
		Items:       items,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Enrich prices the given lines.
func Enrich(cartID uuid.UUID, lines []Line) *EnrichedCart {
	out := &EnrichedCart{
		CartID:    &cartID,
		Items:     make([]EnrichedCartLine, 0, len(lines)),
		CartTotal: decimal.Zero,
	}
	for _, line := range lines {
		total := line.LineTotal()
		entry := EnrichedCartLine{
			ItemID:            line.ItemID,
			ItemName:          line.Name(),
			ItemPrice:         line.Price(),
			Quantity:          line.Quantity,
			ItemTotal:         total,
			ParcelFeePerPiece: line.ParcelFee(),
			Category:          line.Category(),
		}
		if line.Description != nil {
			entry.Description = *line.Description
		}
		if line.Image != nil {
			entry.Image = *line.Image
		}
		if line.IsPublished != nil {
			entry.IsPublished = *line.IsPublished
		}
		out.Items = append(out.Items, entry)
		out.CartTotal = out.CartTotal.Add(total)
		out.TotalItems += line.Quantity
	}
	return out
}
