package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a sellable menu entry. Price and parcel fee are read once at order placement.
type Item struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID        uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	ItemName          string          `gorm:"column:item_name;not null"`
	ItemPrice         decimal.Decimal `gorm:"column:item_price;type:numeric(12,2);not null"`
	Image             string          `gorm:"column:image;not null"`
	Description       string          `gorm:"column:description;not null;default:''"`
	ParcelFeePerPiece decimal.Decimal `gorm:"column:parcel_fee_per_piece;type:numeric(12,2);not null;default:0"`
	IsAvailable       bool            `gorm:"column:is_available;not null;default:true"`
	IsPublished       bool            `gorm:"column:is_published;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
