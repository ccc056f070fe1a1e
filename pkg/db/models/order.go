package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/counterline/counterline-backend/pkg/enums"
)

// Order is a priced, tokenized checkout. Pricing columns never change after insert.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	CartID         uuid.UUID         `gorm:"column:cart_id;type:uuid;not null"`
	OrderNumber    string            `gorm:"column:order_number;not null;uniqueIndex"`
	TokenNumber    string            `gorm:"column:token_number;not null"`
	OrderDay       string            `gorm:"column:order_day;not null"`
	OrderType      enums.OrderType   `gorm:"column:order_type;not null"`
	OrderStatus    enums.OrderStatus `gorm:"column:order_status;not null;default:'Confirm'"`
	SubTotal       decimal.Decimal   `gorm:"column:sub_total;type:numeric(12,2);not null"`
	ParcelFee      decimal.Decimal   `gorm:"column:parcel_fee;type:numeric(12,2);not null"`
	ConvenienceFee decimal.Decimal   `gorm:"column:convenience_fee;type:numeric(12,2);not null"`
	BusinessName   string            `gorm:"column:business_name;not null"`
	TotalPrice     decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	IsDeleted      bool              `gorm:"column:is_deleted;not null;default:false"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem is the immutable per-line snapshot taken at placement.
type OrderItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ItemID            uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Name              string          `gorm:"column:name;not null"`
	Category          string          `gorm:"column:category;not null"`
	Quantity          int             `gorm:"column:quantity;not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ParcelFeePerPiece decimal.Decimal `gorm:"column:parcel_fee_per_piece;type:numeric(12,2);not null"`
	TotalItemPrice    decimal.Decimal `gorm:"column:total_item_price;type:numeric(12,2);not null"`
	Position          int             `gorm:"column:position;not null;default:0"`
}

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}
