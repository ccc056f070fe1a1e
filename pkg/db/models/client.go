package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is the business operating the counter. Only one non-deleted row may exist.
type Client struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessName   string          `gorm:"column:business_name;not null"`
	UserName       string          `gorm:"column:user_name;not null;uniqueIndex"`
	PasswordHash   string          `gorm:"column:password_hash;not null"`
	Pin            int             `gorm:"column:pin;not null"`
	ConvenienceFee decimal.Decimal `gorm:"column:convenience_fee;type:numeric(12,2);not null;default:0"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	IsDeleted      bool            `gorm:"column:is_deleted;not null;default:false"`
	LastLoginAt    *time.Time      `gorm:"column:last_login_at"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
