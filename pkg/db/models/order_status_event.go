package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/counterline/counterline-backend/pkg/enums"
)

// OrderStatusEvent records one immutable change to an order's status.
type OrderStatusEvent struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	Action     enums.AuditAction  `gorm:"column:action;not null"`
	FromStatus *enums.OrderStatus `gorm:"column:from_status"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;not null"`
	ActorID    *uuid.UUID         `gorm:"column:actor_id;type:uuid"`
	ActorRole  string             `gorm:"column:actor_role;not null"`
	Forced     bool               `gorm:"column:forced;not null;default:false"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (e *OrderStatusEvent) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
