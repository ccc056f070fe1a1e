package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies who caused an order change.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
}

// System is the actor used when no authenticated principal is involved.
var System = Actor{}

// RoleLabel returns the role recorded on audit rows.
func (a Actor) RoleLabel() string {
	if a.Role == "" {
		return "system"
	}
	return a.Role.String()
}

// Service records and reads the order status trail.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordInput) (*models.OrderStatusEvent, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]EventDTO, error)
}

type service struct {
	repo Repository
}

// RecordInput captures the immutable data an audit event requires.
type RecordInput struct {
	OrderID uuid.UUID
	Action  enums.AuditAction
	From    *enums.OrderStatus
	To      enums.OrderStatus
	Actor   Actor
	Forced  bool
}

// EventDTO is the API projection of an audit row.
type EventDTO struct {
	ID         uuid.UUID          `json:"id"`
	Action     enums.AuditAction  `json:"action"`
	FromStatus *enums.OrderStatus `json:"fromStatus,omitempty"`
	ToStatus   enums.OrderStatus  `json:"toStatus"`
	ActorID    *uuid.UUID         `json:"actorId,omitempty"`
	ActorRole  string             `json:"actorRole"`
	Forced     bool               `json:"forced"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.OrderStatusEvent, error) {
	if input.OrderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	if !input.To.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", input.To)
	}
	if input.Action == "" {
		return nil, fmt.Errorf("audit action is required")
	}

	event := &models.OrderStatusEvent{
		OrderID:    input.OrderID,
		Action:     input.Action,
		FromStatus: input.From,
		ToStatus:   input.To,
		ActorRole:  input.Actor.RoleLabel(),
		Forced:     input.Forced,
	}
	if input.Actor.ID != uuid.Nil {
		id := input.Actor.ID
		event.ActorID = &id
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]EventDTO, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	events, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, EventDTO{
			ID:         e.ID,
			Action:     e.Action,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Forced:     e.Forced,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}
