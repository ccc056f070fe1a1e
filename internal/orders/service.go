package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/counterline/counterline-backend/internal/audit"
	"github.com/counterline/counterline-backend/internal/cart"
	"github.com/counterline/counterline-backend/internal/clients"
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/logger"
	"github.com/counterline/counterline-backend/pkg/metrics"
	"github.com/counterline/counterline-backend/pkg/pagination"
	"github.com/counterline/counterline-backend/pkg/tracing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

const dayLayout = "20060102"

var (
	ErrInvalidOrderType     = pkgerrors.New(pkgerrors.CodeValidation, "orderType must be Dine-In or Parcel")
	ErrInvalidStatus        = pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	ErrEmptyCart            = pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	ErrPinRequired          = pkgerrors.New(pkgerrors.CodeValidation, "pin is required")
	ErrInvalidPin           = pkgerrors.New(pkgerrors.CodeForbidden, "invalid pin")
	ErrOrderNotFound        = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	ErrTransitionNotAllowed = pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed")
	ErrCartCheckedOut       = pkgerrors.New(pkgerrors.CodeConflict, "cart already checked out")
	ErrStatusChanged        = pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	ErrItemReference        = pkgerrors.New(pkgerrors.CodeInvalidReference, "cart references an item that no longer exists")
)

// Service is the order factory and lifecycle manager.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, orderType string) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	ListByStatus(ctx context.Context, status string, params pagination.Params) (pagination.Page[OrderDTO], error)
	ListForUser(ctx context.Context, userID uuid.UUID, status string, params pagination.Params) (pagination.Page[OrderDTO], error)
	FetchActive(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	FetchHistory(ctx context.Context, viewer audit.Actor, params pagination.Params) (pagination.Page[OrderDTO], error)
	ReconcileTotal(ctx context.Context, pin int) (*ReconcileResult, error)
	GetDetails(ctx context.Context, orderID uuid.UUID, viewer audit.Actor) (*OrderDTO, error)
	SoftDelete(ctx context.Context, orderID uuid.UUID, viewer audit.Actor) error
	StatusHistory(ctx context.Context, orderID uuid.UUID) ([]audit.EventDTO, error)
}

// UpdateStatusInput carries a requested status change. Force bypasses the
// transition table and is recorded on the audit trail.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  string
	Actor   audit.Actor
	Force   bool
}

// ServiceParams bundles the dependencies of the orders service.
type ServiceParams struct {
	Repo     Repository
	Carts    cart.CartRepository
	Tx       txRunner
	Fees     FeeSource
	Pins     PinVerifier
	Audit    audit.Service
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
	Location *time.Location
	Clock    func() time.Time
}

type service struct {
	repo    Repository
	carts   cart.CartRepository
	tx      txRunner
	fees    FeeSource
	pins    PinVerifier
	audit   audit.Service
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewService validates params and builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Fees == nil {
		return nil, fmt.Errorf("fee source required")
	}
	if params.Pins == nil {
		return nil, fmt.Errorf("pin verifier required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:    params.Repo,
		carts:   params.Carts,
		tx:      params.Tx,
		fees:    params.Fees,
		pins:    params.Pins,
		audit:   params.Audit,
		metrics: params.Metrics,
		logg:    params.Logger,
		loc:     loc,
		now:     clock,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, rawType string) (dto *OrderDTO, err error) {
	ctx, span := tracing.Start(ctx, "orders.PlaceOrder",
		attribute.String("user.id", userID.String()),
		attribute.String("order.type", rawType),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "place order failed")
		}
		span.End()
	}()

	orderType, parseErr := enums.ParseOrderType(rawType)
	if parseErr != nil {
		return nil, ErrInvalidOrderType
	}

	feeCfg, err := s.fees.Current(ctx)
	if err != nil {
		return nil, err
	}
	fee := decimal.Zero
	businessName := clients.UnknownBusinessName
	if feeCfg != nil {
		fee = feeCfg.ConvenienceFee
		businessName = feeCfg.BusinessName
	}

	day := s.now().In(s.loc).Format(dayLayout)

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		repo := s.repo.WithTx(tx)

		active, err := carts.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		lines, err := carts.Lines(ctx, active.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart lines")
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		quote, err := PriceLines(lines, orderType, fee)
		if err != nil {
			var missing *MissingItemError
			if errors.As(err, &missing) {
				return pkgerrors.Wrap(pkgerrors.CodeInvalidReference, ErrItemReference, ErrItemReference.Message()).
					WithDetails(map[string]any{"itemId": missing.ItemID})
			}
			return err
		}

		counter, err := repo.NextToken(ctx, day)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: next token")
		}
		token := FormatToken(counter)

		order := &models.Order{
			UserID:         userID,
			CartID:         active.ID,
			OrderNumber:    OrderNumber(day, token),
			TokenNumber:    token,
			OrderDay:       day,
			OrderType:      orderType,
			OrderStatus:    enums.OrderStatusConfirm,
			SubTotal:       quote.SubTotal,
			ParcelFee:      quote.ParcelFee,
			ConvenienceFee: quote.ConvenienceFee,
			BusinessName:   businessName,
			TotalPrice:     quote.TotalPrice,
			Items:          quote.Items,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		rows, err := carts.MarkPurchased(ctx, active.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark cart purchased")
		}
		if rows == 0 {
			return ErrCartCheckedOut
		}

		if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordInput{
			OrderID: order.ID,
			Action:  enums.AuditActionPlaced,
			To:      enums.OrderStatusConfirm,
			Actor:   audit.Actor{ID: userID, Role: enums.RoleUser},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record order event")
		}

		created = order
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.metrics.ObservePlaced(orderType.String(), created.TotalPrice)
	span.SetAttributes(attribute.String("order.id", created.OrderNumber))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"orderId":     created.OrderNumber,
			"orderType":   orderType.String(),
			"totalPrice":  created.TotalPrice.StringFixed(2),
			"tokenNumber": created.TokenNumber,
		})
		s.logg.Info(logCtx, "order.placed")
	}

	out := NewOrderDTO(*created)
	return &out, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	order, err := s.find(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	current := order.OrderStatus
	if current == next {
		dto := NewOrderDTO(*order)
		return &dto, nil
	}

	allowed := current.CanTransitionTo(next)
	if !allowed && !input.Force {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrTransitionNotAllowed,
			fmt.Sprintf("cannot move order from %s to %s", current, next)).
			WithDetails(map[string]any{"from": current, "to": next})
	}
	forced := !allowed

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.UpdateStatus(ctx, order.ID, current, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		if rows == 0 {
			return ErrStatusChanged
		}

		action := enums.AuditActionTransition
		if forced {
			action = enums.AuditActionForced
		}
		from := current
		if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordInput{
			OrderID: order.ID,
			Action:  action,
			From:    &from,
			To:      next,
			Actor:   input.Actor,
			Forced:  forced,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record order event")
		}

		reloaded, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	s.metrics.ObserveTransition(current.String(), next.String(), forced)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"orderId":   updated.OrderNumber,
			"from":      current.String(),
			"to":        next.String(),
			"forced":    forced,
			"actorRole": input.Actor.RoleLabel(),
		})
		s.logg.Info(logCtx, "order.status.transition")
	}

	dto := NewOrderDTO(*updated)
	return &dto, nil
}

func (s *service) ListByStatus(ctx context.Context, rawStatus string, params pagination.Params) (pagination.Page[OrderDTO], error) {
	status, err := enums.ParseOrderStatus(rawStatus)
	if err != nil {
		return pagination.Page[OrderDTO]{}, ErrInvalidStatus
	}
	return s.list(ctx, ListFilter{Statuses: []enums.OrderStatus{status}}, params)
}

// ListForUser returns the user's orders. An empty status lists every status.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, rawStatus string, params pagination.Params) (pagination.Page[OrderDTO], error) {
	filter := ListFilter{UserID: &userID}
	if rawStatus != "" {
		status, err := enums.ParseOrderStatus(rawStatus)
		if err != nil {
			return pagination.Page[OrderDTO]{}, ErrInvalidStatus
		}
		filter.Statuses = []enums.OrderStatus{status}
	}
	return s.list(ctx, filter, params)
}

// FetchActive returns the newest order the user is still waiting on, or nil.
func (s *service) FetchActive(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindLatest(ctx, ListFilter{UserID: &userID, Statuses: enums.ActiveOrderStatuses})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: fetch active order")
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

// FetchHistory lists finished orders. End users only see their own.
func (s *service) FetchHistory(ctx context.Context, viewer audit.Actor, params pagination.Params) (pagination.Page[OrderDTO], error) {
	filter := ListFilter{Statuses: enums.HistoryOrderStatuses}
	if viewer.Role != enums.RoleClient {
		id := viewer.ID
		filter.UserID = &id
	}
	return s.list(ctx, filter, params)
}

func (s *service) ReconcileTotal(ctx context.Context, pin int) (*ReconcileResult, error) {
	if pin == 0 {
		return nil, ErrPinRequired
	}
	ok, err := s.pins.VerifyPin(ctx, pin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidPin
	}
	total, err := s.repo.SumTotal(ctx, enums.SettledOrderStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum orders")
	}
	return &ReconcileResult{TotalAmount: total}, nil
}

func (s *service) GetDetails(ctx context.Context, orderID uuid.UUID, viewer audit.Actor) (*OrderDTO, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if viewer.Role != enums.RoleClient && order.UserID != viewer.ID {
		return nil, ErrOrderNotFound
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

func (s *service) SoftDelete(ctx context.Context, orderID uuid.UUID, viewer audit.Actor) error {
	var owner *uuid.UUID
	if viewer.Role != enums.RoleClient {
		id := viewer.ID
		owner = &id
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		rows, err := repo.SoftDelete(ctx, orderID, owner)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
		}
		if rows == 0 {
			return ErrOrderNotFound
		}
		status := order.OrderStatus
		if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordInput{
			OrderID: orderID,
			Action:  enums.AuditActionDeleted,
			From:    &status,
			To:      status,
			Actor:   viewer,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record order event")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// StatusHistory returns the audit trail oldest first, including for deleted orders.
func (s *service) StatusHistory(ctx context.Context, orderID uuid.UUID) ([]audit.EventDTO, error) {
	exists, err := s.repo.Exists(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup order")
	}
	if !exists {
		return nil, ErrOrderNotFound
	}
	events, err := s.audit.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list order events")
	}
	return events, nil
}

func (s *service) list(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[OrderDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filter, params.Offset(), params.Limit)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	page := pagination.NewPage(rows, total, params)
	return pagination.Map(page, NewOrderDTO), nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}
