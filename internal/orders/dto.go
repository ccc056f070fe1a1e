package orders

import (
	"time"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the API projection of an order and its item snapshot.
type OrderDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrderID        string            `json:"orderId"`
	TokenNumber    string            `json:"tokenNumber"`
	UserID         uuid.UUID         `json:"userId"`
	CartID         uuid.UUID         `json:"cartId"`
	OrderType      enums.OrderType   `json:"orderType"`
	OrderStatus    enums.OrderStatus `json:"orderStatus"`
	Items          []OrderItemDTO    `json:"items"`
	SubTotal       decimal.Decimal   `json:"subTotal"`
	ParcelFee      decimal.Decimal   `json:"parcelFee"`
	ConvenienceFee decimal.Decimal   `json:"convenienceFee"`
	BusinessName   string            `json:"businessName"`
	TotalPrice     decimal.Decimal   `json:"totalPrice"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type OrderItemDTO struct {
	ItemID            uuid.UUID       `json:"itemId"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	ParcelFeePerPiece decimal.Decimal `json:"parcelFeePerPiece"`
	TotalItemPrice    decimal.Decimal `json:"totalItemPrice"`
}

// ReconcileResult is the settled revenue total.
type ReconcileResult struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func NewOrderDTO(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ItemID:            item.ItemID,
			Name:              item.Name,
			Category:          item.Category,
			Quantity:          item.Quantity,
			Price:             item.Price,
			ParcelFeePerPiece: item.ParcelFeePerPiece,
			TotalItemPrice:    item.TotalItemPrice,
		})
	}
	return OrderDTO{
		ID:             o.ID,
		OrderID:        o.OrderNumber,
		TokenNumber:    o.TokenNumber,
		UserID:         o.UserID,
		CartID:         o.CartID,
		OrderType:      o.OrderType,
		OrderStatus:    o.OrderStatus,
		Items:          items,
		SubTotal:       o.SubTotal,
		ParcelFee:      o.ParcelFee,
		ConvenienceFee: o.ConvenienceFee,
		BusinessName:   o.BusinessName,
		TotalPrice:     o.TotalPrice,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
