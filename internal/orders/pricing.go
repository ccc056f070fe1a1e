package orders

import (
	"fmt"

	"github.com/counterline/counterline-backend/internal/cart"
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is the priced snapshot of a cart for one order type.
type Quote struct {
	Items          []models.OrderItem
	SubTotal       decimal.Decimal
	ParcelFee      decimal.Decimal
	ConvenienceFee decimal.Decimal
	TotalPrice     decimal.Decimal
}

// MissingItemError reports a cart line whose item no longer exists.
type MissingItemError struct {
	ItemID uuid.UUID
}

func (e *MissingItemError) Error() string {
	return fmt.Sprintf("item %s no longer exists", e.ItemID)
}

// PriceLines snapshots lines into order items and computes the totals.
// Parcel fees only apply to parcel orders.
func PriceLines(lines []cart.Line, orderType enums.OrderType, convenienceFee decimal.Decimal) (Quote, error) {
	quote := Quote{
		Items:          make([]models.OrderItem, 0, len(lines)),
		SubTotal:       decimal.Zero,
		ParcelFee:      decimal.Zero,
		ConvenienceFee: convenienceFee.Round(2),
	}

	for i, line := range lines {
		if !line.ItemExists() {
			return Quote{}, &MissingItemError{ItemID: line.ItemID}
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		lineTotal := line.LineTotal()

		quote.SubTotal = quote.SubTotal.Add(lineTotal)
		if orderType == enums.OrderTypeParcel {
			quote.ParcelFee = quote.ParcelFee.Add(line.ParcelFee().Mul(qty))
		}

		quote.Items = append(quote.Items, models.OrderItem{
			ItemID:            line.ItemID,
			Name:              line.Name(),
			Category:          line.Category(),
			Quantity:          line.Quantity,
			Price:             line.Price(),
			ParcelFeePerPiece: line.ParcelFee(),
			TotalItemPrice:    lineTotal.Round(2),
			Position:          i,
		})
	}

	quote.SubTotal = quote.SubTotal.Round(2)
	quote.ParcelFee = quote.ParcelFee.Round(2)
	quote.TotalPrice = quote.SubTotal.Add(quote.ParcelFee).Add(quote.ConvenienceFee)
	return quote, nil
}

// FormatToken renders the per-day counter, zero-padded to two digits.
func FormatToken(counter int) string {
	return fmt.Sprintf("%02d", counter)
}

// OrderNumber joins the calendar day and token into the public order id.
func OrderNumber(day, token string) string {
	return day + "-" + token
}
