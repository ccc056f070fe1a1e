package enums

import "fmt"

// OrderStatus tracks an order from the counter to pickup.
type OrderStatus string

const (
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusConfirm   OrderStatus = "Confirm"
	OrderStatusReady     OrderStatus = "Ready"
	OrderStatusCollected OrderStatus = "Collected"
	OrderStatusExpired   OrderStatus = "Expired"
	OrderStatusRejected  OrderStatus = "Rejected"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPreparing,
	OrderStatusConfirm,
	OrderStatusReady,
	OrderStatusCollected,
	OrderStatusExpired,
	OrderStatusRejected,
}

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusConfirm:   {OrderStatusPreparing, OrderStatusReady, OrderStatusRejected, OrderStatusExpired},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusRejected, OrderStatusExpired},
	OrderStatusReady:     {OrderStatusCollected, OrderStatusExpired},
}

// ActiveOrderStatuses are the statuses a user is still waiting on.
var ActiveOrderStatuses = []OrderStatus{OrderStatusConfirm, OrderStatusReady}

// HistoryOrderStatuses are the terminal statuses shown in order history.
var HistoryOrderStatuses = []OrderStatus{OrderStatusCollected, OrderStatusExpired, OrderStatusRejected}

// SettledOrderStatuses count toward reconciled revenue.
var SettledOrderStatuses = []OrderStatus{OrderStatusCollected, OrderStatusExpired}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCollected || s == OrderStatusExpired || s == OrderStatusRejected
}

// CanTransitionTo reports whether next is an allowed successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderStatusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderStatusStrings returns the enum as plain strings for SQL IN clauses.
func OrderStatusStrings(statuses []OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
