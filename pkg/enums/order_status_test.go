package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, raw := range []string{"Preparing", "Confirm", "Ready", "Collected", "Expired", "Rejected"} {
		status, err := ParseOrderStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, status.String())
	}

	for _, raw := range []string{"", "confirm", "Delivered", "READY"} {
		_, err := ParseOrderStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusConfirm, OrderStatusPreparing, true},
		{OrderStatusConfirm, OrderStatusReady, true},
		{OrderStatusConfirm, OrderStatusRejected, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusConfirm, false},
		{OrderStatusReady, OrderStatusCollected, true},
		{OrderStatusReady, OrderStatusPreparing, false},
		{OrderStatusCollected, OrderStatusConfirm, false},
		{OrderStatusExpired, OrderStatusReady, false},
		{OrderStatusRejected, OrderStatusCollected, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range HistoryOrderStatuses {
		assert.True(t, s.IsTerminal())
	}
	assert.False(t, OrderStatusConfirm.IsTerminal())
	assert.False(t, OrderStatusReady.IsTerminal())
}

func TestParseOrderTypeAndRole(t *testing.T) {
	ot, err := ParseOrderType("Parcel")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeParcel, ot)

	_, err = ParseOrderType("Delivery")
	assert.Error(t, err)

	role, err := ParseRole("client")
	require.NoError(t, err)
	assert.Equal(t, RoleClient, role)
	assert.False(t, Role("admin").IsValid())
}
