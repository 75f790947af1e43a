package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{name: "pending to confirmed", from: OrderStatusPending, to: OrderStatusConfirmed, want: true},
		{name: "skip straight to delivered", from: OrderStatusPending, to: OrderStatusDelivered, want: true},
		{name: "confirmed to shipped", from: OrderStatusConfirmed, to: OrderStatusShipped, want: true},
		{name: "no going back", from: OrderStatusConfirmed, to: OrderStatusPending, want: false},
		{name: "no backward from delivered", from: OrderStatusDelivered, to: OrderStatusShipped, want: false},
		{name: "no same-state no-op", from: OrderStatusProcessing, to: OrderStatusProcessing, want: false},
		{name: "pending can cancel", from: OrderStatusPending, to: OrderStatusCancelled, want: true},
		{name: "shipped can cancel", from: OrderStatusShipped, to: OrderStatusCancelled, want: true},
		{name: "delivered can cancel", from: OrderStatusDelivered, to: OrderStatusCancelled, want: true},
		{name: "cancelled is terminal", from: OrderStatusCancelled, to: OrderStatusPending, want: false},
		{name: "cancelled cannot re-cancel", from: OrderStatusCancelled, to: OrderStatusCancelled, want: false},
		{name: "unknown status goes nowhere", from: OrderStatus("mystery"), to: OrderStatusPending, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusDelivered.Terminal())
}
