package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_NoDiscount(t *testing.T) {
	items := []CartLine{
		{ProductID: "p1", UnitPrice: 25.0, Quantity: 2},
		{ProductID: "p2", UnitPrice: 50.0, Quantity: 1},
	}

	totals := ComputeTotals(items, 0, false)

	assert.Equal(t, 100.0, totals.TotalPrice)
	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 100.0, totals.FinalAmountToPay)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, 0, false)

	assert.Equal(t, 0.0, totals.TotalPrice)
	assert.Equal(t, 0, totals.ItemCount)
	assert.Equal(t, 0.0, totals.FinalAmountToPay)
}

func TestComputeTotals_DiscountActive(t *testing.T) {
	items := []CartLine{{ProductID: "p1", UnitPrice: 100.0, Quantity: 1}}

	totals := ComputeTotals(items, 30.0, true)

	assert.Equal(t, 100.0, totals.TotalPrice)
	assert.Equal(t, 70.0, totals.FinalAmountToPay)
}

func TestComputeTotals_DiscountExceedsTotal_FlooredAtZero(t *testing.T) {
	// total shrank below the applied amount; payable floors at zero, the
	// amount itself is not shrunk here
	items := []CartLine{{ProductID: "p1", UnitPrice: 10.0, Quantity: 1}}

	totals := ComputeTotals(items, 30.0, true)

	assert.Equal(t, 10.0, totals.TotalPrice)
	assert.Equal(t, 0.0, totals.FinalAmountToPay)
}

func TestNormalize_Defaults(t *testing.T) {
	line := CartLine{ProductID: "p1", UnitPrice: -5, Quantity: 0}

	n := line.Normalize()

	assert.Equal(t, "Unknown product", n.ProductName)
	assert.Equal(t, 0.0, n.UnitPrice)
	assert.Equal(t, 1, n.Quantity)
}

func TestNormalize_ValidLineUnchanged(t *testing.T) {
	line := CartLine{ProductID: "p1", ProductName: "Socks", UnitPrice: 4.5, Quantity: 3}

	n := line.Normalize()

	assert.Equal(t, line, n)
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, CanTransitionTo(OrderStatusPending, OrderStatusProcessing))
	assert.True(t, CanTransitionTo(OrderStatusProcessing, OrderStatusShipped))
	assert.True(t, CanTransitionTo(OrderStatusShipped, OrderStatusDelivered))
	assert.True(t, CanTransitionTo(OrderStatusPending, OrderStatusCancelled))

	assert.False(t, CanTransitionTo(OrderStatusPending, OrderStatusShipped))
	assert.False(t, CanTransitionTo(OrderStatusDelivered, OrderStatusCancelled))
	assert.False(t, CanTransitionTo(OrderStatusCancelled, OrderStatusPending))
}
