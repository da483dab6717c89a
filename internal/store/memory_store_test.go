package store

import (
	"context"
	"errors"
	"testing"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetCart_NotFound(t *testing.T) {
	s := NewMemoryStore()

	cart, err := s.GetCart(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMemoryStore_UpdateCartTotals_CreatesLazily(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 42, ItemCount: 2, FinalAmountToPay: 42})
	require.NoError(t, err)

	cart, err := s.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 42.0, cart.TotalPrice)
	assert.Equal(t, 2, cart.ItemCount)
	assert.False(t, cart.LastUpdated.IsZero())
}

func TestMemoryStore_EmptyCart(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.PutCartLine(domain.CartLine{UserID: "u1", ProductID: "p1", UnitPrice: 10, Quantity: 1})
	require.NoError(t, s.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 10, ItemCount: 1, FinalAmountToPay: 10}))

	require.NoError(t, s.EmptyCart(ctx, "u1"))

	lines, err := s.ListCartItems(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	cart, err := s.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cart.TotalPrice)
	assert.Equal(t, 0.0, cart.FinalAmountToPay)
	assert.Nil(t, cart.AppliedDiscountCode)
}

func TestMemoryStore_Transaction_CommitsOnSuccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.PutGiftCard(domain.GiftCard{Code: "GC1", Balance: 50, IsActive: true})

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.SetGiftCardBalance(ctx, "GC1", 20)
	})
	require.NoError(t, err)

	card, err := s.GetGiftCard(ctx, "GC1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, card.Balance)
}

func TestMemoryStore_Transaction_DiscardsOnFailure(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.PutGiftCard(domain.GiftCard{Code: "GC1", Balance: 50, IsActive: true})
	require.NoError(t, s.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 100, ItemCount: 1, FinalAmountToPay: 100}))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		code := "GC1"
		require.NoError(t, s.SetGiftCardBalance(ctx, "GC1", 20))
		require.NoError(t, s.SetCartDiscount(ctx, "u1", &code, 30, 70))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// nothing written inside the failed transaction survives
	card, err := s.GetGiftCard(ctx, "GC1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, card.Balance)

	cart, err := s.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, cart.AppliedDiscountCode)
	assert.Equal(t, 100.0, cart.FinalAmountToPay)
}

func TestMemoryStore_Transaction_ReadsOwnWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.PutGiftCard(domain.GiftCard{Code: "GC1", Balance: 50, IsActive: true})

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SetGiftCardBalance(ctx, "GC1", 5))
		card, err := s.GetGiftCard(ctx, "GC1")
		require.NoError(t, err)
		assert.Equal(t, 5.0, card.Balance)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_CreateOrder_Duplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	order := &domain.Order{OrderID: "o1", UserID: "u1", Status: domain.OrderStatusPending}

	require.NoError(t, s.CreateOrder(ctx, order))
	assert.ErrorIs(t, s.CreateOrder(ctx, order), ErrDuplicateOrder)
}

func TestMemoryStore_Outbox(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.InsertNotification(ctx, &domain.Notification{ID: "n1", OrderID: "o1"}))
	require.NoError(t, s.InsertNotification(ctx, &domain.Notification{ID: "n2", OrderID: "o2"}))

	unsent, err := s.GetUnsentNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 2)

	require.NoError(t, s.MarkNotificationSent(ctx, "n1"))

	unsent, err = s.GetUnsentNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "n2", unsent[0].ID)
}
