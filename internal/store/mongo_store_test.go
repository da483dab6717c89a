package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

// Transactions need a replica set, so these tests run a real container.
// Opt in with SETTLEMENT_TEST_MONGO=1.
func setupTestStore(t *testing.T) (*MongoStore, func()) {
	if os.Getenv("SETTLEMENT_TEST_MONGO") == "" {
		t.Skip("set SETTLEMENT_TEST_MONGO=1 to run MongoDB container tests")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	st := NewMongoStore(db)
	require.NoError(t, st.CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return st, cleanup
}

func putLine(t *testing.T, st *MongoStore, line domain.CartLine) {
	_, err := st.items.InsertOne(context.Background(), line)
	require.NoError(t, err)
}

func putCard(t *testing.T, st *MongoStore, card domain.GiftCard) {
	_, err := st.cards.InsertOne(context.Background(), card)
	require.NoError(t, err)
}

func TestMongoStore_GetCart_NotFound(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	cart, err := st.GetCart(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongoStore_UpdateCartTotals_Upserts(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := st.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 99.5, ItemCount: 3, FinalAmountToPay: 99.5})
	require.NoError(t, err)

	cart, err := st.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 99.5, cart.TotalPrice)
	assert.Equal(t, 3, cart.ItemCount)
}

func TestMongoStore_UpdateCartTotals_PreservesDiscountFields(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, st.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 100, ItemCount: 1, FinalAmountToPay: 100}))
	code := "GC30"
	require.NoError(t, st.SetCartDiscount(ctx, "u1", &code, 30, 70))

	// a later totals merge must not touch the discount fields
	require.NoError(t, st.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 80, ItemCount: 1, FinalAmountToPay: 50}))

	cart, err := st.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, cart.AppliedDiscountCode)
	assert.Equal(t, "GC30", *cart.AppliedDiscountCode)
	assert.Equal(t, 30.0, cart.AppliedDiscountAmount)
	assert.Equal(t, 80.0, cart.TotalPrice)
}

func TestMongoStore_Transaction_RollsBackOnError(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	putCard(t, st, domain.GiftCard{Code: "GC1", Balance: 50, IsActive: true})
	require.NoError(t, st.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 100, ItemCount: 1, FinalAmountToPay: 100}))

	boom := errors.New("boom")
	err := st.WithTransaction(ctx, func(ctx context.Context) error {
		code := "GC1"
		if err := st.SetGiftCardBalance(ctx, "GC1", 20); err != nil {
			return err
		}
		if err := st.SetCartDiscount(ctx, "u1", &code, 30, 70); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	card, err := st.GetGiftCard(ctx, "GC1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, card.Balance)

	cart, err := st.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, cart.AppliedDiscountCode)
}

func TestMongoStore_EmptyCart(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	putLine(t, st, domain.CartLine{UserID: "u1", ProductID: "p1", UnitPrice: 10, Quantity: 2})
	code := "GC1"
	require.NoError(t, st.UpdateCartTotals(ctx, "u1", domain.CartTotals{TotalPrice: 20, ItemCount: 2, FinalAmountToPay: 20}))
	putCard(t, st, domain.GiftCard{Code: code, Balance: 5, IsActive: true})
	require.NoError(t, st.SetCartDiscount(ctx, "u1", &code, 5, 15))

	require.NoError(t, st.EmptyCart(ctx, "u1"))

	lines, err := st.ListCartItems(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	cart, err := st.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cart.TotalPrice)
	assert.Equal(t, 0, cart.ItemCount)
	assert.Nil(t, cart.AppliedDiscountCode)
	assert.Equal(t, 0.0, cart.FinalAmountToPay)
}

func TestMongoStore_Outbox(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, st.InsertNotification(ctx, &domain.Notification{ID: "n1", OrderID: "o1", Payload: []byte(`{}`)}))

	unsent, err := st.GetUnsentNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 1)

	require.NoError(t, st.MarkNotificationSent(ctx, "n1"))

	unsent, err = st.GetUnsentNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unsent)

	var n domain.Notification
	require.NoError(t, st.outbox.FindOne(ctx, bson.M{"_id": "n1"}).Decode(&n))
	assert.NotNil(t, n.SentAt)
}

func TestMongoStore_CreateOrder_Duplicate(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	order := &domain.Order{OrderID: "o1", UserID: "u1", Status: domain.OrderStatusPending}
	require.NoError(t, st.CreateOrder(ctx, order))
	assert.ErrorIs(t, st.CreateOrder(ctx, order), ErrDuplicateOrder)
}
