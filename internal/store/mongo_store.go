package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of MongoDB. Multi-document atomicity
// comes from session transactions: WithTransaction threads a SessionContext
// through the callback, so every method called inside it joins the same
// transaction. Transient aborts from concurrent commits are retried by the
// driver; only exhausted retries surface to the caller.
type MongoStore struct {
	client    *mongo.Client
	carts     *mongo.Collection
	items     *mongo.Collection
	cards     *mongo.Collection
	orders    *mongo.Collection
	customers *mongo.Collection
	outbox    *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:    db.Client(),
		carts:     db.Collection("carts"),
		items:     db.Collection("cart_items"),
		cards:     db.Collection("gift_cards"),
		orders:    db.Collection("orders"),
		customers: db.Collection("customers"),
		outbox:    db.Collection("notification_outbox"),
	}
}

func (m *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *MongoStore) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.carts.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *MongoStore) ListCartItems(ctx context.Context, userID string) ([]domain.CartLine, error) {
	cursor, err := m.items.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	var lines []domain.CartLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	return lines, nil
}

func (m *MongoStore) UpdateCartTotals(ctx context.Context, userID string, totals domain.CartTotals) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"total_price":         totals.TotalPrice,
			"item_count":          totals.ItemCount,
			"final_amount_to_pay": totals.FinalAmountToPay,
			"last_updated":        now(),
		},
		"$setOnInsert": bson.M{"user_id": userID},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to update cart totals: %w", err)
	}
	return nil
}

func (m *MongoStore) SetCartDiscount(ctx context.Context, userID string, code *string, amount, finalAmount float64) error {
	filter := bson.M{"user_id": userID}

	set := bson.M{
		"applied_discount_amount": amount,
		"final_amount_to_pay":     finalAmount,
		"last_updated":            now(),
	}
	update := bson.M{"$set": set}
	if code != nil {
		set["applied_discount_code"] = *code
	} else {
		update["$unset"] = bson.M{"applied_discount_code": ""}
	}

	result, err := m.carts.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set cart discount: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoStore) EmptyCart(ctx context.Context, userID string) error {
	if _, err := m.items.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"total_price":             float64(0),
			"item_count":              0,
			"applied_discount_amount": float64(0),
			"final_amount_to_pay":     float64(0),
			"last_updated":            now(),
		},
		"$unset": bson.M{"applied_discount_code": ""},
	}

	result, err := m.carts.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to reset cart summary: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoStore) GetGiftCard(ctx context.Context, code string) (*domain.GiftCard, error) {
	var card domain.GiftCard

	err := m.cards.FindOne(ctx, bson.M{"_id": code}).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGiftCardNotFound
		}
		return nil, fmt.Errorf("failed to get gift card: %w", err)
	}

	return &card, nil
}

func (m *MongoStore) SetGiftCardBalance(ctx context.Context, code string, balance float64) error {
	result, err := m.cards.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": bson.M{"balance": balance}})
	if err != nil {
		return fmt.Errorf("failed to set gift card balance: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrGiftCardNotFound
	}
	return nil
}

func (m *MongoStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	if _, err := m.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *MongoStore) GetShippingProfile(ctx context.Context, userID string) (*domain.ShippingProfile, error) {
	var profile domain.ShippingProfile

	err := m.customers.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get shipping profile: %w", err)
	}

	return &profile, nil
}

func (m *MongoStore) InsertNotification(ctx context.Context, n *domain.Notification) error {
	if _, err := m.outbox.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (m *MongoStore) GetUnsentNotifications(ctx context.Context, limit int) ([]*domain.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := m.outbox.Find(ctx, bson.M{"sent_at": nil}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent notifications: %w", err)
	}

	var notifications []*domain.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (m *MongoStore) MarkNotificationSent(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"sent_at": now()}}
	if _, err := m.outbox.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// CreateIndexes sets up the uniqueness constraints the settlement core
// relies on: one summary per customer, one line per (customer, product).
func (m *MongoStore) CreateIndexes(ctx context.Context) error {
	_, err := m.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create carts index: %w", err)
	}

	_, err = m.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create cart_items index: %w", err)
	}

	_, err = m.outbox.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sent_at", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create outbox index: %w", err)
	}

	_, err = m.customers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create customers index: %w", err)
	}

	return nil
}
