package store

import (
	"context"
	"errors"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
)

// Common errors returned by the store
var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrGiftCardNotFound = errors.New("gift card not found")
	ErrProfileNotFound  = errors.New("shipping profile not found")
	ErrDuplicateOrder   = errors.New("order already exists")
)

// Store defines the persistence operations the settlement core needs.
// Consumers define this interface, not the MongoDB implementation.
//
// Every method honors an ambient transaction: when called inside the
// function passed to WithTransaction, reads observe a consistent snapshot
// and writes commit together or not at all.
type Store interface {
	// WithTransaction runs fn atomically. If fn returns an error, nothing
	// it wrote survives. Transient aborts from concurrent modification are
	// retried by the implementation, not surfaced to fn's caller.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ListCartItems(ctx context.Context, userID string) ([]domain.CartLine, error)

	// UpdateCartTotals merges the derived figures into the cart summary,
	// creating the summary document if it does not exist. Discount fields
	// are left untouched.
	UpdateCartTotals(ctx context.Context, userID string, totals domain.CartTotals) error

	// SetCartDiscount sets (code != nil) or clears (code == nil) the active
	// discount and republishes the payable amount.
	SetCartDiscount(ctx context.Context, userID string, code *string, amount, finalAmount float64) error

	// EmptyCart deletes every line item and zeroes the summary fields. The
	// cart document itself survives.
	EmptyCart(ctx context.Context, userID string) error

	GetGiftCard(ctx context.Context, code string) (*domain.GiftCard, error)
	SetGiftCardBalance(ctx context.Context, code string, balance float64) error

	CreateOrder(ctx context.Context, order *domain.Order) error

	GetShippingProfile(ctx context.Context, userID string) (*domain.ShippingProfile, error)

	InsertNotification(ctx context.Context, n *domain.Notification) error
	GetUnsentNotifications(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkNotificationSent(ctx context.Context, id string) error
}
