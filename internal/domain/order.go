package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo encodes the admin-side lifecycle
// pending -> processing -> shipped -> delivered, with cancellation possible
// from any non-terminal state. The settlement core itself only ever writes
// PENDING; later transitions belong to the admin dashboard.
func CanTransitionTo(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	switch from {
	case OrderStatusPending:
		return to == OrderStatusProcessing
	case OrderStatusProcessing:
		return to == OrderStatusShipped
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		return false
	}
}

// OrderItem is a frozen copy of a cart line at finalize time. It never
// references the live catalog, so later price or name edits cannot rewrite
// purchase history.
type OrderItem struct {
	ProductID   string  `bson:"product_id" json:"product_id"`
	ProductName string  `bson:"product_name" json:"product_name"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	ImageURL    string  `bson:"image_url" json:"image_url"`
}

// ShippingSnapshot is the customer's shipping profile as it stood at
// finalize time.
type ShippingSnapshot struct {
	Name     string `bson:"name" json:"name"`
	Address  string `bson:"address" json:"address"`
	City     string `bson:"city" json:"city"`
	Postcode string `bson:"postcode" json:"postcode"`
	Phone    string `bson:"phone" json:"phone"`
}

// Order is immutable once written. The settlement core creates it exactly
// once per checkout and never touches it again.
type Order struct {
	OrderID               string           `bson:"_id" json:"order_id"`
	UserID                string           `bson:"user_id" json:"user_id"`
	Items                 []OrderItem      `bson:"items" json:"items"`
	TotalPrice            float64          `bson:"total_price" json:"total_price"`
	AppliedDiscountAmount float64          `bson:"applied_discount_amount" json:"applied_discount_amount"`
	FinalAmountPaid       float64          `bson:"final_amount_paid" json:"final_amount_paid"`
	Shipping              ShippingSnapshot `bson:"shipping" json:"shipping"`
	Status                OrderStatus      `bson:"status" json:"status"`
	CreatedAt             time.Time        `bson:"created_at" json:"created_at"`
}
