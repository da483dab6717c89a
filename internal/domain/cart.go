package domain

import "time"

// Cart is the per-customer settlement summary. Line items live in their own
// collection (see CartLine); this document only carries the derived figures
// and the active discount, so the recalculator can merge totals without
// touching fields it does not own.
type Cart struct {
	ID                    string    `bson:"_id,omitempty" json:"-"`
	UserID                string    `bson:"user_id" json:"user_id"`
	TotalPrice            float64   `bson:"total_price" json:"total_price"`
	ItemCount             int       `bson:"item_count" json:"item_count"`
	AppliedDiscountCode   *string   `bson:"applied_discount_code,omitempty" json:"applied_discount_code,omitempty"`
	AppliedDiscountAmount float64   `bson:"applied_discount_amount" json:"applied_discount_amount"`
	FinalAmountToPay      float64   `bson:"final_amount_to_pay" json:"final_amount_to_pay"`
	LastUpdated           time.Time `bson:"last_updated" json:"last_updated"`
}

// HasDiscount reports whether a gift card is currently applied.
func (c *Cart) HasDiscount() bool {
	return c != nil && c.AppliedDiscountCode != nil && *c.AppliedDiscountCode != ""
}

// CartLine is one product entry in a customer's cart, keyed by
// (user_id, product_id). Written by the cart-editing service; the settlement
// core only ever reads it, except for the deletion step during finalize.
type CartLine struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	ProductID   string    `bson:"product_id" json:"product_id"`
	ProductName string    `bson:"product_name" json:"product_name"`
	UnitPrice   float64   `bson:"unit_price" json:"unit_price"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	ImageURL    string    `bson:"image_url" json:"image_url"`
	AddedAt     time.Time `bson:"added_at" json:"added_at"`
}

const unknownProductName = "Unknown product"

// Normalize coerces a possibly malformed legacy line into a usable one.
// Missing name gets a sentinel, negative price becomes zero, non-positive
// quantity becomes one. A broken record degrades instead of blocking
// settlement or checkout.
func (l CartLine) Normalize() CartLine {
	if l.ProductName == "" {
		l.ProductName = unknownProductName
	}
	if l.UnitPrice < 0 {
		l.UnitPrice = 0
	}
	if l.Quantity <= 0 {
		l.Quantity = 1
	}
	return l
}

// CartTotals is what the recalculator republishes into the cart summary.
type CartTotals struct {
	TotalPrice       float64 `bson:"total_price" json:"total_price"`
	ItemCount        int     `bson:"item_count" json:"item_count"`
	FinalAmountToPay float64 `bson:"final_amount_to_pay" json:"final_amount_to_pay"`
}

// ComputeTotals derives the settlement figures from scratch over the current
// item set. Full recomputation, never a delta: replaying it any number of
// times against the same items yields the same result, which is what makes
// the trigger path safe under at-least-once delivery.
func ComputeTotals(items []CartLine, discountAmount float64, discountActive bool) CartTotals {
	var total float64
	var count int
	for _, item := range items {
		item = item.Normalize()
		total += item.UnitPrice * float64(item.Quantity)
		count += item.Quantity
	}

	final := total
	if discountActive {
		final = total - discountAmount
		if final < 0 {
			final = 0
		}
	}

	return CartTotals{
		TotalPrice:       total,
		ItemCount:        count,
		FinalAmountToPay: final,
	}
}
