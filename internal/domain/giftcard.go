package domain

import "time"

// GiftCard is a balance-bearing discount instrument, keyed by its code.
// Only the discount ledger mutates the balance; the conservation rule is that
// the current balance plus every active application always equals the
// original balance.
type GiftCard struct {
	Code      string     `bson:"_id" json:"code"`
	Balance   float64    `bson:"balance" json:"balance"`
	IsActive  bool       `bson:"is_active" json:"is_active"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// Usable reports whether the card can be applied right now.
func (g *GiftCard) Usable(now time.Time) bool {
	if g == nil || !g.IsActive {
		return false
	}
	if g.ExpiresAt != nil && now.After(*g.ExpiresAt) {
		return false
	}
	return g.Balance > 0
}
