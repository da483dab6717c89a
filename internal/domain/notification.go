package domain

import "time"

// Notification is one row of the transactional outbox. It is inserted in the
// same transaction that creates the order, so a confirmation is queued if and
// only if the order actually committed. The poller publishes it to Kafka and
// stamps SentAt.
type Notification struct {
	ID        string     `bson:"_id" json:"id"`
	OrderID   string     `bson:"order_id" json:"order_id"`
	Recipient string     `bson:"recipient" json:"recipient"`
	Payload   []byte     `bson:"payload" json:"payload"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	SentAt    *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}

// ShippingProfile is the customer's stored shipping data, owned by the
// account service. Read-only here; copied into orders at finalize time.
type ShippingProfile struct {
	UserID   string `bson:"user_id" json:"user_id"`
	Name     string `bson:"name" json:"name"`
	Address  string `bson:"address" json:"address"`
	City     string `bson:"city" json:"city"`
	Postcode string `bson:"postcode" json:"postcode"`
	Phone    string `bson:"phone" json:"phone"`
}

// Snapshot freezes the profile for inclusion in an order.
func (p *ShippingProfile) Snapshot() ShippingSnapshot {
	if p == nil {
		return ShippingSnapshot{}
	}
	return ShippingSnapshot{
		Name:     p.Name,
		Address:  p.Address,
		City:     p.City,
		Postcode: p.Postcode,
		Phone:    p.Phone,
	}
}
