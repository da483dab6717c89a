package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FinalizeResult struct {
	OrderID         string  `json:"order_id"`
	FinalAmountPaid float64 `json:"final_amount_paid"`
}

// Finalize converts the cart into an immutable order inside one transaction:
// snapshot the lines, write the order, empty the cart, queue the confirmation
// notification. All of it commits or none of it does, so there is never an
// order without an emptied cart or an emptied cart without an order.
//
// A client retry after a committed first attempt finds an empty cart and
// fails the non-empty precondition, which is what keeps naive retries from
// producing duplicate orders without any idempotency token.
func (s *SettlementService) Finalize(ctx context.Context, userID, notificationAddress string) (*FinalizeResult, error) {
	if !validAddress(notificationAddress) {
		return nil, ErrInvalidAddress
	}

	var result FinalizeResult

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.store.GetCart(ctx, userID)
		if err != nil {
			return err
		}

		lines, err := s.store.ListCartItems(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to read cart items: %w", err)
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		items := make([]domain.OrderItem, len(lines))
		for i, line := range lines {
			line = line.Normalize()
			items[i] = domain.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
				ImageURL:    line.ImageURL,
			}
		}

		shipping := domain.ShippingSnapshot{}
		profile, err := s.store.GetShippingProfile(ctx, userID)
		switch {
		case errors.Is(err, store.ErrProfileNotFound):
			// an incomplete account profile must not block checkout
			s.log.Warn("no shipping profile, order gets an empty snapshot", zap.String("user_id", userID))
		case err != nil:
			return fmt.Errorf("failed to read shipping profile: %w", err)
		default:
			shipping = profile.Snapshot()
		}

		now := time.Now()
		order := &domain.Order{
			OrderID:               fmt.Sprintf("%s-%d", userID, now.UnixNano()),
			UserID:                userID,
			Items:                 items,
			TotalPrice:            cart.TotalPrice,
			AppliedDiscountAmount: cart.AppliedDiscountAmount,
			FinalAmountPaid:       cart.FinalAmountToPay,
			Shipping:              shipping,
			Status:                domain.OrderStatusPending,
			CreatedAt:             now,
		}

		if err := s.store.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := s.store.EmptyCart(ctx, userID); err != nil {
			return fmt.Errorf("failed to empty cart: %w", err)
		}

		payload, err := json.Marshal(map[string]interface{}{
			"order_id":          order.OrderID,
			"user_id":           userID,
			"final_amount_paid": order.FinalAmountPaid,
			"item_count":        len(items),
			"created_at":        now,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal notification payload: %w", err)
		}

		notification := &domain.Notification{
			ID:        uuid.NewString(),
			OrderID:   order.OrderID,
			Recipient: notificationAddress,
			Payload:   payload,
			CreatedAt: now,
		}
		if err := s.store.InsertNotification(ctx, notification); err != nil {
			return fmt.Errorf("failed to queue confirmation notification: %w", err)
		}

		result = FinalizeResult{OrderID: order.OrderID, FinalAmountPaid: order.FinalAmountPaid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(userID)
	s.log.Info("order finalized",
		zap.String("user_id", userID),
		zap.String("order_id", result.OrderID),
		zap.Float64("final_amount_paid", result.FinalAmountPaid))

	return &result, nil
}

func validAddress(addr string) bool {
	at := strings.Index(addr, "@")
	return at > 0 && at < len(addr)-1
}
