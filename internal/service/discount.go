package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
	"go.uber.org/zap"
)

type DiscountResult struct {
	AmountApplied    float64 `json:"amount_applied"`
	FinalAmountToPay float64 `json:"final_amount_to_pay"`
	CardBalance      float64 `json:"card_balance"`
}

type RemoveResult struct {
	Removed          bool    `json:"removed"`
	Refunded         float64 `json:"refunded"`
	FinalAmountToPay float64 `json:"final_amount_to_pay"`
}

// ApplyGiftCard debits a gift card against the cart inside one transaction.
// The deduction is capped at min(card balance, cart total), so the payable
// amount can never go negative and the card can never be overdrawn. A cart
// holds at most one instrument at a time; a second code is rejected, not
// swapped in.
func (s *SettlementService) ApplyGiftCard(ctx context.Context, userID, code string) (*DiscountResult, error) {
	var result DiscountResult

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.store.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if cart.HasDiscount() {
			return ErrDiscountAlreadyApplied
		}

		card, err := s.store.GetGiftCard(ctx, code)
		if err != nil {
			return err
		}
		if !card.IsActive {
			return ErrGiftCardInactive
		}
		if card.ExpiresAt != nil && time.Now().After(*card.ExpiresAt) {
			return ErrGiftCardExpired
		}
		if card.Balance <= 0 {
			return ErrGiftCardExhausted
		}

		amount := card.Balance
		if cart.TotalPrice < amount {
			amount = cart.TotalPrice
		}
		if amount <= 0 {
			return ErrNothingToApply
		}

		newBalance := card.Balance - amount
		if err := s.store.SetGiftCardBalance(ctx, code, newBalance); err != nil {
			return fmt.Errorf("failed to debit gift card: %w", err)
		}

		finalAmount := cart.TotalPrice - amount
		if err := s.store.SetCartDiscount(ctx, userID, &code, amount, finalAmount); err != nil {
			return fmt.Errorf("failed to record discount on cart: %w", err)
		}

		result = DiscountResult{
			AmountApplied:    amount,
			FinalAmountToPay: finalAmount,
			CardBalance:      newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(userID)
	s.log.Info("gift card applied",
		zap.String("user_id", userID),
		zap.String("code", code),
		zap.Float64("amount", result.AmountApplied))

	return &result, nil
}

// RemoveGiftCard refunds the exact amount that was deducted when the card was
// applied, not a recomputed one. The cart total may have changed since; the
// stored amount is what conserves the card's balance. A card deleted by an
// administrator cannot receive a refund, but the cart's discount fields are
// still cleared so the customer is never stuck with an un-removable discount.
// Removing when no discount is active is a no-op, not an error.
func (s *SettlementService) RemoveGiftCard(ctx context.Context, userID string) (*RemoveResult, error) {
	var result RemoveResult

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.store.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if !cart.HasDiscount() {
			result = RemoveResult{Removed: false, FinalAmountToPay: cart.FinalAmountToPay}
			return nil
		}

		code := *cart.AppliedDiscountCode
		refund := cart.AppliedDiscountAmount

		card, err := s.store.GetGiftCard(ctx, code)
		switch {
		case errors.Is(err, store.ErrGiftCardNotFound):
			s.log.Warn("gift card deleted while applied, clearing discount without refund",
				zap.String("user_id", userID), zap.String("code", code))
			refund = 0
		case err != nil:
			return err
		default:
			if err := s.store.SetGiftCardBalance(ctx, code, card.Balance+refund); err != nil {
				return fmt.Errorf("failed to refund gift card: %w", err)
			}
		}

		if err := s.store.SetCartDiscount(ctx, userID, nil, 0, cart.TotalPrice); err != nil {
			return fmt.Errorf("failed to clear discount on cart: %w", err)
		}

		result = RemoveResult{Removed: true, Refunded: refund, FinalAmountToPay: cart.TotalPrice}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Removed {
		s.invalidateSummary(userID)
	}
	return &result, nil
}
