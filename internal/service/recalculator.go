package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
)

// RecomputeTotals rebuilds the cart summary from the full current item set.
// It is intentionally not transactional with concurrent item writes: a full
// recomputation is idempotent and convergent, so replaying it any number of
// times, in any order relative to item edits, settles on the correct figures
// for whatever item set is visible. Incremental deltas would drift under
// retries and lost invocations; this never does.
//
// An active discount keeps its stored amount here. Only the payable figure is
// re-derived against the new total, floored at zero. Shrinking the stored
// amount happens only on explicit removal or reapplication.
func (s *SettlementService) RecomputeTotals(ctx context.Context, userID string) (*domain.CartTotals, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	var discountAmount float64
	discountActive := false
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrCartNotFound) {
		return nil, fmt.Errorf("failed to read cart summary: %w", err)
	}
	if cart.HasDiscount() {
		discountAmount = cart.AppliedDiscountAmount
		discountActive = true
	}

	totals := domain.ComputeTotals(items, discountAmount, discountActive)

	if err := s.store.UpdateCartTotals(ctx, userID, totals); err != nil {
		return nil, fmt.Errorf("failed to publish cart totals: %w", err)
	}

	s.invalidateSummary(userID)
	return &totals, nil
}
