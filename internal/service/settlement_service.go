package service

import (
	"context"
	"errors"
	"time"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/cache"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SettlementService owns the cart's monetary summary, the gift-card ledger
// and checkout finalization. All multi-document updates go through the
// store's transaction primitive; the recalculator path deliberately does not
// (it is convergent instead, see RecomputeTotals).
type SettlementService struct {
	store store.Store
	cache cache.SummaryCache
	log   *zap.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewSettlementService(st store.Store, c cache.SummaryCache, log *zap.Logger) *SettlementService {
	return &SettlementService{
		store: st,
		cache: c,
		log:   log,
	}
}

// GetSummary returns the settled cart summary, served from cache when
// possible. A customer without a cart document yet gets an all-zero summary
// rather than an error.
func (s *SettlementService) GetSummary(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("summary cache get failed", zap.Error(err))
		}

		cart, errGet := s.store.GetCart(ctx, userID)
		if errors.Is(errGet, store.ErrCartNotFound) {
			return &domain.Cart{UserID: userID, LastUpdated: time.Now()}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				s.log.Warn("summary cache set failed", zap.Error(errSet))
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// invalidateSummary drops the cached summary after any settlement mutation.
// Best effort: a stale entry only survives until its TTL.
func (s *SettlementService) invalidateSummary(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("summary cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
