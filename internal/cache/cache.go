package cache

import (
	"context"
	"errors"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
)

type SummaryCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
