package service

import (
	"context"
	"sync"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/cache"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
	"go.uber.org/zap"
)

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

func newTestService(st store.Store) (*SettlementService, *mockCache) {
	mc := &mockCache{}
	return NewSettlementService(st, mc, zap.NewNop()), mc
}

// seedCart writes lines the way the external cart editor would and settles
// the summary through the recalculator.
func seedCart(sut *SettlementService, mem *store.MemoryStore, userID string, lines ...domain.CartLine) {
	for _, line := range lines {
		line.UserID = userID
		mem.PutCartLine(line)
	}
	if _, err := sut.RecomputeTotals(context.Background(), userID); err != nil {
		panic(err)
	}
}
