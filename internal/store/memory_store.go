package store

import (
	"context"
	"sort"
	"sync"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Transactions are
// copy-on-write under a single lock: fn runs against a private clone of the
// whole state, and the clone replaces the live state only if fn succeeds.
// A failed transaction therefore leaves no partial writes behind, which is
// the same guarantee the MongoDB implementation gets from sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	carts    map[string]domain.Cart
	items    map[string]map[string]domain.CartLine // userID -> productID -> line
	cards    map[string]domain.GiftCard
	orders   map[string]domain.Order
	profiles map[string]domain.ShippingProfile
	outbox   []domain.Notification
}

func newMemState() *memState {
	return &memState{
		carts:    make(map[string]domain.Cart),
		items:    make(map[string]map[string]domain.CartLine),
		cards:    make(map[string]domain.GiftCard),
		orders:   make(map[string]domain.Order),
		profiles: make(map[string]domain.ShippingProfile),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for user, lines := range s.items {
		m := make(map[string]domain.CartLine, len(lines))
		for pid, line := range lines {
			m[pid] = line
		}
		c.items[user] = m
	}
	for k, v := range s.cards {
		c.cards[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	c.outbox = append([]domain.Notification(nil), s.outbox...)
	return c
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

type txKey struct{}

// stateFor returns the state a call should operate on and whether the call is
// already inside a transaction (and thus already holds the lock).
func (s *MemoryStore) stateFor(ctx context.Context) (*memState, bool) {
	if st, ok := ctx.Value(txKey{}).(*memState); ok {
		return st, true
	}
	return s.state, false
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, inTx := s.stateFor(ctx); inTx {
		// already transactional, just join
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	s.state = tx
	return nil
}

func (s *MemoryStore) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
		st = s.state
	}

	cart, ok := st.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return &cart, nil
}

func (s *MemoryStore) ListCartItems(ctx context.Context, userID string) ([]domain.CartLine, error) {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
		st = s.state
	}

	lines := make([]domain.CartLine, 0, len(st.items[userID]))
	for _, line := range st.items[userID] {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (s *MemoryStore) UpdateCartTotals(ctx context.Context, userID string, totals domain.CartTotals) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	cart := st.carts[userID] // zero value doubles as lazy creation
	cart.UserID = userID
	cart.TotalPrice = totals.TotalPrice
	cart.ItemCount = totals.ItemCount
	cart.FinalAmountToPay = totals.FinalAmountToPay
	cart.LastUpdated = now()
	st.carts[userID] = cart
	return nil
}

func (s *MemoryStore) SetCartDiscount(ctx context.Context, userID string, code *string, amount, finalAmount float64) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	cart, ok := st.carts[userID]
	if !ok {
		return ErrCartNotFound
	}
	cart.AppliedDiscountCode = code
	cart.AppliedDiscountAmount = amount
	cart.FinalAmountToPay = finalAmount
	cart.LastUpdated = now()
	st.carts[userID] = cart
	return nil
}

func (s *MemoryStore) EmptyCart(ctx context.Context, userID string) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	delete(st.items, userID)

	cart, ok := st.carts[userID]
	if !ok {
		return ErrCartNotFound
	}
	cart.TotalPrice = 0
	cart.ItemCount = 0
	cart.AppliedDiscountCode = nil
	cart.AppliedDiscountAmount = 0
	cart.FinalAmountToPay = 0
	cart.LastUpdated = now()
	st.carts[userID] = cart
	return nil
}

func (s *MemoryStore) GetGiftCard(ctx context.Context, code string) (*domain.GiftCard, error) {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
		st = s.state
	}

	card, ok := st.cards[code]
	if !ok {
		return nil, ErrGiftCardNotFound
	}
	return &card, nil
}

func (s *MemoryStore) SetGiftCardBalance(ctx context.Context, code string, balance float64) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	card, ok := st.cards[code]
	if !ok {
		return ErrGiftCardNotFound
	}
	card.Balance = balance
	st.cards[code] = card
	return nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	if _, exists := st.orders[order.OrderID]; exists {
		return ErrDuplicateOrder
	}
	st.orders[order.OrderID] = *order
	return nil
}

func (s *MemoryStore) GetShippingProfile(ctx context.Context, userID string) (*domain.ShippingProfile, error) {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
		st = s.state
	}

	profile, ok := st.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (s *MemoryStore) InsertNotification(ctx context.Context, n *domain.Notification) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	st.outbox = append(st.outbox, *n)
	return nil
}

func (s *MemoryStore) GetUnsentNotifications(ctx context.Context, limit int) ([]*domain.Notification, error) {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
		st = s.state
	}

	var result []*domain.Notification
	for i := range st.outbox {
		if st.outbox[i].SentAt != nil {
			continue
		}
		n := st.outbox[i]
		result = append(result, &n)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryStore) MarkNotificationSent(ctx context.Context, id string) error {
	st, inTx := s.stateFor(ctx)
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
		st = s.state
	}

	for i := range st.outbox {
		if st.outbox[i].ID == id {
			t := now()
			st.outbox[i].SentAt = &t
			return nil
		}
	}
	return nil
}

// The following methods are not part of Store. They stand in for the external
// collaborators (cart editor, card issuer, account service) in tests and in
// single-node standalone mode.

// PutCartLine writes a line item the way the cart-editing service would.
func (s *MemoryStore) PutCartLine(line domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.items[line.UserID] == nil {
		s.state.items[line.UserID] = make(map[string]domain.CartLine)
	}
	s.state.items[line.UserID][line.ProductID] = line
}

// RemoveCartLine deletes a line item the way the cart-editing service would.
func (s *MemoryStore) RemoveCartLine(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.items[userID], productID)
}

// PutGiftCard issues or replaces a gift card.
func (s *MemoryStore) PutGiftCard(card domain.GiftCard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cards[card.Code] = card
}

// DeleteGiftCard simulates an administrative card deletion.
func (s *MemoryStore) DeleteGiftCard(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.cards, code)
}

// PutShippingProfile stores a customer shipping profile.
func (s *MemoryStore) PutShippingProfile(p domain.ShippingProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.profiles[p.UserID] = p
}

// OrdersByUser returns all orders created for the given customer.
func (s *MemoryStore) OrdersByUser(userID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []domain.Order
	for _, o := range s.state.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })
	return orders
}
