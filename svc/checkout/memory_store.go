package checkout

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node setups.
// Each order has its own lock; stock changes of a transaction are staged and
// applied atomically on commit.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   map[int64]*Order
	byNumber map[string]int64
	items    map[int64][]OrderItem // by order id, products resolved on read
	products map[int64]*Product
	locks    map[int64]chan struct{}

	lockTimeout time.Duration
}

// NewMemoryStore creates an empty store. A non-positive lockTimeout means
// DefaultLockTimeout; lock waits never block indefinitely.
func NewMemoryStore(lockTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		orders:      make(map[int64]*Order),
		byNumber:    make(map[string]int64),
		items:       make(map[int64][]OrderItem),
		products:    make(map[int64]*Product),
		locks:       make(map[int64]chan struct{}),
		lockTimeout: lockTimeoutOrDefault(lockTimeout),
	}
}

// PutProduct inserts or replaces a product.
func (s *MemoryStore) PutProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p.clone()
}

// Product returns a copy of the product.
func (s *MemoryStore) Product(id int64) (*Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p.clone(), ok
}

// DeleteProduct removes a product. Items referencing it keep their row but
// lose the product reference.
func (s *MemoryStore) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	for _, items := range s.items {
		for i := range items {
			if items[i].ProductID == id {
				items[i].ProductID = 0
			}
		}
	}
}

// PutOrder inserts or replaces an order. Items are stored separately; the
// Product field of each item is ignored in favour of ProductID.
func (s *MemoryStore) PutOrder(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		it = it.clone()
		it.OrderID = o.ID
		it.Product = nil
		items[i] = it
	}
	o.Items = nil

	s.orders[o.ID] = o.clone()
	s.byNumber[o.Number] = o.ID
	s.items[o.ID] = items
	if _, ok := s.locks[o.ID]; !ok {
		s.locks[o.ID] = make(chan struct{}, 1)
	}
}

func (s *MemoryStore) FindByNumber(ctx context.Context, number string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("order %q: %w", number, ErrOrderNotFound)
	}
	o := s.orders[id].clone()
	o.Items = s.resolveItems(id)
	return o, nil
}

func (s *MemoryStore) Items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
	}
	return s.resolveItems(orderID), nil
}

func (s *MemoryStore) resolveItems(orderID int64) []OrderItem {
	items := make([]OrderItem, len(s.items[orderID]))
	for i, it := range s.items[orderID] {
		it = it.clone()
		it.Product = s.products[it.ProductID].clone()
		items[i] = it
	}
	return items
}

func (s *MemoryStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, o := range s.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) WithOrderLock(ctx context.Context, orderID int64, fn func(ctx context.Context, tx Tx, order *Order) error) error {
	s.mu.RLock()
	lock, ok := s.locks[orderID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
	}

	if err := s.acquire(ctx, lock); err != nil {
		return fmt.Errorf("lock order %d: %w", orderID, err)
	}
	defer func() { <-lock }()

	s.mu.RLock()
	order := s.orders[orderID].clone()
	s.mu.RUnlock()

	tx := &memoryTx{store: s, deltas: make(map[int64]int)}
	if err := fn(ctx, tx, order); err != nil {
		return err
	}
	return tx.commit()
}

func (s *MemoryStore) acquire(ctx context.Context, lock chan struct{}) error {
	t := time.NewTimer(s.lockTimeout)
	defer t.Stop()

	select {
	case lock <- struct{}{}:
		return nil
	case <-t.C:
		return ErrLockTimeout
	case <-ctx.Done():
		return errors.Join(ErrLockTimeout, ctx.Err())
	}
}

type memoryTx struct {
	store  *MemoryStore
	deltas map[int64]int
	saved  *Order
}

func (tx *memoryTx) Items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return tx.store.Items(ctx, orderID)
}

func (tx *memoryTx) AdjustStock(_ context.Context, productID int64, delta int) error {
	tx.store.mu.RLock()
	p, ok := tx.store.products[productID]
	var err error
	switch {
	case !ok:
		err = fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	case p.Stock != nil && *p.Stock+tx.deltas[productID]+delta < 0:
		err = ErrInsufficientStock
	}
	tx.store.mu.RUnlock()
	if err != nil {
		return err
	}

	tx.deltas[productID] += delta
	return nil
}

func (tx *memoryTx) SaveOrder(_ context.Context, order *Order) error {
	tx.saved = order.clone()
	tx.saved.Items = nil
	return nil
}

// commit re-checks staged stock against the current values, since other
// orders may have reserved the same products meanwhile, then applies all
// changes at once.
func (tx *memoryTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := slices.Sorted(maps.Keys(tx.deltas))
	for _, id := range ids {
		p, ok := s.products[id]
		if !ok {
			return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		if p.Stock != nil && *p.Stock+tx.deltas[id] < 0 {
			return fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
		}
	}
	for _, id := range ids {
		if p := s.products[id]; p.Stock != nil {
			*p.Stock += tx.deltas[id]
		}
	}
	if tx.saved != nil {
		s.orders[tx.saved.ID] = tx.saved
	}
	return nil
}
