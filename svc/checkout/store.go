package checkout

import "context"

// Store is the order persistence checkout needs.
type Store interface {
	// FindByNumber returns the order with its items, or ErrOrderNotFound.
	FindByNumber(ctx context.Context, number string) (*Order, error)
	// Items returns the order's items with their products loaded.
	Items(ctx context.Context, orderID int64) ([]OrderItem, error)
	// WithOrderLock runs fn in one transaction holding an exclusive lock on
	// the order row. The order passed to fn is read under the lock. Changes
	// commit only when fn returns nil. A lock wait longer than the configured
	// timeout fails with ErrLockTimeout.
	WithOrderLock(ctx context.Context, orderID int64, fn func(ctx context.Context, tx Tx, order *Order) error) error
	CountByStatus(ctx context.Context, status Status) (int, error)
}

// Tx is the transactional view handed to WithOrderLock callbacks.
type Tx interface {
	Items(ctx context.Context, orderID int64) ([]OrderItem, error)
	// AdjustStock adds delta to the product's stock. Untracked stock is left
	// alone. Going below zero fails with ErrInsufficientStock.
	AdjustStock(ctx context.Context, productID int64, delta int) error
	SaveOrder(ctx context.Context, order *Order) error
}
