package checkout

import "errors"

var (
	// ErrInvariant marks a caller bug: a disallowed provider, or the
	// restricted provider without a reference. Never retried.
	ErrInvariant = errors.New("checkout.invariant_violation")

	// ErrInvalidState means the order is not in the state the transition requires.
	ErrInvalidState = errors.New("checkout.invalid_state")

	// ErrLockTimeout means the order row lock could not be acquired in time.
	// The operation had no effect and may be retried.
	ErrLockTimeout = errors.New("checkout.lock_timeout")

	ErrOrderNotFound     = errors.New("checkout.order_not_found")
	ErrProductNotFound   = errors.New("checkout.product_not_found")
	ErrInsufficientStock = errors.New("checkout.insufficient_stock")
)
