// Package checkout drives an order through checkout: it decides which
// payment providers an order may use, validates its items and runs the
// begin, complete and fail transitions with stock reservation.
//
// Every transition runs inside Store.WithOrderLock, a single transaction
// holding the order's row lock, so concurrent callers (the buyer returning
// from the provider, the provider webhook, a background failure handler)
// serialise on the order. The status check, the status write and the stock
// reservation or release commit together or not at all. Lock waits are
// bounded and reported as ErrLockTimeout.
//
//	svc := checkout.New(checkout.NewPostgresStore(pool, cfg), cfg, checkout.WithLogger(log))
//
//	co, err := svc.Checkout(order, checkout.ProviderPaypal, "", checkout.RequestFromHTTP(r))
//	if err != nil {
//	    return err
//	}
//	problems, err := co.Validate(ctx)
//	if err != nil || len(problems) > 0 {
//	    return ...
//	}
//	if err := co.BeginCheckout(ctx); err != nil {
//	    return err
//	}
//
// Order statuses follow the table in states.go:
//
//	pending -> processing -> checkout -> paid -> shipped -> delivered
//	                      \-> failed
//
// CompleteCheckout on an order the provider already marked paid or
// delivered is a no-op, so the two callbacks may arrive in any order.
package checkout
