// Package statemachine describes finite state machines as immutable transition
// tables.
//
// The table does not hold a current state. Callers keep state wherever it
// lives (usually a database row read under a lock) and ask the table where an
// event leads from there:
//
//	orders := statemachine.MustNew(
//	    statemachine.Transition[Status]{From: []Status{Pending}, To: Processing, Event: "begin"},
//	    statemachine.Transition[Status]{From: []Status{Processing}, To: Failed, Event: "fail"},
//	)
//
//	next, err := orders.Next(ctx, order.Status, "begin")
//	if err != nil {
//	    // *ErrNoTransitionAvailable or *ErrTransitionRejected
//	}
//
// Several transitions may share a (from, event) pair; the first whose guard
// passes wins, which lets guards express priority branches.
package statemachine
