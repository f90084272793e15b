package checkout

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/storekit/pkg/statemachine"
)

const (
	EventBegin    statemachine.Event = "begin"
	EventComplete statemachine.Event = "complete"
	EventFail     statemachine.Event = "fail"
	EventPay      statemachine.Event = "pay"
	EventShip     statemachine.Event = "ship"
	EventDeliver  statemachine.Event = "deliver"
)

// orderStates is the order lifecycle. Checkout drives begin, complete and
// fail; the remaining events belong to payment and fulfilment.
var orderStates = statemachine.MustNew(
	statemachine.Transition[Status]{From: []Status{StatusPending}, To: StatusProcessing, Event: EventBegin},
	statemachine.Transition[Status]{From: []Status{StatusProcessing}, To: StatusCheckout, Event: EventComplete},
	statemachine.Transition[Status]{From: []Status{StatusProcessing}, To: StatusFailed, Event: EventFail},
	statemachine.Transition[Status]{From: []Status{StatusProcessing, StatusCheckout}, To: StatusPaid, Event: EventPay},
	statemachine.Transition[Status]{From: []Status{StatusPaid}, To: StatusShipped, Event: EventShip},
	statemachine.Transition[Status]{From: []Status{StatusPaid, StatusShipped}, To: StatusDelivered, Event: EventDeliver},
)

// NextStatus returns the status event leads to, or ErrInvalidState.
func NextStatus(ctx context.Context, from Status, event statemachine.Event) (Status, error) {
	to, err := orderStates.Next(ctx, from, event)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return to, nil
}
