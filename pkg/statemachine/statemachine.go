package statemachine

import (
	"context"
	"fmt"
	"slices"
)

// Event triggers a transition.
type Event string

// Guard decides at runtime whether a transition may be taken.
type Guard[S comparable] func(ctx context.Context, from S) bool

// Transition moves from any of From to To when Event fires and Guard (if set)
// passes.
type Transition[S comparable] struct {
	From  []S
	To    S
	Event Event
	Guard Guard[S]
}

// Table is a read-only transition table, safe for concurrent use.
type Table[S comparable] struct {
	edges map[S]map[Event][]Transition[S]
}

// New builds a table. Every transition needs at least one source state and a
// non-empty event.
func New[S comparable](transitions ...Transition[S]) (*Table[S], error) {
	t := &Table[S]{edges: make(map[S]map[Event][]Transition[S])}

	for i, tr := range transitions {
		if len(tr.From) == 0 || tr.Event == "" {
			return nil, fmt.Errorf("transition[%d] to %v: %w", i, tr.To, ErrInvalidTransition)
		}
		for _, from := range tr.From {
			if t.edges[from] == nil {
				t.edges[from] = make(map[Event][]Transition[S])
			}
			t.edges[from][tr.Event] = append(t.edges[from][tr.Event], tr)
		}
	}

	return t, nil
}

// MustNew is like New but panics on an invalid definition.
func MustNew[S comparable](transitions ...Transition[S]) *Table[S] {
	t, err := New(transitions...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return t
}

// Next returns the state event leads to from the given state.
func (t *Table[S]) Next(ctx context.Context, from S, event Event) (S, error) {
	candidates := t.edges[from][event]
	if len(candidates) == 0 {
		var zero S
		return zero, NewErrNoTransitionAvailable(fmt.Sprint(from), string(event))
	}

	for _, tr := range candidates {
		if tr.Guard == nil || tr.Guard(ctx, from) {
			return tr.To, nil
		}
	}

	var zero S
	return zero, NewErrTransitionRejected(fmt.Sprint(from), string(event))
}

// Can reports whether Next would succeed.
func (t *Table[S]) Can(ctx context.Context, from S, event Event) bool {
	_, err := t.Next(ctx, from, event)
	return err == nil
}

// Events lists the events defined for a state, sorted by name. Guards are not
// evaluated.
func (t *Table[S]) Events(from S) []Event {
	events := make([]Event, 0, len(t.edges[from]))
	for ev := range t.edges[from] {
		events = append(events, ev)
	}
	slices.Sort(events)
	return events
}
