package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/statemachine"
)

type docState string

const (
	draft     docState = "draft"
	inReview  docState = "in_review"
	approved  docState = "approved"
	published docState = "published"
	rejected  docState = "rejected"
)

func newTable(t *testing.T) *statemachine.Table[docState] {
	t.Helper()
	table, err := statemachine.New(
		statemachine.Transition[docState]{From: []docState{draft}, To: inReview, Event: "submit"},
		statemachine.Transition[docState]{From: []docState{inReview}, To: approved, Event: "approve"},
		statemachine.Transition[docState]{From: []docState{inReview, approved}, To: rejected, Event: "reject"},
		statemachine.Transition[docState]{From: []docState{approved}, To: published, Event: "publish"},
	)
	require.NoError(t, err)
	return table
}

func TestTable_Next(t *testing.T) {
	table := newTable(t)
	ctx := context.Background()

	t.Run("follows defined transitions", func(t *testing.T) {
		next, err := table.Next(ctx, draft, "submit")
		require.NoError(t, err)
		assert.Equal(t, inReview, next)

		next, err = table.Next(ctx, next, "approve")
		require.NoError(t, err)
		assert.Equal(t, approved, next)
	})

	t.Run("shared event from several states", func(t *testing.T) {
		for _, from := range []docState{inReview, approved} {
			next, err := table.Next(ctx, from, "reject")
			require.NoError(t, err)
			assert.Equal(t, rejected, next)
		}
	})

	t.Run("undefined transition", func(t *testing.T) {
		_, err := table.Next(ctx, draft, "publish")
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))

		var e *statemachine.ErrNoTransitionAvailable
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "draft", e.StateName)
		assert.Equal(t, "publish", e.EventName)
	})

	t.Run("unknown state", func(t *testing.T) {
		assert.False(t, table.Can(ctx, docState("archived"), "submit"))
	})
}

func TestTable_Guards(t *testing.T) {
	ctx := context.Background()
	allowFastTrack := false

	table := statemachine.MustNew(
		statemachine.Transition[docState]{
			From:  []docState{draft},
			To:    approved,
			Event: "submit",
			Guard: func(context.Context, docState) bool { return allowFastTrack },
		},
		statemachine.Transition[docState]{From: []docState{draft}, To: inReview, Event: "submit"},
		statemachine.Transition[docState]{
			From:  []docState{inReview},
			To:    published,
			Event: "publish",
			Guard: func(context.Context, docState) bool { return false },
		},
	)

	t.Run("first passing guard wins", func(t *testing.T) {
		next, err := table.Next(ctx, draft, "submit")
		require.NoError(t, err)
		assert.Equal(t, inReview, next)

		allowFastTrack = true
		next, err = table.Next(ctx, draft, "submit")
		require.NoError(t, err)
		assert.Equal(t, approved, next)
	})

	t.Run("all guards rejecting", func(t *testing.T) {
		_, err := table.Next(ctx, inReview, "publish")
		require.Error(t, err)
		assert.True(t, statemachine.IsTransitionRejectedError(err))
		assert.False(t, statemachine.IsNoTransitionAvailableError(err))
		assert.False(t, table.Can(ctx, inReview, "publish"))
	})
}

func TestTable_Events(t *testing.T) {
	table := newTable(t)
	assert.Equal(t, []statemachine.Event{"approve", "reject"}, table.Events(inReview))
	assert.Empty(t, table.Events(published))
}

func TestNew_Invalid(t *testing.T) {
	_, err := statemachine.New(statemachine.Transition[docState]{To: approved, Event: "approve"})
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	_, err = statemachine.New(statemachine.Transition[docState]{From: []docState{draft}, To: approved})
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	assert.Panics(t, func() {
		statemachine.MustNew(statemachine.Transition[docState]{To: approved})
	})
}
