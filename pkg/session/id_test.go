package session_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/session"
)

func TestGenerateID(t *testing.T) {
	t.Run("user ids are namespaced and fixed length", func(t *testing.T) {
		uid := int64(42)
		pattern := regexp.MustCompile(`^sessions:42:[A-Za-z0-9]{40}$`)
		seen := make(map[string]struct{}, 10000)

		for range 10000 {
			id, err := session.GenerateID(&uid)
			require.NoError(t, err)
			require.Regexp(t, pattern, id)

			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	})

	t.Run("guest ids", func(t *testing.T) {
		id, err := session.GenerateID(nil)
		require.NoError(t, err)
		assert.Regexp(t, `^sessions:guest:[A-Za-z0-9]{40}$`, id)
		assert.True(t, session.IsGuestID(id))
	})

	t.Run("uses the whole alphabet", func(t *testing.T) {
		counts := make(map[rune]int)
		for range 500 {
			id, err := session.GenerateID(nil)
			require.NoError(t, err)
			for _, r := range session.StripKeyPrefix(id) {
				counts[r]++
			}
		}
		assert.Len(t, counts, 62)
	})
}

func TestKeyPrefixHelpers(t *testing.T) {
	uid := int64(7)
	id, err := session.GenerateID(&uid)
	require.NoError(t, err)

	assert.Equal(t, "sessions:7", session.KeyPrefix(&uid))
	assert.Equal(t, "sessions:guest", session.KeyPrefix(nil))
	assert.Equal(t, "sessions:7", session.CurrentKeyPrefix(id))
	assert.Len(t, session.StripKeyPrefix(id), session.IDLength)
	assert.Equal(t, id, session.CurrentKeyPrefix(id)+":"+session.StripKeyPrefix(id))
	assert.False(t, session.IsGuestID(id))

	t.Run("short ids", func(t *testing.T) {
		assert.Equal(t, "abc", session.StripKeyPrefix("abc"))
		assert.Empty(t, session.CurrentKeyPrefix("abc"))
	})
}
