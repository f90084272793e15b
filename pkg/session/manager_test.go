package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/session"
)

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	windowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// login starts a guest session, moves it to uid and saves it.
func login(t *testing.T, m *session.Manager, uid int64, agent string) *session.Session {
	t.Helper()
	ctx := context.Background()

	s := m.Start(ctx, "")
	s.Touch(agent)
	require.NoError(t, s.Migrate(ctx, true, &uid))
	require.NoError(t, s.Save(ctx))
	return s
}

func TestManager_Start(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Unix(1700000000, 0)}
	kv := newSpyKV()
	m := newManager(kv, clk)

	t.Run("empty id starts a guest session", func(t *testing.T) {
		s := m.Start(ctx, "")
		assert.True(t, s.IsGuest())
		assert.False(t, s.Exists())
		assert.Len(t, s.IDWithoutKeyPrefix(), session.IDLength)
	})

	t.Run("loads a saved session", func(t *testing.T) {
		s := login(t, m, 3, windowsUA)
		s.Set("cart", "c-1")
		require.NoError(t, s.Save(ctx))

		loaded := m.Start(ctx, s.ID())
		assert.True(t, loaded.Exists())
		assert.Equal(t, s.ID(), loaded.ID())
		v, ok := loaded.Get("cart")
		assert.True(t, ok)
		assert.Equal(t, "c-1", v)
	})

	t.Run("missing record regenerates a guest id", func(t *testing.T) {
		id, err := session.GenerateID(ptr(int64(3)))
		require.NoError(t, err)

		s := m.Start(ctx, id)
		assert.NotEqual(t, id, s.ID())
		assert.True(t, s.IsGuest())
		assert.False(t, s.Exists())
	})

	t.Run("corrupt record regenerates and is unregistered", func(t *testing.T) {
		s := login(t, m, 4, windowsUA)
		key := m.Index().FullKey(s.ID())
		require.NoError(t, kv.MemoryKV.Set(ctx, key, []byte("garbage"), 0))

		restarted := m.Start(ctx, s.ID())
		assert.NotEqual(t, s.ID(), restarted.ID())
		assert.True(t, restarted.IsGuest())

		keys, err := m.Index().Keys(ctx, ptr(int64(4)))
		require.NoError(t, err)
		assert.NotContains(t, keys, key)
	})

	t.Run("store failure degrades to a new session", func(t *testing.T) {
		s := login(t, m, 5, windowsUA)
		kv.failGet = true
		defer func() { kv.failGet = false }()

		restarted := m.Start(ctx, s.ID())
		assert.NotEqual(t, s.ID(), restarted.ID())
		assert.True(t, restarted.IsGuest())
	})
}

func TestSession_SaveRegistersAfterWrite(t *testing.T) {
	ctx := context.Background()
	kv := newSpyKV()
	m := newManager(kv, &clock{now: time.Unix(1700000000, 0)})

	guest := m.Start(ctx, "")
	require.NoError(t, guest.Save(ctx))
	assert.True(t, guest.Exists())

	members, err := kv.SMembers(ctx, "test:sessions:guest")
	require.NoError(t, err)
	assert.Empty(t, members, "guest sessions are not indexed")

	s := login(t, m, 11, iphoneUA)
	key := m.Index().FullKey(s.ID())

	members, err = kv.SMembers(ctx, "test:sessions:11")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, members)

	payload, err := kv.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, payload)

	rec, err := session.DecodeRecord(payload)
	require.NoError(t, err)
	require.NotNil(t, rec.Meta)
	assert.Equal(t, iphoneUA, rec.Meta.Agent)
	assert.Equal(t, int64(1700000000), rec.Meta.LastVisit)
}

func TestSession_Migrate(t *testing.T) {
	ctx := context.Background()
	kv := newSpyKV()
	m := newManager(kv, &clock{now: time.Unix(1700000000, 0)})
	uid := int64(21)

	s := login(t, m, uid, windowsUA)
	s.Set("k", "v")
	require.NoError(t, s.Save(ctx))
	oldKey := m.Index().FullKey(s.ID())

	t.Run("regenerate keeps owner and data", func(t *testing.T) {
		require.NoError(t, s.Regenerate(ctx, true))
		assert.Equal(t, "sessions:21", session.CurrentKeyPrefix(s.ID()))
		assert.False(t, s.Exists())
		v, _ := s.Get("k")
		assert.Equal(t, "v", v)

		old, err := kv.Get(ctx, oldKey)
		require.NoError(t, err)
		assert.Nil(t, old)

		keys, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.NotContains(t, keys, oldKey)
	})

	t.Run("migrate without destroy keeps the old record", func(t *testing.T) {
		require.NoError(t, s.Save(ctx))
		prevKey := m.Index().FullKey(s.ID())

		require.NoError(t, s.Migrate(ctx, false, &uid))
		prev, err := kv.Get(ctx, prevKey)
		require.NoError(t, err)
		assert.NotNil(t, prev)
	})

	t.Run("invalidate drops data and becomes guest", func(t *testing.T) {
		require.NoError(t, s.Invalidate(ctx))
		assert.True(t, s.IsGuest())
		_, ok := s.Get("k")
		assert.False(t, ok)
	})
}

func TestSession_CurrentUserSessions(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Unix(1700000000, 0)}
	kv := newSpyKV()
	m := newManager(kv, clk)
	uid := int64(42)
	auth := session.User(uid)

	phone := login(t, m, uid, iphoneUA)
	clk.Advance(time.Minute)
	desktop := login(t, m, uid, windowsUA)
	clk.Advance(time.Minute)
	current := login(t, m, uid, windowsUA)

	t.Run("most recent first with device details", func(t *testing.T) {
		list, err := current.CurrentUserSessions(ctx, auth)
		require.NoError(t, err)
		require.Len(t, list, 3)

		assert.Equal(t, current.IDWithoutKeyPrefix(), list[0].ID)
		assert.True(t, list[0].Current)
		assert.Equal(t, desktop.IDWithoutKeyPrefix(), list[1].ID)
		assert.False(t, list[1].Current)
		assert.Equal(t, phone.IDWithoutKeyPrefix(), list[2].ID)

		assert.True(t, list[2].Mobile)
		assert.Equal(t, "iPhone", list[2].Device)
		assert.Equal(t, "iOS", list[2].Platform)
		assert.Equal(t, "Safari", list[2].Browser)
		assert.Equal(t, iphoneUA, list[2].Agent)
		assert.Equal(t, time.Unix(1700000000, 0), list[2].LastVisit)

		assert.False(t, list[1].Mobile)
		assert.Equal(t, "Windows", list[1].Platform)
		assert.Equal(t, "Chrome", list[1].Browser)
	})

	t.Run("equal visit times are ordered by id", func(t *testing.T) {
		tieUID := int64(43)
		clk.now = time.Unix(1800000000, 0)
		a := login(t, m, tieUID, windowsUA)
		b := login(t, m, tieUID, windowsUA)
		c := login(t, m, tieUID, windowsUA)

		list, err := a.CurrentUserSessions(ctx, session.User(tieUID))
		require.NoError(t, err)
		require.Len(t, list, 3)

		ids := []string{list[0].ID, list[1].ID, list[2].ID}
		assert.IsIncreasing(t, ids)
		assert.ElementsMatch(t, []string{a.IDWithoutKeyPrefix(), b.IDWithoutKeyPrefix(), c.IDWithoutKeyPrefix()}, ids)
	})

	t.Run("expired records are pruned from the index", func(t *testing.T) {
		phoneKey := m.Index().FullKey(phone.ID())
		require.NoError(t, kv.MemoryKV.Del(ctx, phoneKey))

		before, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		require.Len(t, before, 3)

		list, err := current.CurrentUserSessions(ctx, auth)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		after, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.Len(t, after, 2)
		assert.NotContains(t, after, phoneKey)
	})

	t.Run("records without meta are skipped but kept", func(t *testing.T) {
		id, err := session.GenerateID(&uid)
		require.NoError(t, err)
		key := m.Index().FullKey(id)
		require.NoError(t, kv.Set(ctx, key, []byte(`"{\"cart\":1}"`), 0))
		require.NoError(t, m.Index().Add(ctx, uid, key))

		list, err := current.CurrentUserSessions(ctx, auth)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		keys, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
	})

	t.Run("guest gets nil", func(t *testing.T) {
		list, err := current.CurrentUserSessions(ctx, session.Guest())
		require.NoError(t, err)
		assert.Nil(t, list)
	})

	t.Run("non-redis driver gets nil", func(t *testing.T) {
		cfg := session.DefaultConfig()
		cfg.Driver = "file"
		fm := session.New(nil, session.WithKeyValue(kv), session.WithConfig(cfg))
		assert.False(t, fm.Index().Enabled())

		s := fm.Start(ctx, "")
		require.NoError(t, s.Migrate(ctx, false, &uid))
		require.NoError(t, s.Save(ctx))

		list, err := s.CurrentUserSessions(ctx, auth)
		require.NoError(t, err)
		assert.Nil(t, list)
	})
}

func TestSession_DestroyUserSession(t *testing.T) {
	ctx := context.Background()
	kv := newSpyKV()
	m := newManager(kv, &clock{now: time.Unix(1700000000, 0)})
	uid := int64(77)

	current := login(t, m, uid, windowsUA)
	other := login(t, m, uid, iphoneUA)

	t.Run("guest context is rejected without mutations", func(t *testing.T) {
		before := kv.mutations.Load()

		ok, err := current.DestroyUserSession(ctx, other.IDWithoutKeyPrefix(), session.Guest())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, kv.mutations.Load())
	})

	t.Run("destroys record and index entry", func(t *testing.T) {
		ok, err := current.DestroyUserSession(ctx, other.IDWithoutKeyPrefix(), session.User(uid))
		require.NoError(t, err)
		assert.True(t, ok)

		otherKey := m.Index().FullKey(other.ID())
		val, err := kv.Get(ctx, otherKey)
		require.NoError(t, err)
		assert.Nil(t, val)

		keys, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.Equal(t, []string{m.Index().FullKey(current.ID())}, keys)
	})

	t.Run("cannot reach other users' sessions", func(t *testing.T) {
		victim := login(t, m, 78, windowsUA)

		ok, err := current.DestroyUserSession(ctx, victim.IDWithoutKeyPrefix(), session.User(uid))
		require.NoError(t, err)
		assert.True(t, ok)

		val, err := kv.Get(ctx, m.Index().FullKey(victim.ID()))
		require.NoError(t, err)
		assert.NotNil(t, val)
	})
}

func TestSession_IsCurrentSession(t *testing.T) {
	m := newManager(newSpyKV(), &clock{now: time.Now()})
	s := login(t, m, 1, windowsUA)

	assert.True(t, s.IsCurrentSession(s.ID()))
	assert.True(t, s.IsCurrentSession(s.IDWithoutKeyPrefix()))
	assert.True(t, s.IsCurrentSession("test:"+s.ID()))
	assert.False(t, s.IsCurrentSession("sessions:1:"+"0123456789012345678901234567890123456789"))
}

func TestManager_DestroyAllForUser(t *testing.T) {
	ctx := context.Background()
	kv := newSpyKV()
	m := newManager(kv, &clock{now: time.Now()})
	uid := int64(5)

	a := login(t, m, uid, windowsUA)
	b := login(t, m, uid, iphoneUA)

	require.NoError(t, m.DestroyAllForUser(ctx, uid))

	vals, err := kv.MGet(ctx, m.Index().FullKey(a.ID()), m.Index().FullKey(b.ID()))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{nil, nil}, vals)

	keys, err := m.Index().Keys(ctx, &uid)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestManager_IsValidID(t *testing.T) {
	m := session.New(session.NewMemoryHandler(), session.WithConfig(session.Config{Driver: "file"}))
	assert.True(t, m.IsValidID("sessions:1:with:colons"))
	assert.False(t, m.IsValidID(""))
}

func TestManager_CustomHandlerWithIndex(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Unix(1700000000, 0)}
	kv := newSpyKV()
	handler := session.NewMemoryHandler()
	cfg := session.DefaultConfig()
	cfg.CachePrefix = "test"
	m := session.New(handler,
		session.WithKeyValue(kv),
		session.WithConfig(cfg),
		session.WithClock(clk.Now),
	)
	require.True(t, m.Index().Enabled())

	uid := int64(7)
	phone := login(t, m, uid, iphoneUA)
	clk.Advance(time.Minute)
	current := login(t, m, uid, windowsUA)

	t.Run("listing reads records through the handler", func(t *testing.T) {
		list, err := current.CurrentUserSessions(ctx, session.User(uid))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, current.IDWithoutKeyPrefix(), list[0].ID)
		assert.True(t, list[0].Current)
		assert.Equal(t, phone.IDWithoutKeyPrefix(), list[1].ID)

		keys, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.Len(t, keys, 2)
	})

	t.Run("records missing from the handler are pruned", func(t *testing.T) {
		require.NoError(t, handler.Destroy(ctx, phone.ID()))

		list, err := current.CurrentUserSessions(ctx, session.User(uid))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, current.IDWithoutKeyPrefix(), list[0].ID)

		keys, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.Equal(t, []string{m.Index().FullKey(current.ID())}, keys)
	})

	t.Run("destroy all removes handler records", func(t *testing.T) {
		require.NoError(t, m.DestroyAllForUser(ctx, uid))

		payload, err := handler.Read(ctx, current.ID())
		require.NoError(t, err)
		assert.Nil(t, payload)

		keys, err := m.Index().Keys(ctx, &uid)
		require.NoError(t, err)
		assert.Empty(t, keys)
		assert.False(t, m.Start(ctx, current.ID()).Exists())
	})
}
