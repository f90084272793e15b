package session_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/storekit/pkg/session"
)

// spyKV counts mutating calls on top of a MemoryKV.
type spyKV struct {
	*session.MemoryKV
	mutations atomic.Int64
	failGet   bool
}

func newSpyKV() *spyKV {
	return &spyKV{MemoryKV: session.NewMemoryKV(nil)}
}

func (s *spyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet {
		return nil, context.DeadlineExceeded
	}
	return s.MemoryKV.Get(ctx, key)
}

func (s *spyKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutations.Add(1)
	return s.MemoryKV.Set(ctx, key, value, ttl)
}

func (s *spyKV) Del(ctx context.Context, keys ...string) error {
	s.mutations.Add(1)
	return s.MemoryKV.Del(ctx, keys...)
}

func (s *spyKV) SAdd(ctx context.Context, key, member string) error {
	s.mutations.Add(1)
	return s.MemoryKV.SAdd(ctx, key, member)
}

func (s *spyKV) SRem(ctx context.Context, key, member string) error {
	s.mutations.Add(1)
	return s.MemoryKV.SRem(ctx, key, member)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newManager(kv session.KeyValue, clk *clock) *session.Manager {
	cfg := session.DefaultConfig()
	cfg.CachePrefix = "test"
	return session.New(nil,
		session.WithKeyValue(kv),
		session.WithConfig(cfg),
		session.WithClock(clk.Now),
	)
}

func ptr[T any](v T) *T { return &v }
