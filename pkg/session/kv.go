package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// KeyValue is the fast key-value store behind the index and the KV handler.
// Every call must be atomic on its own; no multi-call transactions are needed.
type KeyValue interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key, nil for misses.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	// Set stores value with an expiry; zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del removes all keys in one call.
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type memoryValue struct {
	data      []byte
	expiresAt time.Time
}

// MemoryKV is an in-process KeyValue with lazy expiry, for tests and
// single-node development.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]memoryValue
	sets   map[string]map[string]struct{}
	now    func() time.Time
}

// NewMemoryKV creates an empty store. A nil clock uses time.Now.
func NewMemoryKV(clock func() time.Time) *MemoryKV {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryKV{
		values: make(map[string]memoryValue),
		sets:   make(map[string]map[string]struct{}),
		now:    clock,
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(key), nil
}

func (m *MemoryKV) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([][]byte, len(keys))
	for i, key := range keys {
		out[i] = m.get(key)
	}
	return out, nil
}

func (m *MemoryKV) get(key string) []byte {
	v, ok := m.values[key]
	if !ok || (!v.expiresAt.IsZero() && !m.now().Before(v.expiresAt)) {
		return nil
	}
	return slices.Clone(v.data)
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := memoryValue{data: slices.Clone(value)}
	if ttl > 0 {
		v.expiresAt = m.now().Add(ttl)
	}
	m.values[key] = v
	return nil
}

func (m *MemoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
		delete(m.sets, key)
	}
	return nil
}

func (m *MemoryKV) SAdd(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	m.sets[key][member] = struct{}{}
	return nil
}

func (m *MemoryKV) SRem(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.sets[key]; ok {
		delete(set, member)
		if len(set) == 0 {
			delete(m.sets, key)
		}
	}
	return nil
}

func (m *MemoryKV) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		members = append(members, member)
	}
	return members, nil
}
