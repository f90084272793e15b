package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Handler persists encoded session records by session id.
type Handler interface {
	// Read returns nil, nil when no record exists.
	Read(ctx context.Context, id string) ([]byte, error)
	Write(ctx context.Context, id string, payload []byte) error
	Destroy(ctx context.Context, id string) error
}

// KVHandler stores records in a KeyValue at "{cachePrefix}:{id}", the same
// keys the Index registers.
type KVHandler struct {
	kv     KeyValue
	prefix string
	ttl    time.Duration
}

func NewKVHandler(kv KeyValue, cachePrefix string, ttl time.Duration) *KVHandler {
	return &KVHandler{kv: kv, prefix: cachePrefix, ttl: ttl}
}

func (h *KVHandler) key(id string) string {
	return h.prefix + ":" + id
}

func (h *KVHandler) Read(ctx context.Context, id string) ([]byte, error) {
	return h.kv.Get(ctx, h.key(id))
}

func (h *KVHandler) Write(ctx context.Context, id string, payload []byte) error {
	return h.kv.Set(ctx, h.key(id), payload, h.ttl)
}

func (h *KVHandler) Destroy(ctx context.Context, id string) error {
	return h.kv.Del(ctx, h.key(id))
}

// MemoryHandler keeps records in process memory. Records never expire.
type MemoryHandler struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryHandler() *MemoryHandler {
	return &MemoryHandler{records: make(map[string][]byte)}
}

func (h *MemoryHandler) Read(_ context.Context, id string) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.records[id]), nil
}

func (h *MemoryHandler) Write(_ context.Context, id string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[id] = slices.Clone(payload)
	return nil
}

func (h *MemoryHandler) Destroy(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.records, id)
	return nil
}
