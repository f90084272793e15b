package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/useragent"
)

// Classifier turns a raw User-Agent into device details.
type Classifier interface {
	Classify(ua string) useragent.Agent
}

// Manager creates Session handles and owns the shared collaborators.
// It is safe for concurrent use; a Session is not.
type Manager struct {
	handler    Handler
	kv         KeyValue
	index      *Index
	config     Config
	log        *slog.Logger
	classifier Classifier
	now        func() time.Time

	// recordsInIndexKV is set when records live at the index's own keys, so
	// listings can fetch them with one MGET.
	recordsInIndexKV bool
}

// New creates a manager. A nil handler falls back to a KVHandler when a
// KeyValue is configured for the redis driver, and to a MemoryHandler
// otherwise.
func New(handler Handler, opts ...Option) *Manager {
	m := &Manager{
		handler: handler,
		config:  DefaultConfig(),
		log:     logger.Discard(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	var indexKV KeyValue
	if m.config.UsesRedis() && m.kv != nil {
		indexKV = m.kv
	}
	m.index = NewIndex(indexKV, m.config.CachePrefix)

	if m.handler == nil {
		if indexKV != nil {
			m.handler = NewKVHandler(indexKV, m.config.CachePrefix, m.config.Lifetime)
			m.recordsInIndexKV = true
		} else {
			m.handler = NewMemoryHandler()
		}
	}

	if m.classifier == nil {
		m.classifier = useragent.NewClassifier(m.config.UACacheSize)
	}

	m.log = m.log.With(logger.Component("session"))

	return m
}

// Index exposes the per-user index.
func (m *Manager) Index() *Index {
	return m.index
}

func (m *Manager) GenerateID(userID *int64) (string, error) {
	return GenerateID(userID)
}

// IsValidID accepts any non-empty id; ':' is part of the namespacing scheme.
func (m *Manager) IsValidID(id string) bool {
	return id != ""
}

// Start loads the session identified by id. An empty id, a missing record or
// a record that cannot be read or decoded all produce a new guest session;
// the failure is logged and never returned.
func (m *Manager) Start(ctx context.Context, id string) *Session {
	s := &Session{m: m, record: NewRecord()}

	if !m.IsValidID(id) {
		s.resetID(nil)
		return s
	}
	s.id = id

	payload, err := m.handler.Read(ctx, id)
	if err == nil && payload != nil {
		rec, decErr := DecodeRecord(payload)
		if decErr == nil {
			s.record = rec
			s.exists = true
			return s
		}
		err = decErr
	}

	if err != nil {
		m.log.DebugContext(ctx, "session read failed, starting a new one",
			logger.SessionKey(id), logger.Error(err))
	}

	// Same path as Regenerate(true) with a guest owner.
	if derr := s.Migrate(ctx, true, nil); derr != nil {
		m.log.DebugContext(ctx, "failed to drop unreadable session",
			logger.SessionKey(id), logger.Error(derr))
	}
	return s
}

// DestroyAllForUser deletes every indexed session of userID, e.g. after a
// password change.
func (m *Manager) DestroyAllForUser(ctx context.Context, userID int64) error {
	err := m.destroyHandlerRecords(ctx, userID)
	if err == nil {
		err = m.index.DestroyAll(ctx, userID)
	}
	if err != nil {
		m.log.ErrorContext(ctx, "failed to destroy user sessions",
			logger.UserID(userID), logger.Error(err))
		return err
	}
	return nil
}

// destroyHandlerRecords deletes the records of userID's indexed sessions from
// a handler that does not share the index's keys.
func (m *Manager) destroyHandlerRecords(ctx context.Context, userID int64) error {
	if m.recordsInIndexKV || !m.index.Enabled() {
		return nil
	}
	keys, err := m.index.Keys(ctx, &userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		if id := m.index.SessionID(key); id != "" {
			errs = append(errs, m.handler.Destroy(ctx, id))
		}
	}
	return errors.Join(errs...)
}

// payloads returns the record of every key, nil where it no longer exists.
// Records are read through the handler unless they share the index's keys.
func (m *Manager) payloads(ctx context.Context, keys []string) ([][]byte, error) {
	if m.recordsInIndexKV {
		return m.index.Payloads(ctx, keys)
	}

	out := make([][]byte, len(keys))
	for i, key := range keys {
		id := m.index.SessionID(key)
		if id == "" {
			continue
		}
		payload, err := m.handler.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = payload
	}
	return out, nil
}
