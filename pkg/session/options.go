package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithKeyValue sets the store backing the per-user index.
func WithKeyValue(kv KeyValue) Option {
	return func(m *Manager) {
		m.kv = kv
	}
}

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClassifier replaces the default memoising user-agent classifier.
func WithClassifier(c Classifier) Option {
	return func(m *Manager) {
		m.classifier = c
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
