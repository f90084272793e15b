package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("json by default at info level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Debug("dropped")
		assert.Empty(t, buf.String())

		log.Info("checkout transition committed", logger.OrderID(12))
		entry := decodeLine(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "checkout transition committed", entry["msg"])
		assert.EqualValues(t, 12, entry["order_id"])
	})

	t.Run("last format option wins", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter())
		log.Info("text line")
		assert.Contains(t, buf.String(), `msg="text line"`)

		buf.Reset()
		log = logger.New(logger.WithOutput(buf), logger.WithTextFormatter(), logger.WithJSONFormatter())
		log.Info("json line")
		assert.Equal(t, "json line", decodeLine(t, buf)["msg"])
	})

	t.Run("level and static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithLevel(slog.LevelWarn),
			logger.WithAttr(logger.Component("checkout")),
		)
		log.Info("dropped")
		assert.Empty(t, buf.String())

		log.Warn("lock wait timed out")
		assert.Equal(t, "checkout", decodeLine(t, buf)["component"])
	})

	t.Run("context extractors", func(t *testing.T) {
		type ctxKey struct{}
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextValue("request_id", ctxKey{}),
			logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
				return slog.String("region", "jp"), true
			}),
		)

		log.InfoContext(context.Background(), "no request")
		entry := decodeLine(t, buf)
		assert.NotContains(t, entry, "request_id")
		assert.Equal(t, "jp", entry["region"])

		buf.Reset()
		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "with request")
		assert.Equal(t, "req-1", decodeLine(t, buf)["request_id"])
	})

	t.Run("unknown format panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.New(logger.WithFormat(logger.Format("xml")))
		})
	})
}

func TestWithEnvironment(t *testing.T) {
	tests := []struct {
		env       string
		wantEnv   string
		wantDebug bool
		wantJSON  bool
	}{
		{env: logger.EnvDevelopment, wantEnv: "development", wantDebug: true},
		{env: "", wantEnv: "development", wantDebug: true},
		{env: "prod", wantEnv: "prod", wantJSON: true},
		{env: logger.EnvStaging, wantEnv: "staging", wantJSON: true},
	}

	for _, tt := range tests {
		t.Run("env "+tt.wantEnv+" from "+tt.env, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := logger.New(
				logger.WithEnvironment(tt.env, "storekit"),
				logger.WithOutput(buf),
			)

			log.Debug("debug line")
			if !tt.wantDebug {
				assert.Empty(t, buf.String())
			}

			buf.Reset()
			log.Info("info line")
			if tt.wantJSON {
				entry := decodeLine(t, buf)
				assert.Equal(t, "storekit", entry["service"])
				assert.Equal(t, tt.wantEnv, entry["env"])
				return
			}
			assert.Contains(t, buf.String(), "service=storekit")
			assert.Contains(t, buf.String(), "env="+tt.wantEnv)
		})
	}
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decodeLine(t, buf)["msg"])
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
