package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven/pkg/logger"
)

func TestDecorator(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	t.Run("injects context attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		handler := slog.NewJSONHandler(&buf, nil)
		log := slog.New(logger.NewDecorator(handler, func(ctx context.Context) (slog.Attr, bool) {
			if v, ok := ctx.Value(ctxKey{}).(string); ok {
				return slog.String("request_id", v), true
			}
			return slog.Attr{}, false
		}))

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-123")
		log.InfoContext(ctx, "hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "req-123", entry["request_id"])
		require.Equal(t, "hello", entry["msg"])
	})

	t.Run("skips attribute when extractor declines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(logger.NewDecorator(slog.NewJSONHandler(&buf, nil), func(context.Context) (slog.Attr, bool) {
			return slog.Attr{}, false
		}))

		log.Info("hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.NotContains(t, entry, "request_id")
	})

	t.Run("tolerates nil extractor", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(logger.NewDecorator(slog.NewJSONHandler(&buf, nil), nil))
		require.NotPanics(t, func() { log.Info("hello") })
	})
}

func TestDailyFileHandler(t *testing.T) {
	t.Parallel()

	t.Run("writes formatted line to daily file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		handler, err := logger.NewDailyFile(dir, slog.LevelInfo)
		require.NoError(t, err)

		log := slog.New(handler)
		log.Info("user logged in", slog.String("user", "alice"))

		name := filepath.Join(dir, time.Now().Format("02012006")+".log")
		data, err := os.ReadFile(name)
		require.NoError(t, err)

		line := string(data)
		require.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] INFO user logged in user=alice\n$`, line)
	})

	t.Run("filters below configured level", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		handler, err := logger.NewDailyFile(dir, slog.LevelWarn)
		require.NoError(t, err)

		log := slog.New(handler)
		log.Info("ignored")
		log.Warn("kept")

		name := filepath.Join(dir, time.Now().Format("02012006")+".log")
		data, err := os.ReadFile(name)
		require.NoError(t, err)
		require.Contains(t, string(data), "WARN kept")
		require.NotContains(t, string(data), "ignored")
	})

	t.Run("carries preset attributes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		handler, err := logger.NewDailyFile(dir, slog.LevelInfo)
		require.NoError(t, err)

		log := slog.New(handler).With(slog.String("component", "cache"))
		log.Info("warmed")

		name := filepath.Join(dir, time.Now().Format("02012006")+".log")
		data, err := os.ReadFile(name)
		require.NoError(t, err)
		require.Contains(t, string(data), "component=cache")
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	log := logger.New("kernel")
	require.NotNil(t, log)

	require.NotPanics(t, func() {
		logger.NewNope().Info("discarded")
	})
}
