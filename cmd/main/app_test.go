package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Houeta/deal-watch/internal/config"
	"github.com/Houeta/deal-watch/internal/delivery/stream"
	"github.com/Houeta/deal-watch/internal/models"
)

func TestOpenStorage(t *testing.T) {
	ctx := t.Context()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, backend := range []string{config.StorageSQLite, config.StorageFile} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "dealwatch.db")

			storage, err := openStorage(ctx, config.Storage{Backend: backend, Path: path}, log)
			require.NoError(t, err)
			defer storage.Close()

			require.NoError(t, storage.AddSearch(ctx, models.MonitoredSearch{OwnerID: "1", SearchTerm: "lamp"}))
			terms, err := storage.Terms(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"lamp"}, terms)
		})
	}
}

func redisConfig(t *testing.T, addr string) *config.Config {
	t.Helper()

	return &config.Config{
		Env:     envLocal,
		BaseURL: "https://www.carousell.sg",
		Storage: config.Storage{Backend: config.StorageFile, Path: t.TempDir()},
		Cycle:   config.Cycle{Interval: 1, MaxPages: 1},
		Notify:  config.NotifyRedis,
		Redis:   config.Redis{Addr: addr, Stream: "test"},
	}
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	// Nothing listens on port 1.
	_, err := newApp(t.Context(), redisConfig(t, "127.0.0.1:1"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis is unreachable at 127.0.0.1:1")
}

// ===== Integration Tests =====

func TestNewApp_RedisWithoutBot(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pub, err := stream.NewPublisher(log, "localhost:6379", 0, "test", "https://www.carousell.sg")
	require.NoError(t, err)
	if err = pub.Ping(t.Context()); err != nil {
		pub.Close()
		t.Skipf("Redis is not available: %v", err)
	}
	pub.Close()

	a, err := newApp(t.Context(), redisConfig(t, "localhost:6379"), log)
	require.NoError(t, err)
	assert.Nil(t, a.bot)
	assert.NotNil(t, a.checker)
	assert.Len(t, a.closers, 2)
	require.NoError(t, a.Close())
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer

	setupLogger(envProd, &buf).Info("hidden")
	assert.Empty(t, buf.String())

	setupLogger(envProd, &buf).Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.NotContains(t, buf.String(), `"time"`)

	buf.Reset()
	setupLogger("staging", &buf)
	assert.True(t, strings.Contains(buf.String(), "available_envs"))
}
