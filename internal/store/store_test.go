package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type prefs struct {
	Size  int      `json:"size"`
	Theme string   `json:"theme"`
	Tags  []string `json:"tags"`
}

func defaultPrefs() prefs {
	return prefs{Size: 16, Theme: "light", Tags: []string{}}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	file, err := NewFile(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	return map[string]Backend{
		"memory": NewMemory(),
		"file":   file,
	}
}

func TestDocumentLifecycle(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			doc := NewDocument(backend, "prefs", defaultPrefs, zap.NewNop())

			got, err := doc.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, defaultPrefs(), got)

			updated, err := doc.Update(ctx, func(p *prefs) error {
				p.Size = 20
				p.Tags = append(p.Tags, "go")
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 20, updated.Size)

			got, err = doc.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, prefs{Size: 20, Theme: "light", Tags: []string{"go"}}, got)

			reset, err := doc.Reset(ctx)
			require.NoError(t, err)
			assert.Equal(t, defaultPrefs(), reset)

			_, err = backend.Get(ctx, "prefs")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = doc.Reset(ctx)
			assert.NoError(t, err, "resetting twice must not fail")
		})
	}
}

func TestDocumentMergesStoredFieldsOverDefaults(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, "prefs", []byte(`{"theme":"dark"}`)))

	doc := NewDocument(backend, "prefs", defaultPrefs, nil)
	got, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefs{Size: 16, Theme: "dark", Tags: []string{}}, got)
}

func TestDocumentCorruptBlobFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.Put(ctx, "prefs", []byte(`{not json`)))

	core, logs := observer.New(zap.WarnLevel)
	doc := NewDocument(backend, "prefs", defaultPrefs, zap.New(core))

	got, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultPrefs(), got)
	assert.Equal(t, 1, logs.FilterMessage("stored document is corrupt, using defaults").Len())
}

func TestDocumentUpdateErrorSkipsWrite(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	doc := NewDocument(backend, "prefs", defaultPrefs, nil)

	boom := errors.New("boom")
	_, err := doc.Update(ctx, func(p *prefs) error {
		p.Size = 99
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = backend.Get(ctx, "prefs")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileBackendLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, backend.Put(ctx, "nexus-settings", []byte(`{"a":1}`)))

	data, err := os.ReadFile(filepath.Join(dir, "nexus-settings.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")

	_, err = NewFile("  ")
	assert.Error(t, err)
}

func TestRedisUnavailableUsesFallback(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	fallback := NewMemory()

	r := NewRedis(ctx, RedisConfig{Addr: "127.0.0.1:1"}, fallback, zap.New(core))
	assert.False(t, r.Available())
	assert.Equal(t, 1, logs.FilterMessage("redis unavailable, bypassing").Len())

	doc := NewDocument(r, "prefs", defaultPrefs, nil)
	_, err := doc.Update(ctx, func(p *prefs) error {
		p.Theme = "dark"
		return nil
	})
	require.NoError(t, err)

	data, err := fallback.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme":"dark"`)
	assert.NoError(t, r.Close())
}

func TestRedisFailingRequestsUseFallback(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	fallback := NewMemory()

	// The server goes away after the startup ping succeeded.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	r := &Redis{client: client, prefix: defaultRedisPrefix, fallback: fallback, logger: zap.New(core)}
	require.True(t, r.Available())

	require.NoError(t, r.Put(ctx, "prefs", []byte(`{"theme":"dark"}`)))
	data, err := fallback.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))

	data, err = r.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))

	require.NoError(t, r.Delete(ctx, "prefs"))
	_, err = r.Get(ctx, "prefs")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, logs.FilterMessage("redis request failed, using fallback").Len())
	assert.NoError(t, r.Close())
}
