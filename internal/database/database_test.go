package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, ttl time.Duration) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "sessions.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewCredentialStore_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "sessions.db")

	store, err := NewCredentialStore(dbPath, time.Hour)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, dbPath)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestCredentialStore(t *testing.T) {
	store := setupTestStore(t, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "v1", "token", "abc"))
		got, err := store.Get(ctx, "v1", "token")
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "v1", "token", "def"))
		got, err := store.Get(ctx, "v1", "token")
		require.NoError(t, err)
		assert.Equal(t, "def", got)
	})

	t.Run("Missing", func(t *testing.T) {
		got, err := store.Get(ctx, "v2", "token")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("VisitorsAreIsolated", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "v2", "partnerToken", "p"))
		got, _ := store.Get(ctx, "v1", "partnerToken")
		assert.Empty(t, got)
	})

	t.Run("DeleteSomeKeys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "v3", "token", "t"))
		require.NoError(t, store.Set(ctx, "v3", "partnerToken", "p"))
		require.NoError(t, store.Delete(ctx, "v3", "token"))

		got, _ := store.Get(ctx, "v3", "token")
		assert.Empty(t, got)
		got, _ = store.Get(ctx, "v3", "partnerToken")
		assert.Equal(t, "p", got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		allowed, err := store.CheckRateLimit(ctx, "login:v1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		allowed, _ = store.CheckRateLimit(ctx, "login:v1", 2, time.Minute)
		assert.True(t, allowed)
		allowed, _ = store.CheckRateLimit(ctx, "login:v1", 2, time.Minute)
		assert.False(t, allowed)

		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		defer func() { store.now = time.Now }()
		allowed, _ = store.CheckRateLimit(ctx, "login:v1", 2, time.Minute)
		assert.True(t, allowed)
	})
}

func TestCredentialStore_Expiry(t *testing.T) {
	store := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "v1", "token", "abc"))

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	got, err := store.Get(ctx, "v1", "token")
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestJanitor_StopsOnCancel(t *testing.T) {
	store := setupTestStore(t, time.Hour)
	logger := zerolog.Nop()
	j := NewJanitor(store, 10*time.Millisecond, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
