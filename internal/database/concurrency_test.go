package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentLoginAttempts(t *testing.T) {
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "concurrency.db"), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	const (
		attempts = 10
		limit    = 3
	)
	var wg sync.WaitGroup
	wg.Add(attempts)

	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			allowed, err := store.CheckRateLimit(ctx, "login:customer:v1", limit, time.Minute)
			assert.NoError(t, err)
			results <- allowed
		}()
	}

	wg.Wait()
	close(results)

	allowedCount := 0
	for allowed := range results {
		if allowed {
			allowedCount++
		}
	}
	assert.Equal(t, limit, allowedCount, "only the first attempts within the window pass")
}

func TestConcurrentVisitorWrites(t *testing.T) {
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "writes.db"), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	visitors := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for _, v := range visitors {
		wg.Add(1)
		go func(visitor string) {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, visitor, "token", "tok-"+visitor))
			assert.NoError(t, store.Set(ctx, visitor, "refreshToken", "ref-"+visitor))
		}(v)
	}
	wg.Wait()

	for _, v := range visitors {
		got, err := store.Get(ctx, v, "token")
		require.NoError(t, err)
		assert.Equal(t, "tok-"+v, got)
	}
}
