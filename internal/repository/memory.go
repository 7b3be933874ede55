package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type MemoryCredentialRepository struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryCredentialRepository(ttl time.Duration) *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		entries:    make(map[string]memoryEntry),
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryCredentialRepository) Get(ctx context.Context, visitor, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := credentialKey(visitor, key)
	e, ok := r.entries[k]
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && r.now().After(e.expiresAt) {
		delete(r.entries, k)
		return "", nil
	}
	return e.value, nil
}

func (r *MemoryCredentialRepository) Set(ctx context.Context, visitor, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := memoryEntry{value: value}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.entries[credentialKey(visitor, key)] = e
	return nil
}

func (r *MemoryCredentialRepository) Delete(ctx context.Context, visitor string, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.entries, credentialKey(visitor, k))
	}
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryCredentialRepository) CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[subject]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		r.rateLimits[subject] = entry
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
