package repository

import (
	"context"
	"sync"
	"time"

	"farsha/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverCredentialRepository serves from primary until it fails, then
// from fallback. Recovery probes are spaced by the retry policy.
type FailoverCredentialRepository struct {
	primary  domain.CredentialRepository
	fallback domain.CredentialRepository
	logger   *zerolog.Logger
	policy   RetryPolicy

	mu        sync.Mutex
	down      bool
	failures  int
	nextProbe time.Time
	now       func() time.Time
}

func NewFailoverCredentialRepository(primary, fallback domain.CredentialRepository, policy RetryPolicy, logger *zerolog.Logger) *FailoverCredentialRepository {
	return &FailoverCredentialRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		policy:   policy,
		now:      time.Now,
	}
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverCredentialRepository) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.down || !r.now().Before(r.nextProbe)
}

func (r *FailoverCredentialRepository) markDown(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.down {
		r.logger.Error().Err(err).Msg("Primary credential repository failed, falling back to memory")
	}
	r.down = true
	r.failures++
	r.nextProbe = r.now().Add(r.policy.NextDelay(r.failures))
}

func (r *FailoverCredentialRepository) markUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		r.logger.Info().Int("failures", r.failures).Msg("Primary credential repository recovered")
	}
	r.down = false
	r.failures = 0
}

// IsDown reports whether calls are currently served by the fallback.
func (r *FailoverCredentialRepository) IsDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.down
}

func (r *FailoverCredentialRepository) Get(ctx context.Context, visitor, key string) (string, error) {
	if r.usePrimary() {
		val, err := r.primary.Get(ctx, visitor, key)
		if err == nil {
			r.markUp()
			return val, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, visitor, key)
}

func (r *FailoverCredentialRepository) Set(ctx context.Context, visitor, key, value string) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, visitor, key, value)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, visitor, key, value)
}

func (r *FailoverCredentialRepository) Delete(ctx context.Context, visitor string, keys ...string) error {
	// Fallback may hold keys written while primary was down.
	fbErr := r.fallback.Delete(ctx, visitor, keys...)
	if r.usePrimary() {
		err := r.primary.Delete(ctx, visitor, keys...)
		if err == nil {
			r.markUp()
			return fbErr
		}
		r.markDown(err)
	}
	return fbErr
}

func (r *FailoverCredentialRepository) CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, subject, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, subject, limit, window)
}

// Ping reports the primary's health when it supports checks.
func (r *FailoverCredentialRepository) Ping(ctx context.Context) error {
	if hc, ok := r.primary.(domain.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}
