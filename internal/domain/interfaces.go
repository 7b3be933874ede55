package domain

import (
	"context"
	"time"
)

// CredentialRepository persists per-visitor key/value pairs such as
// tokens and the signed-in principal. Get returns "" for a missing key.
type CredentialRepository interface {
	Get(ctx context.Context, visitor, key string) (string, error)
	Set(ctx context.Context, visitor, key, value string) error
	Delete(ctx context.Context, visitor string, keys ...string) error
	CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error)
}

// HealthChecker is implemented by repositories backed by a remote store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
