package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Janitor periodically purges expired credentials from the sqlite store.
type Janitor struct {
	store    *CredentialStore
	interval time.Duration
	logger   *zerolog.Logger
}

func NewJanitor(store *CredentialStore, interval time.Duration, logger *zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{store: store, interval: interval, logger: logger}
}

// Start blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info().Dur("interval", j.interval).Msg("Credential janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *Janitor) runOnce(ctx context.Context) {
	n, err := j.store.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("Credential purge failed")
		return
	}
	if n > 0 {
		j.logger.Info().Int64("rows", n).Msg("Expired credentials purged")
	}
}
