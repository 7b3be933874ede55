package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// CredentialStore keeps visitor credentials in an embedded sqlite file
// for single-node deployments without redis.
type CredentialStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewCredentialStore(path string, ttl time.Duration) (*CredentialStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &CredentialStore{db: db, ttl: ttl, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
            visitor TEXT NOT NULL,
            key TEXT NOT NULL,
            value TEXT NOT NULL,
            expires_at INTEGER NOT NULL DEFAULT 0,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (visitor, key)
        )`,
		`CREATE TABLE IF NOT EXISTS rate_limits (
            subject TEXT PRIMARY KEY,
            count INTEGER NOT NULL,
            expires_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_credentials_expires_at ON credentials(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (s *CredentialStore) Get(ctx context.Context, visitor, key string) (string, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM credentials WHERE visitor = ? AND key = ?`,
		visitor, key,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	if expiresAt > 0 && s.now().Unix() > expiresAt {
		return "", nil
	}
	return value, nil
}

func (s *CredentialStore) Set(ctx context.Context, visitor, key, value string) error {
	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl).Unix()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO credentials (visitor, key, value, expires_at, updated_at)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(visitor, key) DO UPDATE SET
            value = excluded.value,
            expires_at = excluded.expires_at,
            updated_at = CURRENT_TIMESTAMP`,
		visitor, key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, visitor string, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE visitor = ? AND key = ?`, visitor, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *CredentialStore) CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error) {
	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	var expiresAt int64
	err = tx.QueryRowContext(ctx, `SELECT count, expires_at FROM rate_limits WHERE subject = ?`, subject).Scan(&count, &expiresAt)
	switch {
	case err == sql.ErrNoRows || (err == nil && now.UnixNano() > expiresAt):
		count = 1
		expiresAt = now.Add(window).UnixNano()
	case err != nil:
		return false, fmt.Errorf("failed to read rate limit: %w", err)
	default:
		count++
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO rate_limits (subject, count, expires_at) VALUES (?, ?, ?)
        ON CONFLICT(subject) DO UPDATE SET count = excluded.count, expires_at = excluded.expires_at`,
		subject, count, expiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update rate limit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit rate limit: %w", err)
	}
	return count <= limit, nil
}

// PurgeExpired removes expired credentials and returns how many rows went.
func (s *CredentialStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE expires_at > 0 AND expires_at < ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge credentials: %w", err)
	}
	return res.RowsAffected()
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CredentialStore) Close() error {
	return s.db.Close()
}
