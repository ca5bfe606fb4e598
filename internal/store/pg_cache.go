package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createTranslationCacheTable = `
	CREATE TABLE IF NOT EXISTS translation_cache (
		cache_key   TEXT PRIMARY KEY,
		translated  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at  TIMESTAMPTZ NOT NULL
	)
`

// PGCache stores translations in Postgres. Entries expire and are only a cache.
type PGCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewPGCache creates a PGCache
func NewPGCache(db *sql.DB, ttl time.Duration) *PGCache {
	return &PGCache{db: db, ttl: ttl, now: time.Now}
}

// EnsureSchema creates the cache table if it does not exist
func (c *PGCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createTranslationCacheTable); err != nil {
		return fmt.Errorf("failed to create translation_cache table: %w", err)
	}
	return nil
}

// Get returns an unexpired cached value for key
func (c *PGCache) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT translated
		FROM translation_cache
		WHERE cache_key = $1 AND expires_at > $2
	`

	var translated string
	err := c.db.QueryRowContext(ctx, query, key, c.now()).Scan(&translated)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get translation %s: %w", key, err)
	}

	return translated, true, nil
}

// Set inserts or refreshes the cached value for key
func (c *PGCache) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO translation_cache (cache_key, translated, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			translated = EXCLUDED.translated,
			expires_at = EXCLUDED.expires_at
	`

	_, err := c.db.ExecContext(ctx, query, key, value, c.now().Add(c.ttl))
	if err != nil {
		return fmt.Errorf("failed to store translation %s: %w", key, err)
	}

	return nil
}

// DeleteExpired removes expired rows and returns how many were deleted
func (c *PGCache) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM translation_cache WHERE expires_at <= $1`, c.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired translations: %w", err)
	}
	return res.RowsAffected()
}
