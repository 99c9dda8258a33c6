package db

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS digests (
    id                SERIAL PRIMARY KEY,
    feed_url          TEXT NOT NULL,
    url               TEXT NOT NULL UNIQUE,
    title             TEXT NOT NULL DEFAULT '',
    summary           TEXT NOT NULL,
    method            VARCHAR(20) NOT NULL,
    sentence_count    INTEGER NOT NULL,
    compression_ratio DOUBLE PRECISION NOT NULL,
    published_at      TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_digests_published_at ON digests(published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_digests_feed_url ON digests(feed_url)`,
}

// MigrateUp creates the digest schema. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// MigrateDown drops the digest schema and all stored digests.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP INDEX IF EXISTS idx_digests_feed_url`,
		`DROP INDEX IF EXISTS idx_digests_published_at`,
		`DROP TABLE IF EXISTS digests`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
