package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id          BIGINT PRIMARY KEY,
		session_id  BIGINT NOT NULL,
		model       TEXT NOT NULL,
		tone        TEXT NOT NULL DEFAULT '',
		register    TEXT NOT NULL DEFAULT 'none',
		scope_chars INTEGER NOT NULL,
		total_words INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		accuracy    INTEGER NOT NULL DEFAULT 100,
		status      TEXT NOT NULL,
		error       TEXT,
		stages      JSONB NOT NULL DEFAULT '[]'::jsonb,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_session_started_idx
		ON analysis_runs (session_id, started_at DESC)`,
}

// Migrate creates the tables used for run history if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	return db.WithTx(ctx, func(tx DBTX) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
		}
		return nil
	})
}
