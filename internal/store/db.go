package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id             UUID PRIMARY KEY,
		username       TEXT NOT NULL,
		mode           TEXT NOT NULL,
		start_cursor   BIGINT NOT NULL,
		final_cursor   BIGINT NOT NULL,
		comment_count  INTEGER NOT NULL,
		page_count     INTEGER NOT NULL,
		stop_reason    TEXT NOT NULL,
		upstream_error TEXT NOT NULL DEFAULT '',
		elapsed_ms     BIGINT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_harvest_runs_created ON harvest_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_harvest_runs_username ON harvest_runs(username);
`

// NewDB opens a Postgres connection pool and makes sure the schema exists.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
