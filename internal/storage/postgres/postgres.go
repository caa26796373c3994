// Package postgres implements the user directory and the persisted
// notification store on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
    id             TEXT PRIMARY KEY,
    created        TIMESTAMPTZ NOT NULL,
    actor_user_id  TEXT NOT NULL,
    target_user_id TEXT NOT NULL,
    subject_id     TEXT NOT NULL DEFAULT '',
    action_type    SMALLINT NOT NULL DEFAULT 0,
    confirmed      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_notifications_target_created
    ON notifications (target_user_id, created DESC);
`

// Connect creates a pgxpool connection pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// ApplySchema creates the notifications table if missing. Idempotent. The
// users table belongs to the account service and is only read here.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
