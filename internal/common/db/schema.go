package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	seq           BIGSERIAL   NOT NULL,
	id            UUID        PRIMARY KEY,
	email         TEXT        NOT NULL UNIQUE,
	username      TEXT        NOT NULL,
	password_hash TEXT        NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS users_seq_idx ON users (seq);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to ensure users schema: %w", err)
	}
	return nil
}
