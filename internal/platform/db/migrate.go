package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schema is applied idempotently when auto-migration is enabled.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS produtos (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(12,2) NOT NULL DEFAULT 0,
		quantity    INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the tables the service needs inside a single transaction.
func Migrate(ctx context.Context, db TxBeginner) error {
	return WithTx(ctx, db, func(tx pgx.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: migrate step %d: %w", i+1, err)
			}
		}
		return nil
	})
}
