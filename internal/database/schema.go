package database

import (
	"context"
	"fmt"
)

// schemaStatements create the tables used by the service. Every statement
// is idempotent so EnsureSchema can run on each deploy.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS properties (
		id                UUID PRIMARY KEY,
		owner_id          UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		owner_name        TEXT NOT NULL DEFAULT '',
		owner_phone       TEXT NOT NULL DEFAULT '',
		owner_email       TEXT NOT NULL DEFAULT '',
		address           TEXT NOT NULL DEFAULT '',
		property_category TEXT NOT NULL,
		usage_mode        TEXT NOT NULL,
		zone              TEXT NOT NULL DEFAULT '',
		built_up_area     DOUBLE PRECISION NOT NULL DEFAULT 0,
		construction_year INTEGER,
		base_rate         DOUBLE PRECISION NOT NULL,
		zone_multiplier   DOUBLE PRECISION NOT NULL,
		usage_multiplier  DOUBLE PRECISION NOT NULL,
		age_factor        DOUBLE PRECISION NOT NULL,
		final_tax_amount  BIGINT NOT NULL,
		formula_version   TEXT NOT NULL,
		payment_status    TEXT NOT NULL DEFAULT 'pending'
			CHECK (payment_status IN ('pending', 'paid')),
		payment_date      TIMESTAMPTZ,
		receipt_id        TEXT UNIQUE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK ((payment_status = 'paid') = (receipt_id IS NOT NULL AND payment_date IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS properties_owner_created_idx ON properties (owner_id, created_at DESC)`,
}

// EnsureSchema creates missing tables and indexes.
func (db *Database) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
