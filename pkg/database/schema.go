package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaSQL is the full camp schema. Participant sequence numbers are padded
// to at least three digits and never truncated (BT001, BT999, BT1000). Every statement is idempotent so it can
// be re-applied to an existing database.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS editions (
	id BIGSERIAL PRIMARY KEY,
	year INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	event_location TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (end_date >= start_date)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_editions_single_active ON editions(is_active) WHERE is_active;

CREATE TABLE IF NOT EXISTS registrations (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	age TEXT NOT NULL,
	grade TEXT NOT NULL,
	gender TEXT NOT NULL,
	church TEXT NOT NULL,
	participant_location TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	participant_id TEXT UNIQUE,
	edition_id BIGINT REFERENCES editions(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_registrations_edition ON registrations(edition_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_registrations_phone ON registrations(phone);

CREATE TABLE IF NOT EXISTS tshirt_orders (
	id UUID PRIMARY KEY,
	registration_id UUID NOT NULL REFERENCES registrations(id),
	edition_id BIGINT NOT NULL REFERENCES editions(id),
	size TEXT NOT NULL CHECK (size IN ('S', 'M', 'L', 'XL')),
	quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 10),
	payment_reference TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'verified', 'cancelled')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tshirt_orders_pending ON tshirt_orders(payment_reference) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	last_login TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id UUID PRIMARY KEY,
	user_id UUID,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	resource_id TEXT,
	old_values JSONB,
	new_values JSONB,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS participant_id_counters (
	year TEXT PRIMARY KEY,
	last_seq INTEGER NOT NULL DEFAULT 0
);

CREATE OR REPLACE FUNCTION generate_participant_id(p_year TEXT) RETURNS TEXT AS $$
DECLARE
	next_seq INTEGER;
BEGIN
	INSERT INTO participant_id_counters (year, last_seq) VALUES (p_year, 1)
	ON CONFLICT (year) DO UPDATE SET last_seq = participant_id_counters.last_seq + 1
	RETURNING last_seq INTO next_seq;
	RETURN 'BT' || LPAD(next_seq::TEXT, GREATEST(3, LENGTH(next_seq::TEXT)), '0') || '/' || p_year;
END;
$$ LANGUAGE plpgsql;
`

// ApplySchema creates or refreshes the camp tables and the participant id
// generator in a single transaction.
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply schema: %w", err)
	}
	return tx.Commit()
}
