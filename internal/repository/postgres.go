package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// train_id carries no foreign key: deleting a train leaves its bookings in place.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS trains (
	id             TEXT PRIMARY KEY,
	train_number   TEXT NOT NULL UNIQUE,
	train_name     TEXT NOT NULL,
	source         TEXT NOT NULL,
	destination    TEXT NOT NULL,
	departure_time TEXT NOT NULL,
	arrival_time   TEXT NOT NULL,
	frequency      TEXT NOT NULL DEFAULT 'daily',
	base_price     DOUBLE PRECISION NOT NULL,
	total_seats    INTEGER NOT NULL,
	status         TEXT NOT NULL DEFAULT 'active',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id           TEXT PRIMARY KEY,
	pnr          TEXT NOT NULL UNIQUE,
	train_id     TEXT NOT NULL,
	customer_id  TEXT NOT NULL DEFAULT '',
	passengers   JSONB NOT NULL,
	contact_info JSONB NOT NULL DEFAULT '{}'::jsonb,
	booking_date TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	total_fare   DOUBLE PRECISION NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_customer_idx ON bookings (customer_id, booking_date DESC);
`

// EnsurePostgresSchema creates the tables when they are missing.
func EnsurePostgresSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return storeError("create schema", err)
	}
	return nil
}
