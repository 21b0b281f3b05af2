package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rentlink-backend/internal/logger"
)

// listings is owned by the listing service. It is declared here only so a
// fresh database has the columns this core reads.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id           TEXT PRIMARY KEY,
		owner_id     TEXT NOT NULL,
		type         TEXT NOT NULL CHECK (type IN ('ITEM', 'SERVICE')),
		status       TEXT NOT NULL CHECK (status IN ('ACTIVE', 'PAUSED')),
		price_cents  BIGINT NOT NULL CHECK (price_cents >= 0),
		billing_unit TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rental_requests (
		id               TEXT PRIMARY KEY,
		listing_id       TEXT NOT NULL,
		lender_id        TEXT NOT NULL,
		borrower_id      TEXT NOT NULL,
		start_date       TIMESTAMPTZ NOT NULL,
		end_date         TIMESTAMPTZ NOT NULL,
		message          TEXT NOT NULL DEFAULT '',
		guest_count      INTEGER CHECK (guest_count >= 1),
		status           TEXT NOT NULL DEFAULT 'PENDING',
		rejection_reason TEXT NOT NULL DEFAULT '',
		created_on       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_on       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT rental_requests_range_check CHECK (start_date < end_date),
		CONSTRAINT rental_requests_parties_check CHECK (borrower_id <> lender_id),
		CONSTRAINT rental_requests_listing_borrower_range_key UNIQUE (listing_id, borrower_id, start_date, end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS rental_requests_lender_idx ON rental_requests (lender_id, created_on DESC)`,
	`CREATE INDEX IF NOT EXISTS rental_requests_borrower_idx ON rental_requests (borrower_id, created_on DESC)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id                     TEXT PRIMARY KEY,
		listing_id             TEXT NOT NULL,
		lender_id              TEXT NOT NULL,
		borrower_id            TEXT NOT NULL,
		rental_request_id      TEXT NOT NULL REFERENCES rental_requests (id),
		start_date             TIMESTAMPTZ NOT NULL,
		end_date               TIMESTAMPTZ NOT NULL,
		price_at_booking_cents BIGINT NOT NULL CHECK (price_at_booking_cents >= 0),
		billing_unit           TEXT NOT NULL,
		guest_count            INTEGER NOT NULL DEFAULT 1,
		total_amount_cents     BIGINT NOT NULL CHECK (total_amount_cents >= 0),
		status                 TEXT NOT NULL DEFAULT 'ACTIVE',
		cancelled_by           TEXT,
		cancellation_reason    TEXT NOT NULL DEFAULT '',
		created_on             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_on             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT rentals_rental_request_id_key UNIQUE (rental_request_id),
		CONSTRAINT rentals_range_check CHECK (start_date < end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS rentals_listing_active_idx ON rentals (listing_id, start_date) WHERE status = 'ACTIVE'`,
}

// Migrate applies the schema idempotently.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info("Database schema up to date", "statements", len(migrations))
	return nil
}
