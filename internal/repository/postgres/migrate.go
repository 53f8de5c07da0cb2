package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// The partial unique indexes are the exclusivity mechanism: at most one
// ACTIVE reservation and one ACTIVE trip can exist per user and per vehicle,
// enforced by the database regardless of how many writers race.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS wallets (
	user_id TEXT PRIMARY KEY REFERENCES users(id),
	balance DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS reservations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	vehicle_id TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_active_user
	ON reservations (user_id) WHERE status = 'ACTIVE';
CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_active_vehicle
	ON reservations (vehicle_id) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS trips (
	id             TEXT PRIMARY KEY,
	reservation_id TEXT NOT NULL UNIQUE,
	user_id        TEXT NOT NULL,
	vehicle_id     TEXT NOT NULL,
	vehicle_code   TEXT NOT NULL,
	status         TEXT NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	start_lat      DOUBLE PRECISION NOT NULL,
	start_lng      DOUBLE PRECISION NOT NULL,
	ended_at       TIMESTAMPTZ,
	end_lat        DOUBLE PRECISION,
	end_lng        DOUBLE PRECISION,
	distance_km    DOUBLE PRECISION,
	rating_stars   INT,
	rating_comment TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_trips_active_user
	ON trips (user_id) WHERE status = 'ACTIVE';
CREATE UNIQUE INDEX IF NOT EXISTS uq_trips_active_vehicle
	ON trips (vehicle_id) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	trip_id        TEXT,
	amount         DOUBLE PRECISION NOT NULL,
	card_amount    DOUBLE PRECISION NOT NULL DEFAULT 0,
	type           TEXT NOT NULL,
	method         TEXT NOT NULL,
	method_details TEXT NOT NULL DEFAULT '',
	balance_before DOUBLE PRECISION NOT NULL,
	balance_after  DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_wallet_tx_trip_charge
	ON wallet_transactions (trip_id) WHERE type = 'TRIP_CHARGE';

CREATE TABLE IF NOT EXISTS receipts (
	id              TEXT PRIMARY KEY,
	number          TEXT NOT NULL UNIQUE,
	trip_id         TEXT NOT NULL UNIQUE,
	user_id         TEXT NOT NULL,
	vehicle_code    TEXT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	ended_at        TIMESTAMPTZ NOT NULL,
	duration_min    INT NOT NULL,
	distance_km     DOUBLE PRECISION NOT NULL,
	start_lat       DOUBLE PRECISION NOT NULL,
	start_lng       DOUBLE PRECISION NOT NULL,
	end_lat         DOUBLE PRECISION NOT NULL,
	end_lng         DOUBLE PRECISION NOT NULL,
	base_cost       DOUBLE PRECISION NOT NULL,
	time_cost       DOUBLE PRECISION NOT NULL,
	total_cost      DOUBLE PRECISION NOT NULL,
	payment_method  TEXT NOT NULL,
	payment_details TEXT NOT NULL DEFAULT '',
	balance_before  DOUBLE PRECISION NOT NULL,
	balance_after   DOUBLE PRECISION NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
