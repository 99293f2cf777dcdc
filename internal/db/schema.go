package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS lots (
		lot_id    BIGSERIAL PRIMARY KEY,
		owner_id  BIGINT NOT NULL,
		location  TEXT NOT NULL,
		latitude  DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS spots (
		lot_id         BIGINT NOT NULL REFERENCES lots(lot_id) ON DELETE CASCADE,
		spot_id        INT NOT NULL,
		category       TEXT NOT NULL,
		price_per_hour DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (lot_id, spot_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id     BIGSERIAL PRIMARY KEY,
		code           TEXT NOT NULL UNIQUE,
		lot_id         BIGINT NOT NULL,
		spot_id        INT NOT NULL,
		user_id        BIGINT NOT NULL,
		start_time     TIMESTAMPTZ NOT NULL,
		end_time       TIMESTAMPTZ NOT NULL,
		price_per_hour DOUBLE PRECISION NOT NULL,
		total_cost     DOUBLE PRECISION NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		FOREIGN KEY (lot_id, spot_id) REFERENCES spots(lot_id, spot_id) ON DELETE CASCADE,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_spot_window
		ON bookings (lot_id, spot_id, start_time, end_time)`,
	`CREATE INDEX IF NOT EXISTS idx_lots_owner ON lots (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id)`,
}

// InitSchema creates the tables and indexes if they do not exist yet.
// Idempotent, runs at startup against every configured partition.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema statement: %w", err)
		}
	}
	return nil
}
