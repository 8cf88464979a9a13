package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id                TEXT PRIMARY KEY,
		guest_name        TEXT NOT NULL,
		guest_count       INT NOT NULL,
		plates            JSONB NOT NULL DEFAULT '[]'::jsonb,
		check_in_date     TEXT NOT NULL,
		parked_car_count  INT NOT NULL DEFAULT 0,
		contact           TEXT,
		table_number      TEXT,
		table_type        TEXT,
		table_count       INT,
		has_car           BOOLEAN NOT NULL DEFAULT false,
		seat_fee          BIGINT NOT NULL DEFAULT 0,
		deposit           BIGINT NOT NULL DEFAULT 0,
		total_cost        BIGINT NOT NULL DEFAULT 0,
		seq               BIGSERIAL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_reservations_seq ON reservations(seq);`,
	`CREATE TABLE IF NOT EXISTS admission_records (
		id              BIGSERIAL PRIMARY KEY,
		reservation_id  TEXT REFERENCES reservations(id),
		plate           TEXT NOT NULL,
		entry_time      TIMESTAMPTZ NOT NULL,
		fee_charged     BOOLEAN NOT NULL DEFAULT false,
		amount          BIGINT NOT NULL DEFAULT 0,
		handled_by      TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_admission_records_reservation_id ON admission_records(reservation_id);`,
	`CREATE INDEX IF NOT EXISTS idx_admission_records_entry_time ON admission_records(entry_time);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
