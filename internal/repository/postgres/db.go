package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/frontdesk/internal/config"
)

func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id             UUID PRIMARY KEY,
	serial_number  TEXT NOT NULL UNIQUE,
	patient_name   TEXT NOT NULL,
	phone_number   TEXT NOT NULL,
	age            INTEGER NOT NULL,
	sex            TEXT NOT NULL,
	marital_status TEXT NOT NULL,
	problem        TEXT NOT NULL,
	times_of_visit INTEGER NOT NULL DEFAULT 1,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS appointments (
	id            UUID PRIMARY KEY,
	patient_id    UUID NOT NULL REFERENCES patients (id),
	patient_name  TEXT NOT NULL,
	patient_phone TEXT NOT NULL,
	"date"        DATE NOT NULL,
	"time"        TIME NOT NULL,
	duration      INTEGER NOT NULL DEFAULT 30 CHECK (duration > 0),
	notes         TEXT,
	status        TEXT NOT NULL DEFAULT 'scheduled',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS appointments_date_time_idx ON appointments ("date", "time");
`

// Migrate creates the tables when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
