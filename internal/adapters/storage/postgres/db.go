package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS zones (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS feeding_points (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		zone_id      TEXT NOT NULL,
		lat          DOUBLE PRECISION,
		lng          DOUBLE PRECISION,
		last_watered TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS cats (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		features      TEXT NOT NULL DEFAULT '',
		image_url     TEXT NOT NULL DEFAULT '',
		zone_id       TEXT NOT NULL DEFAULT '',
		point_id      TEXT NOT NULL,
		sub_point_ids JSONB NOT NULL DEFAULT '[]',
		status        TEXT NOT NULL DEFAULT 'unknown',
		status_at     TIMESTAMPTZ,
		last_fed      TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		role              TEXT NOT NULL DEFAULT 'general',
		phone_model       TEXT NOT NULL DEFAULT '',
		available_hours   TEXT NOT NULL DEFAULT '',
		contact_method    TEXT NOT NULL DEFAULT '',
		membership_expiry DATE
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id               TEXT PRIMARY KEY,
		cat_id           TEXT NOT NULL,
		reporter_id      TEXT NOT NULL DEFAULT '',
		fed              BOOLEAN NOT NULL,
		watered          BOOLEAN NOT NULL,
		condition        TEXT NOT NULL,
		notes            TEXT NOT NULL DEFAULT '',
		urgent_detail    TEXT NOT NULL DEFAULT '',
		urgent_photo     TEXT NOT NULL DEFAULT '',
		attention_detail TEXT NOT NULL DEFAULT '',
		ts_ms            BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reports_ts_ms_idx ON reports (ts_ms DESC)`,
}

// Migrate crea las tablas si no existen. Es idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
