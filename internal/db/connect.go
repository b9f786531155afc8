package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens the question-bank DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:questionbank.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/questionbank?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS question_rows (
  seq             INTEGER PRIMARY KEY AUTOINCREMENT,
  section         TEXT NOT NULL,
  question_number TEXT NOT NULL DEFAULT '',
  main_question   TEXT NOT NULL,
  sub_question    TEXT NOT NULL DEFAULT '',
  full_question   TEXT NOT NULL DEFAULT '',
  image_url       TEXT,
  solution        TEXT,
  option_1        TEXT, option_2 TEXT, option_3 TEXT, option_4 TEXT,
  feedback_1      TEXT, feedback_2 TEXT, feedback_3 TEXT, feedback_4 TEXT,
  correct_option  INTEGER,
  min_value       REAL,
  max_value       REAL,
  units           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_question_rows_section ON question_rows(section);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS question_rows (
  seq             BIGSERIAL PRIMARY KEY,
  section         TEXT NOT NULL,
  question_number TEXT NOT NULL DEFAULT '',
  main_question   TEXT NOT NULL,
  sub_question    TEXT NOT NULL DEFAULT '',
  full_question   TEXT NOT NULL DEFAULT '',
  image_url       TEXT,
  solution        TEXT,
  option_1        TEXT, option_2 TEXT, option_3 TEXT, option_4 TEXT,
  feedback_1      TEXT, feedback_2 TEXT, feedback_3 TEXT, feedback_4 TEXT,
  correct_option  INTEGER,
  min_value       DOUBLE PRECISION,
  max_value       DOUBLE PRECISION,
  units           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_question_rows_section ON question_rows(section);
`
