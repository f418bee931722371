package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
)

var schemaV1 = []string{`
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  query TEXT NOT NULL,
  location TEXT NOT NULL,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  stop_reason TEXT NOT NULL,
  pages INTEGER NOT NULL DEFAULT 0,
  listings INTEGER NOT NULL DEFAULT 0,
  detail_faults INTEGER NOT NULL DEFAULT 0,
  output_path TEXT NOT NULL DEFAULT ''
);`, `
CREATE TABLE IF NOT EXISTS listings (
  run_id TEXT NOT NULL REFERENCES runs(id),
  position INTEGER NOT NULL,
  source_id TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  raw_location TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pay_min TEXT NOT NULL,
  pay_max TEXT NOT NULL,
  pay_unit TEXT NOT NULL,
  employment_type TEXT NOT NULL,
  valid_through TEXT NOT NULL,
  apply_url TEXT NOT NULL,
  detail_url TEXT NOT NULL,
  description TEXT NOT NULL,
  detail_failed INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (run_id, position)
);`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	`CREATE INDEX IF NOT EXISTS idx_listings_source_id ON listings(source_id);`,
}

// Migrate brings the schema up to date, tracked by PRAGMA user_version.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin migrate")
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return eris.Wrap(err, "store: read user_version")
	}
	if v >= 1 {
		return tx.Commit()
	}

	for _, stmt := range schemaV1 {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "store: apply schema v1")
		}
	}
	if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
		return eris.Wrap(err, "store: set user_version")
	}
	return eris.Wrap(tx.Commit(), "store: commit migrate")
}
