package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"jobhunt-harvester/internal/domain"
)

var ErrRunNotFound = errors.New("store: run not found")

// SaveRun writes a run and its listings in one transaction. Saving the
// same run ID twice replaces the earlier copy.
func (d *DB) SaveRun(ctx context.Context, r domain.Run) error {
	if r.ID == "" {
		return eris.New("store: run has no id")
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin save run")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE run_id = ?;`, r.ID); err != nil {
		return eris.Wrap(err, "store: clear listings")
	}
	if _, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO runs (id, query, location, started_at, finished_at, stop_reason, pages, listings, detail_faults, output_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ID, r.Query, r.Location, fmtTime(r.StartedAt), fmtTime(r.FinishedAt),
		r.StopReason, r.Pages, len(r.Listings), r.Faults, r.OutputPath,
	); err != nil {
		return eris.Wrap(err, "store: insert run")
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO listings (run_id, position, source_id, title, company, raw_location, city, state,
  pay_min, pay_max, pay_unit, employment_type, valid_through, apply_url, detail_url, description, detail_failed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return eris.Wrap(err, "store: prepare listing insert")
	}
	defer stmt.Close()

	for i, l := range r.Listings {
		if _, err := stmt.ExecContext(ctx,
			r.ID, i+1, l.SourceID, l.Title, l.Company, l.RawLocation, l.City, l.State,
			l.Pay.Min, l.Pay.Max, string(l.Pay.Unit), string(l.EmploymentType), l.ValidThrough,
			l.ApplyURL, l.DetailURL, l.Description, l.DetailFailed,
		); err != nil {
			return eris.Wrapf(err, "store: insert listing %d", i+1)
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit run")
}

// ListRuns returns the newest runs first. Listings holds only the count;
// use RunListings for the records.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, query, location, started_at, finished_at, stop_reason, pages, listings, detail_faults, output_path
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, eris.Wrap(rows.Err(), "store: list runs")
}

func (d *DB) GetRun(ctx context.Context, id string) (RunSummary, error) {
	row := d.Pool.QueryRowContext(ctx, `
SELECT id, query, location, started_at, finished_at, stop_reason, pages, listings, detail_faults, output_path
FROM runs WHERE id = ?;`, id)
	s, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, ErrRunNotFound
	}
	return s, err
}

// RunListings returns a run's listings in discovery order.
func (d *DB) RunListings(ctx context.Context, runID string) ([]domain.EnrichedListing, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT source_id, title, company, raw_location, city, state, pay_min, pay_max, pay_unit,
  employment_type, valid_through, apply_url, detail_url, description, detail_failed
FROM listings
WHERE run_id = ?
ORDER BY position;`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "store: run listings")
	}
	defer rows.Close()

	out := []domain.EnrichedListing{}
	for rows.Next() {
		var l domain.EnrichedListing
		var unit, etype string
		if err := rows.Scan(
			&l.SourceID, &l.Title, &l.Company, &l.RawLocation, &l.City, &l.State,
			&l.Pay.Min, &l.Pay.Max, &unit, &etype, &l.ValidThrough,
			&l.ApplyURL, &l.DetailURL, &l.Description, &l.DetailFailed,
		); err != nil {
			return nil, eris.Wrap(err, "store: scan listing")
		}
		l.Pay.Unit = domain.PayUnit(unit)
		l.EmploymentType = domain.EmploymentType(etype)
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "store: run listings")
}

// CleanupOldRuns deletes runs started before now-maxAge, with their
// listings.
func (d *DB) CleanupOldRuns(ctx context.Context, maxAge time.Duration) (deleted int64, err error) {
	cutoff := fmtTime(time.Now().Add(-maxAge))

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "store: begin cleanup")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
DELETE FROM listings WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?);`, cutoff); err != nil {
		return 0, eris.Wrap(err, "store: cleanup listings")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "store: cleanup runs")
	}
	n, _ := res.RowsAffected()
	return n, eris.Wrap(tx.Commit(), "store: commit cleanup")
}

// RunSummary is a runs row.
type RunSummary struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	Location     string    `json:"location"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	StopReason   string    `json:"stopReason"`
	Pages        int       `json:"pages"`
	Listings     int       `json:"listings"`
	DetailFaults int       `json:"detailFaults"`
	OutputPath   string    `json:"outputPath"`
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunSummary, error) {
	var r RunSummary
	var started, finished string
	if err := s.Scan(&r.ID, &r.Query, &r.Location, &started, &finished,
		&r.StopReason, &r.Pages, &r.Listings, &r.DetailFaults, &r.OutputPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, eris.Wrap(err, "store: scan run")
	}
	r.StartedAt, _ = time.Parse(timeLayout, started)
	r.FinishedAt, _ = time.Parse(timeLayout, finished)
	return r, nil
}

// Fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
