package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

type rowScanner interface {
	Scan(dest ...any) error
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, seq, started_at, paths, checks, outcome, error, counts
		FROM runs
		ORDER BY seq DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, started_at, paths, checks, outcome, error, counts
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ReadReports returns a run's reports in stored order.
//
// Returns an empty slice (not nil) if the run has no reports.
func (s *Store) ReadReports(ctx context.Context, runID string) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, idx, checker, severity, message, file, line, col, data
		FROM reports
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := []Report{}
	for rows.Next() {
		var (
			r    Report
			data string
		)
		if err := rows.Scan(&r.RunID, &r.Index, &r.Checker, &r.Severity, &r.Message,
			&r.File, &r.Line, &r.Column, &data); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if r.Data, err = unmarshalData(data); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                      Run
		startedAt, paths, checks string
		outcome, counts          string
	)
	if err := row.Scan(&run.ID, &run.Seq, &startedAt, &paths, &checks, &outcome, &run.Error, &counts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.Paths, err = unmarshalStrings(paths); err != nil {
		return Run{}, err
	}
	if run.Checks, err = unmarshalStrings(checks); err != nil {
		return Run{}, err
	}
	if run.Counts, err = unmarshalCounts(counts); err != nil {
		return Run{}, err
	}
	run.Outcome = Outcome(outcome)
	return run, nil
}
