package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
)

// RecordRun stores a finished run and its reports in one transaction and
// returns the stored run. Reports are stored in Results.Sorted order.
func (s *Store) RecordRun(ctx context.Context, in Input) (*Run, error) {
	results := in.Results
	if failed, ok := check.AsFailed(in.Err); ok {
		results = failed.Results
	}
	reports := results.Sorted()

	run := &Run{
		ID:        s.ids.NewID(),
		StartedAt: s.now().UTC().Truncate(time.Millisecond),
		Paths:     orEmpty(in.Paths),
		Checks:    orEmpty(in.Checks),
		Outcome:   OutcomeOf(in.Err),
		Counts:    map[string]int{},
	}
	if in.Err != nil && run.Outcome != OutcomeFailed {
		run.Error = in.Err.Error()
	}
	for _, r := range reports {
		run.Counts[r.Severity.String()]++
	}

	pathsJSON, err := marshalJSON(run.Paths)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	checksJSON, err := marshalJSON(run.Checks)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	countsJSON, err := marshalJSON(run.Counts)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return nil, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, started_at, paths, checks, outcome, error, counts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.StartedAt.Format(time.RFC3339Nano),
		pathsJSON,
		checksJSON,
		string(run.Outcome),
		run.Error,
		countsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("record run: insert run: %w", err)
	}

	for i, r := range reports {
		dataJSON := "{}"
		if len(r.Data) > 0 {
			if dataJSON, err = marshalJSON(r.Data); err != nil {
				return nil, fmt.Errorf("record run: report %d: %w", i, err)
			}
		}
		pos := r.Pos()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reports (run_id, idx, checker, severity, message, file, line, col, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, i, r.Checker, r.Severity.String(), r.Message,
			pos.File, pos.Line, pos.Column, dataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("record run: insert report %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
