package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tally/internal/check"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	CheckName string
	Limit     int
}

const runColumns = `id, seq, check_name, plan_fingerprint, result_fingerprint, options,
	pass, mode, detail_rows, summary_rows, group_count, checked, created_at`

// GetRun retrieves a single run and its mismatches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if run.Result.Mismatches, err = s.readMismatches(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first: ORDER BY seq DESC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if filter.CheckName != "" {
		where = append(where, "check_name = ?")
		args = append(args, filter.CheckName)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC, id COLLATE BINARY ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	// Mismatches are read after the cursor closes; the pool holds one connection.
	for i := range runs {
		if runs[i].Result.Mismatches, err = s.readMismatches(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) readMismatches(ctx context.Context, runID string) ([]check.Mismatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, observed, declared, position
		FROM mismatches
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query mismatches: %w", err)
	}
	defer rows.Close()

	mismatches := []check.Mismatch{}
	for rows.Next() {
		var m check.Mismatch
		if err := rows.Scan(&m.Identifier, &m.Observed, &m.Declared, &m.Position); err != nil {
			return nil, fmt.Errorf("scan mismatch: %w", err)
		}
		mismatches = append(mismatches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mismatches: %w", err)
	}
	return mismatches, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run      Run
		optsJSON string
		pass     int
		mode     string
	)
	err := sc.Scan(
		&run.ID,
		&run.Seq,
		&run.CheckName,
		&run.PlanFingerprint,
		&run.ResultFingerprint,
		&optsJSON,
		&pass,
		&mode,
		&run.Result.DetailRows,
		&run.Result.SummaryRows,
		&run.Result.Groups,
		&run.Result.Checked,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.Result.Pass = pass == 1
	run.Result.Mode = check.Mode(mode)
	if run.Options, err = unmarshalOptions(optsJSON); err != nil {
		return nil, err
	}
	return &run, nil
}
