package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tally/internal/check"
)

// Run is one recorded check execution.
type Run struct {
	ID                string        `json:"id"`
	Seq               int64         `json:"seq"`
	CheckName         string        `json:"check"`
	PlanFingerprint   string        `json:"plan_fingerprint"`
	ResultFingerprint string        `json:"result_fingerprint"`
	Options           check.Options `json:"-"`
	Result            check.Result  `json:"result"`
	CreatedAt         string        `json:"created_at"`
}

// WriteRun records a run and its mismatches in one transaction.
//
// Writing a run whose ID already exists is a no-op. When run.Seq is zero the
// next logical sequence number is assigned and stored back into run.
func (s *Store) WriteRun(ctx context.Context, run *Run) error {
	optsJSON, err := marshalOptions(run.Options)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if exists > 0 {
		return nil
	}

	seq := run.Seq
	if seq == 0 {
		if seq, err = nextSeq(ctx, tx); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, check_name, plan_fingerprint, result_fingerprint, options,
		 pass, mode, detail_rows, summary_rows, group_count, checked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.CheckName,
		run.PlanFingerprint,
		run.ResultFingerprint,
		optsJSON,
		boolToInt(run.Result.Pass),
		string(run.Result.Mode),
		run.Result.DetailRows,
		run.Result.SummaryRows,
		run.Result.Groups,
		run.Result.Checked,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for i, m := range run.Result.Mismatches {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO mismatches
			(run_id, ordinal, identifier, observed, declared, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, m.Identifier, m.Observed, m.Declared, m.Position)
		if err != nil {
			return fmt.Errorf("write mismatch %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	run.Seq = seq
	return nil
}

func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
