package check

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tally/internal/table"
)

// Mode controls how many mismatches a check reports.
type Mode string

const (
	// FailFast stops at the first mismatch.
	FailFast Mode = "fail_fast"
	// CollectAll scans the whole summary table and reports every mismatch.
	CollectAll Mode = "collect_all"
)

// ValidModes lists the accepted mode names.
var ValidModes = []Mode{FailFast, CollectAll}

// ParseMode converts a mode name. The empty string selects FailFast.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", FailFast:
		return FailFast, nil
	case CollectAll:
		return CollectAll, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be one of %v", s, ValidModes)
	}
}

// Options selects the fields a check compares.
type Options struct {
	// Key is the identifier column in the detail table.
	Key string

	// SummaryKey is the identifier column in the summary table.
	// Defaults to Key.
	SummaryKey string

	// Count is the declared-count column in the summary table.
	Count string

	// Mode defaults to FailFast.
	Mode Mode
}

func (o Options) summaryKey() string {
	if o.SummaryKey != "" {
		return o.SummaryKey
	}
	return o.Key
}

// Mismatch is a summary record whose declared count disagrees with the
// number of detail records sharing its identifier.
type Mismatch struct {
	Identifier string `json:"identifier"`
	Observed   int    `json:"observed"`
	Declared   int64  `json:"declared"`
	Position   int    `json:"position"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %d %d", m.Identifier, m.Observed, m.Declared)
}

// Result is the outcome of one check.
type Result struct {
	Pass        bool       `json:"pass"`
	Mode        Mode       `json:"mode"`
	DetailRows  int        `json:"detail_rows"`
	SummaryRows int        `json:"summary_rows"`
	Groups      int        `json:"groups"`
	Checked     int        `json:"checked"`
	Mismatches  []Mismatch `json:"mismatches"`
}

// Checker compares a summary table's declared counts against a detail table.
type Checker struct {
	Options Options

	// Diagnostics receives one line per reported mismatch. Nil discards.
	Diagnostics io.Writer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Check indexes detail by Options.Key and verifies every summary record.
//
// A mismatch is not an error: it is reported in the Result and written to
// Diagnostics. Errors are returned only for unusable input (unknown columns,
// empty identifiers, non-integer declared counts).
func (c *Checker) Check(detail, summary *table.Table) (*Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode, err := ParseMode(string(c.Options.Mode))
	if err != nil {
		return nil, err
	}

	summaryKey := c.Options.summaryKey()
	for _, field := range []string{summaryKey, c.Options.Count} {
		if !summary.HasColumn(field) {
			return nil, &FieldError{Table: summary.Name, Field: field, Position: -1, Err: ErrUnknownColumn}
		}
	}

	idx, err := BuildIndex(detail, c.Options.Key)
	if err != nil {
		return nil, err
	}
	logger.Debug("detail index built",
		"table", detail.Name,
		"field", c.Options.Key,
		"records", detail.Len(),
		"groups", idx.Len())

	result := &Result{
		Pass:        true,
		Mode:        mode,
		DetailRows:  detail.Len(),
		SummaryRows: summary.Len(),
		Groups:      idx.Len(),
		Mismatches:  []Mismatch{},
	}

	for rec := range summary.All() {
		idv, _ := rec.Get(summaryKey)
		id, ok := table.Key(idv)
		if !ok {
			return nil, &FieldError{Table: summary.Name, Field: summaryKey, Position: rec.Position(), Err: ErrMissingIdentifier}
		}
		cv, _ := rec.Get(c.Options.Count)
		declared, ok := table.AsInt(cv)
		if !ok {
			return nil, &FieldError{Table: summary.Name, Field: c.Options.Count, Position: rec.Position(), Err: ErrInvalidCount}
		}

		result.Checked++

		// Identifiers absent from the index count as zero matches.
		observed := idx.Count(id)
		if int64(observed) == declared {
			continue
		}

		m := Mismatch{
			Identifier: id,
			Observed:   observed,
			Declared:   declared,
			Position:   rec.Position(),
		}
		result.Pass = false
		result.Mismatches = append(result.Mismatches, m)
		if c.Diagnostics != nil {
			fmt.Fprintln(c.Diagnostics, m.String())
		}
		logger.Debug("count mismatch",
			"identifier", m.Identifier,
			"observed", m.Observed,
			"declared", m.Declared,
			"position", m.Position)

		if mode == FailFast {
			break
		}
	}

	return result, nil
}

// Validate runs a check and returns only pass/fail.
// Mismatches are written to w as "<identifier> <observed> <declared>".
func Validate(w io.Writer, detail, summary *table.Table, opts Options) (bool, error) {
	c := &Checker{Options: opts, Diagnostics: w}
	result, err := c.Check(detail, summary)
	if err != nil {
		return false, err
	}
	return result.Pass, nil
}
