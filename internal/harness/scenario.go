package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tally/internal/check"
)

// Scenario defines a conformance test scenario: two tables, the options to
// check them with and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Detail  TableDef `yaml:"detail"`
	Summary TableDef `yaml:"summary"`

	Options OptionsDef `yaml:"options"`

	Expect Expectation `yaml:"expect"`

	// Assertions are evaluated after the expect clause.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// TableDef is an inline table or a reference to a data file.
type TableDef struct {
	Name    string   `yaml:"name,omitempty"`
	Columns []string `yaml:"columns,omitempty"`
	Rows    [][]any `yaml:"rows,omitempty"`

	// Data, Format and Dictionary load the table from a file instead.
	Data       string `yaml:"data,omitempty"`
	Format     string `yaml:"format,omitempty"`
	Dictionary string `yaml:"dictionary,omitempty"`
}

// Inline reports whether the table is given by columns and rows.
func (d TableDef) Inline() bool {
	return d.Data == ""
}

// OptionsDef mirrors check.Options.
type OptionsDef struct {
	Key        string `yaml:"key"`
	SummaryKey string `yaml:"summary_key,omitempty"`
	Count      string `yaml:"count"`
	Mode       string `yaml:"mode,omitempty"`
}

// CheckOptions converts the definition.
func (o OptionsDef) CheckOptions() check.Options {
	return check.Options{
		Key:        o.Key,
		SummaryKey: o.SummaryKey,
		Count:      o.Count,
		Mode:       check.Mode(o.Mode),
	}
}

// Expectation is the expected outcome of a scenario.
type Expectation struct {
	// Pass is required unless Error is set.
	Pass *bool `yaml:"pass,omitempty"`

	// Error, when set, is a substring of the error the checker must return.
	Error string `yaml:"error,omitempty"`

	// Mismatches, when set, must equal the reported mismatches in order.
	Mismatches []ExpectedMismatch `yaml:"mismatches,omitempty"`
}

// ExpectedMismatch is one expected diagnostic.
type ExpectedMismatch struct {
	Identifier string `yaml:"identifier"`
	Observed   int    `yaml:"observed"`
	Declared   int64  `yaml:"declared"`
}

// Assertion validates the outcome beyond the expect clause.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Identifier is used by reports and not_reported.
	Identifier string `yaml:"identifier,omitempty"`

	// Identifiers is used by diagnostic_order.
	Identifiers []string `yaml:"identifiers,omitempty"`

	// Count is used by mismatch_count and checked.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMismatchCount   = "mismatch_count"
	AssertReports         = "reports"
	AssertNotReported     = "not_reported"
	AssertDiagnosticOrder = "diagnostic_order"
	AssertChecked         = "checked"
)

// LoadScenario reads and parses a scenario YAML file. Data file paths are
// resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	scenario.Detail.resolve(base)
	scenario.Summary.resolve(base)

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario without resolving or checking data paths.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func (d *TableDef) resolve(base string) {
	for _, p := range []*string{&d.Data, &d.Dictionary} {
		if *p != "" && !filepath.IsAbs(*p) && !strings.Contains(*p, "://") {
			*p = filepath.Join(base, *p)
		}
	}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := validateTable("detail", s.Detail); err != nil {
		return err
	}
	if err := validateTable("summary", s.Summary); err != nil {
		return err
	}
	if s.Options.Key == "" {
		return fmt.Errorf("options.key is required")
	}
	if s.Options.Count == "" {
		return fmt.Errorf("options.count is required")
	}
	if _, err := check.ParseMode(s.Options.Mode); err != nil {
		return fmt.Errorf("options.mode: %w", err)
	}
	if s.Expect.Pass == nil && s.Expect.Error == "" {
		return fmt.Errorf("expect.pass is required")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateTable(field string, d TableDef) error {
	if !d.Inline() {
		if len(d.Columns) > 0 || len(d.Rows) > 0 {
			return fmt.Errorf("%s: data cannot be combined with columns or rows", field)
		}
		if _, err := os.Stat(d.Data); os.IsNotExist(err) && !strings.Contains(d.Data, "://") {
			return fmt.Errorf("%s: data file not found: %s", field, d.Data)
		}
		return nil
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s: columns list is required and must be non-empty", field)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("%s.rows[%d]: has %d values, want %d", field, i, len(row), len(d.Columns))
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertReports, AssertNotReported:
		if a.Identifier == "" {
			return fmt.Errorf("assertions[%d]: identifier is required for %s", index, a.Type)
		}
	case AssertDiagnosticOrder:
		if len(a.Identifiers) == 0 {
			return fmt.Errorf("assertions[%d]: identifiers list is required for diagnostic_order", index)
		}
	case AssertMismatchCount, AssertChecked:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
