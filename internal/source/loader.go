package source

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/roach88/tally/internal/table"
)

// Format names a data layout.
type Format string

const (
	FormatFixed Format = "fixed"
	FormatCSV   Format = "csv"
)

// Spec describes one table to load.
type Spec struct {
	// Name labels the table in errors and reports. Defaults to the data
	// file's base name.
	Name string `json:"name,omitempty"`

	// Format is fixed or csv. Empty infers it from Data and Dictionary.
	Format Format `json:"format,omitempty"`

	// Data is the data file URI.
	Data string `json:"data"`

	// Dictionary is the Stata dictionary URI; required for fixed.
	Dictionary string `json:"dictionary,omitempty"`

	// MaxRows limits the number of records read. 0 reads everything.
	MaxRows int `json:"max_rows,omitempty"`
}

// ResolveFormat returns the effective format of s.
func (s Spec) ResolveFormat() (Format, error) {
	switch s.Format {
	case FormatFixed, FormatCSV:
		return s.Format, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q", s.Format)
	}
	base := strings.ToLower(strings.TrimSuffix(s.Data, ".gz"))
	if strings.HasSuffix(base, ".csv") {
		return FormatCSV, nil
	}
	if s.Dictionary != "" {
		return FormatFixed, nil
	}
	return "", fmt.Errorf("cannot infer format of %s: give a dictionary or use a .csv file", s.Data)
}

// TableName returns the name the loaded table will carry.
func (s Spec) TableName() string {
	if s.Name != "" {
		return s.Name
	}
	base := path.Base(strings.ReplaceAll(s.Data, "\\", "/"))
	for _, ext := range []string{".gz", ".dat", ".csv", ".txt"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Loader reads tables described by Specs.
type Loader struct {
	Opener *Opener
	Logger *slog.Logger
}

// NewLoader creates a loader with a default Opener.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Opener: &Opener{}, Logger: logger}
}

// Load reads the table described by spec fully into memory.
func (l *Loader) Load(ctx context.Context, spec Spec) (*table.Table, error) {
	if spec.Data == "" {
		return nil, fmt.Errorf("load: data location is required")
	}
	format, err := spec.ResolveFormat()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.Data, err)
	}
	name := spec.TableName()
	opts := ReadOptions{MaxRows: spec.MaxRows}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("loading table", "name", name, "format", format, "data", spec.Data)

	var t *table.Table
	switch format {
	case FormatFixed:
		if spec.Dictionary == "" {
			return nil, fmt.Errorf("load %s: fixed format requires a dictionary", spec.Data)
		}
		dict, err := l.loadDictionary(ctx, spec.Dictionary)
		if err != nil {
			return nil, err
		}
		rc, err := l.opener().OpenDecoded(ctx, spec.Data)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", spec.Data, err)
		}
		defer rc.Close()
		t, err = ReadFixedWidth(name, rc, dict, opts)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", spec.Data, err)
		}
	case FormatCSV:
		rc, err := l.opener().OpenDecoded(ctx, spec.Data)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", spec.Data, err)
		}
		defer rc.Close()
		t, err = ReadCSV(name, rc, opts)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", spec.Data, err)
		}
	}

	logger.Info("table loaded", "name", name, "records", t.Len(), "columns", len(t.Columns()))
	return t, nil
}

func (l *Loader) loadDictionary(ctx context.Context, uri string) (*Dictionary, error) {
	rc, err := l.opener().OpenDecoded(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", uri, err)
	}
	defer rc.Close()
	dict, err := ParseDictionary(rc)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", uri, err)
	}
	return dict, nil
}

func (l *Loader) opener() *Opener {
	if l.Opener == nil {
		l.Opener = &Opener{}
	}
	return l.Opener
}
