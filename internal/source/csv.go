package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/tally/internal/table"
)

// ReadCSV decodes comma-separated records. The first row names the columns;
// header names are trimmed and lower-cased to match dictionary naming.
// Cells are typed with table.Parse.
func ReadCSV(name string, r io.Reader, opts ReadOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty csv, no header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}
	// The BOM some spreadsheet exports prepend to the first header.
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	t, err := table.New(name, columns...)
	if err != nil {
		return nil, err
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		values := make([]table.Value, len(record))
		for i, cell := range record {
			values[i] = table.Parse(cell)
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
		if opts.MaxRows > 0 && t.Len() >= opts.MaxRows {
			break
		}
	}
	return t, nil
}
