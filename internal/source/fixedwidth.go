package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/tally/internal/table"
)

// ReadOptions limits how much of a data file is read.
type ReadOptions struct {
	// MaxRows stops reading after this many records. 0 reads everything.
	MaxRows int
}

// ReadFixedWidth decodes fixed-width records described by dict.
//
// Cells are cut by byte span. Spans past the end of a short line are blank.
// Blank cells become table.Missing. Integer and float cells that fail to
// parse are an error naming the line and column. Empty lines are skipped.
func ReadFixedWidth(name string, r io.Reader, dict *Dictionary, opts ReadOptions) (*table.Table, error) {
	t, err := table.New(name, dict.Names()...)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := make([]table.Value, len(dict.Columns))
		for i, col := range dict.Columns {
			v, err := decodeCell(cut(line, col), col.Type)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", name, lineNo, col.Name, err)
			}
			values[i] = v
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
		if opts.MaxRows > 0 && t.Len() >= opts.MaxRows {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: read: %w", name, err)
	}
	return t, nil
}

// cut returns the span of line covered by col.
func cut(line string, col Column) string {
	start := col.Start - 1
	if start >= len(line) {
		return ""
	}
	if col.Width == 0 {
		return line[start:]
	}
	end := start + col.Width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func decodeCell(raw string, ct ColumnType) (table.Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return table.Missing{}, nil
	}
	switch ct {
	case TypeInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return table.Int(n), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return table.Float(f), nil
	default:
		return table.String(s), nil
	}
}
