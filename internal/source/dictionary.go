package source

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ColumnType is the value type a dictionary assigns to a column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
)

// stataTypes maps Stata storage types to column types. str* is handled
// separately.
var stataTypes = map[string]ColumnType{
	"byte":    TypeInteger,
	"int":     TypeInteger,
	"long":    TypeInteger,
	"float":   TypeFloat,
	"double":  TypeFloat,
	"numeric": TypeFloat,
}

// Column describes one fixed-width column.
type Column struct {
	Name  string     // lower-cased variable name
	Type  ColumnType // value type
	Start int        // 1-based start column
	Width int        // width in characters; 0 means "to end of line"
	Label string     // descriptive label, quotes removed
}

// Dictionary is an ordered list of fixed-width columns.
type Dictionary struct {
	Columns []Column
}

// Names returns the column names in dictionary order.
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

var (
	columnRe = regexp.MustCompile(`_column\(\s*(\d+)\s*\)`)
	formatRe = regexp.MustCompile(`^%(\d+)`)
)

// ParseDictionary reads a Stata infile dictionary.
//
// Only lines containing _column(N) are significant:
//
//	_column(1)  str12  caseid  %12s  "RESPONDENT ID NUMBER"
//
// Width is taken from the display format. When the format carries no width
// the column extends to the next column's start (or the end of the line for
// the last column).
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	dict := &Dictionary{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		m := columnRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		start, err := strconv.Atoi(line[m[2]:m[3]])
		if err != nil || start < 1 {
			return nil, fmt.Errorf("dictionary line %d: invalid column start %q", lineNo, line[m[2]:m[3]])
		}

		fields := strings.Fields(line[m[1]:])
		if len(fields) < 3 {
			return nil, fmt.Errorf("dictionary line %d: want type, name and format after _column", lineNo)
		}
		vtype, name, format := fields[0], fields[1], fields[2]

		ct, err := columnType(vtype)
		if err != nil {
			return nil, fmt.Errorf("dictionary line %d: %w", lineNo, err)
		}

		width := 0
		if fm := formatRe.FindStringSubmatch(format); fm != nil {
			width, _ = strconv.Atoi(fm[1])
		}

		dict.Columns = append(dict.Columns, Column{
			Name:  strings.ToLower(name),
			Type:  ct,
			Start: start,
			Width: width,
			Label: strings.Trim(strings.Join(fields[3:], " "), `"`),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if len(dict.Columns) == 0 {
		return nil, fmt.Errorf("dictionary has no _column entries")
	}

	// Fill missing widths from the next start.
	for i := range dict.Columns {
		if dict.Columns[i].Width > 0 || i == len(dict.Columns)-1 {
			continue
		}
		w := dict.Columns[i+1].Start - dict.Columns[i].Start
		if w <= 0 {
			return nil, fmt.Errorf("dictionary column %s: cannot infer width", dict.Columns[i].Name)
		}
		dict.Columns[i].Width = w
	}
	return dict, nil
}

func columnType(vtype string) (ColumnType, error) {
	if strings.HasPrefix(vtype, "str") {
		return TypeString, nil
	}
	if ct, ok := stataTypes[vtype]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("unsupported storage type %q", vtype)
}
