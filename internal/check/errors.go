package check

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn indicates a key or count field is not a table column.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMissingIdentifier indicates a record has an empty identifier cell.
	ErrMissingIdentifier = errors.New("missing identifier")

	// ErrInvalidCount indicates a declared count is missing or not an integer.
	ErrInvalidCount = errors.New("invalid declared count")
)

// FieldError locates a data problem at a table column and, when known, a
// record position.
type FieldError struct {
	Table    string
	Field    string
	Position int // -1 when the error concerns the column itself
	Err      error
}

func (e *FieldError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("table %s: field %q: %v", e.Table, e.Field, e.Err)
	}
	return fmt.Sprintf("table %s: record %d: field %q: %v", e.Table, e.Position, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
