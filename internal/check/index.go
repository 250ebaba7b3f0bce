package check

import (
	"slices"

	"github.com/roach88/tally/internal/table"
)

// Index maps an identifier to the ordered positions of the detail records
// that carry it.
type Index struct {
	field     string
	positions map[string][]int
	order     []string
}

// BuildIndex scans t once and groups record positions by the identifier in
// keyField. Positions within a group keep table order.
//
// Returns a *FieldError wrapping ErrUnknownColumn if keyField is not a
// column of t, or ErrMissingIdentifier if a record has no usable identifier.
func BuildIndex(t *table.Table, keyField string) (*Index, error) {
	if !t.HasColumn(keyField) {
		return nil, &FieldError{Table: t.Name, Field: keyField, Position: -1, Err: ErrUnknownColumn}
	}

	idx := &Index{
		field:     keyField,
		positions: make(map[string][]int),
	}
	for rec := range t.All() {
		v, _ := rec.Get(keyField)
		id, ok := table.Key(v)
		if !ok {
			return nil, &FieldError{Table: t.Name, Field: keyField, Position: rec.Position(), Err: ErrMissingIdentifier}
		}
		if _, seen := idx.positions[id]; !seen {
			idx.order = append(idx.order, id)
		}
		idx.positions[id] = append(idx.positions[id], rec.Position())
	}
	return idx, nil
}

// Field returns the detail column the index was built from.
func (idx *Index) Field() string {
	return idx.field
}

// Lookup returns the positions grouped under id.
// The boolean is false when id never occurred in the detail table.
func (idx *Index) Lookup(id string) ([]int, bool) {
	p, ok := idx.positions[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(p), true
}

// Count returns the number of detail records carrying id. Absent ids count 0.
func (idx *Index) Count(id string) int {
	return len(idx.positions[id])
}

// Keys returns identifiers in first-seen order.
func (idx *Index) Keys() []string {
	return slices.Clone(idx.order)
}

// Len returns the number of distinct identifiers.
func (idx *Index) Len() int {
	return len(idx.order)
}
