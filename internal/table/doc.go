// Package table holds in-memory tabular data for cross-table checks.
//
// A Table is an ordered list of records over named columns. Records are
// addressed by their 0-based ordinal position, which is the position the
// consistency checker indexes. Tables are built once by a loader and are
// read-only afterwards.
//
// # Values
//
// Cells are one of four kinds:
//
//   - Missing: an empty cell (blank fixed-width span, empty CSV field)
//   - String: text, kept exactly as read
//   - Int: a 64-bit integer
//   - Float: a 64-bit float
//
// # Identifiers
//
// Key renders a cell as a grouping identifier. Strings are trimmed and NFC
// normalized; integers (and integral floats) render in base 10. This makes
// " 1" from a fixed-width span and 1 from a CSV column the same key.
package table
