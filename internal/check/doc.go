// Package check cross-references a declared count in a summary table against
// the number of matching records in a detail table.
//
// The check runs in two passes:
//
//  1. BuildIndex scans the detail table once and groups record positions by
//     identifier, preserving insertion order.
//  2. Checker.Check scans the summary table once. For each record it looks up
//     the identifier (absent identifiers count as zero matches) and compares
//     the group size against the declared count.
//
// In FailFast mode the first mismatch stops the scan; CollectAll reports
// every mismatch in summary order. Each reported mismatch is also written as
// a diagnostic line "<identifier> <observed> <declared>".
//
// The checker is read-only. It never mutates either table.
package check
