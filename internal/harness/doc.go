// Package harness runs table-driven conformance scenarios against the
// consistency checker.
//
// # Scenario Format
//
// Scenarios are YAML files. Tables are given inline or as data files
// resolved relative to the scenario file:
//
//	name: pregnum_mismatch
//	description: "declared count disagrees with pregnancy records"
//	detail:
//	  name: preg
//	  columns: [caseid]
//	  rows:
//	    - [1]
//	    - [1]
//	    - [2]
//	summary:
//	  data: resp.csv
//	options:
//	  key: caseid
//	  count: pregnum
//	  mode: fail_fast
//	expect:
//	  pass: false
//	  mismatches:
//	    - {identifier: "2", observed: 1, declared: 2}
//	assertions:
//	  - type: reports
//	    identifier: "2"
//
// # Assertion Types
//
//   - mismatch_count: exactly count mismatches were reported
//   - reports: a mismatch was reported for identifier
//   - not_reported: no mismatch was reported for identifier
//   - diagnostic_order: diagnostic lines name identifiers in this order
//   - checked: exactly count summary records were examined
//
// # Golden Snapshots
//
// RunWithGolden serializes the outcome as canonical JSON and compares it
// with testdata/golden/<name>.golden using goldie. Regenerate with
//
//	go test ./internal/harness -update
package harness
