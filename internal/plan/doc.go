// Package plan compiles check definitions from CUE.
//
// A plan directory holds CUE files of one package. Each entry under
// check names one consistency check:
//
//	package nsfg
//
//	check: pregnum: {
//		description: "pregnum matches the pregnancy records per caseid"
//		detail:  {data: "2002FemPreg.dat.gz", dictionary: "2002FemPreg.dct"}
//		summary: {data: "2002FemResp.dat.gz", dictionary: "2002FemResp.dct"}
//		key:   "caseid"
//		count: "pregnum"
//		mode:  "fail_fast"
//	}
//
// Optional fields: summary_key (when the summary table names its identifier
// column differently), per-table name, format and max_rows.
//
// Relative data and dictionary paths resolve against the plan directory;
// file:// and s3:// URIs pass through unchanged.
//
// CompileCheck reports shape problems (wrong CUE types) as *CompileError.
// Validate reports semantic problems as ValidationErrors and never stops at
// the first one.
package plan
