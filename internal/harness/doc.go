// Package harness runs conformance scenarios against decision tables.
//
// A scenario names a table (a YAML or CUE file relative to the scenario, or
// inline rules), a list of cases, and optional assertions over the run:
//
//	name: http_status
//	description: Status codes map to outcomes
//	table: ../tables/http.yaml
//	cases:
//	  - subject: {status: 200}
//	    expect: {result: success, rule: ok}
//	  - subject: {status: 302}
//	    expect: {result: unknown, fallback: true}
//	assertions:
//	  - type: error_count
//	    error: NO_MATCH
//	    count: 0
//
// Every case is evaluated through a journal recorder backed by a fresh
// in-memory store, with a deterministic clock and session id, so the same
// scenario always yields the same trace. RunWithGolden compares that trace,
// as canonical JSON, to testdata/golden/<name>.golden.
package harness
