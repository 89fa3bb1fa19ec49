// Package table compiles data-defined decision tables into match programs.
//
// A decision table is an ordered list of rules authored in YAML or CUE. Each
// rule has at most one condition and exactly one outcome:
//
//	name: http-status
//	rules:
//	  - name: ok
//	    when: {status: 200}
//	    to: success
//	  - name: server-error
//	    when_expr: it.status >= 500
//	    map: '"retry after " + string(it.retry)'
//	otherwise: unknown
//
// Conditions:
//   - when: a literal or structural pattern (null matches only null)
//   - when_expr: an expr-lang predicate over `it`
//   - when_glob / when_regex: string matching
//   - when_path: {path: <jsonpath>, equals: <pattern>}
//   - when_schema: a JSON Schema document
//
// A rule with no condition matches every subject. Outcomes are either `to`
// (a literal) or `map` (an expr-lang transform of `it`).
//
// Compiled programs are immutable and safe for concurrent use.
package table
