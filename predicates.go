package pmatch

import "github.com/roach88/pmatch/internal/predicate"

// Expr returns a predicate backed by an expr-lang expression. The subject is
// bound to `it`; the branch matches only when the expression yields true.
func Expr(src string) (func(any) (bool, error), error) {
	return predicate.Expr(src)
}

// JSONPath returns a predicate that matches when any value selected by path
// matches want. want is a pattern.
func JSONPath(path string, want any) (func(any) (bool, error), error) {
	return predicate.JSONPath(path, want)
}

// Glob returns a predicate matching string subjects against a doublestar glob.
func Glob(pattern string) (func(any) (bool, error), error) {
	return predicate.Glob(pattern)
}

// Regex returns a predicate matching string subjects against an RE2 expression.
func Regex(expr string) (func(any) (bool, error), error) {
	return predicate.Regex(expr)
}

// Schema returns a predicate validating subjects against a JSON Schema.
func Schema(schema any) (func(any) (bool, error), error) {
	return predicate.Schema(schema)
}

// Must panics if err is non-nil. It is meant for predicates built from
// constant inputs.
func Must(fn func(any) (bool, error), err error) func(any) (bool, error) {
	if err != nil {
		panic(err)
	}
	return fn
}
