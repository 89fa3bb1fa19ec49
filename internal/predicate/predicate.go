// Package predicate builds data-defined predicates for the matcher.
//
// Every constructor validates its input up front and returns a Func, which
// the pattern classifier treats as a predicate. Runtime failures are returned
// as errors and abort the surrounding evaluation.
package predicate

// Func is a predicate that can fail.
type Func = func(subject any) (bool, error)
