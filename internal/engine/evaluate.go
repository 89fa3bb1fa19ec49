package engine

import "github.com/roach88/pmatch/internal/pattern"

// Backend evaluates a subject against classified patterns.
//
// Implementations return the index of the first matching pattern and true,
// or -1 and false when nothing matches. A predicate failure is returned as an
// error and no further patterns are tried.
type Backend interface {
	Evaluate(subject any, patterns []pattern.Descriptor) (int, bool, error)
}

// Native is the in-process Backend.
//
// Thread-safety: Native is stateless and safe for concurrent use.
type Native struct{}

// Evaluate implements Backend.
func (Native) Evaluate(subject any, patterns []pattern.Descriptor) (int, bool, error) {
	return Evaluate(subject, patterns)
}

// Evaluate returns the index of the first pattern that matches the subject.
//
// Patterns are scanned in order and the scan stops at the first match, so
// later patterns (and any predicates they hold) are never invoked. A predicate
// error is wrapped in a MatchError carrying the branch index.
func Evaluate(subject any, patterns []pattern.Descriptor) (int, bool, error) {
	for i, d := range patterns {
		ok, err := Matches(d, subject)
		if err != nil {
			return -1, false, NewPredicateError(i, err)
		}
		if ok {
			return i, true, nil
		}
	}
	return -1, false, nil
}
