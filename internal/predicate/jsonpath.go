package predicate

import (
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/roach88/pmatch/internal/engine"
	"github.com/roach88/pmatch/internal/pattern"
)

// JSONPath returns a predicate that selects values from the subject with a
// JSONPath expression and matches if any selected value matches want.
// want is itself a pattern, so templates, predicates and Any all work.
func JSONPath(path string, want any) (Func, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parse jsonpath %q: %w", path, err)
	}
	d := pattern.Classify(want)

	return func(subject any) (bool, error) {
		for _, v := range x.Get(subject) {
			ok, err := engine.Matches(d, v)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}, nil
}
