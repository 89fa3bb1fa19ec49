package predicate

import (
	"fmt"
	"regexp"
)

// Regex returns a predicate matching string subjects against an RE2
// expression. The expression is unanchored. Non-string subjects never match.
func Regex(expr string) (Func, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile regex %q: %w", expr, err)
	}
	return func(subject any) (bool, error) {
		s, ok := subject.(string)
		if !ok {
			return false, nil
		}
		return re.MatchString(s), nil
	}, nil
}
