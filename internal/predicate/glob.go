package predicate

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns a predicate matching string subjects against a doublestar
// pattern. `*` stops at '/', `**` crosses it. Non-string subjects never match.
func Glob(pattern string) (Func, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return func(subject any) (bool, error) {
		s, ok := subject.(string)
		if !ok {
			return false, nil
		}
		return doublestar.Match(pattern, s)
	}, nil
}
