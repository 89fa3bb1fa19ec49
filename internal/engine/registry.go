package engine

import (
	"fmt"

	"github.com/roach88/pmatch/internal/pattern"
)

// Branch is an immutable (pattern, outcome) pair identified by its index in
// a Registry.
type Branch[T, R any] struct {
	Pattern pattern.Descriptor
	Outcome Outcome[T, R]
}

// Registry is an ordered, append-only list of branches owned by one session.
//
// INVARIANTS:
//   - branches are never removed or reordered
//   - index i always refers to the i-th Append
type Registry[T, R any] struct {
	branches []Branch[T, R]
}

// Append adds a branch and returns its index.
func (r *Registry[T, R]) Append(p pattern.Descriptor, o Outcome[T, R]) int {
	r.branches = append(r.branches, Branch[T, R]{Pattern: p, Outcome: o})
	return len(r.branches) - 1
}

// Len returns the number of registered branches.
func (r *Registry[T, R]) Len() int {
	return len(r.branches)
}

// At returns the branch at index i.
func (r *Registry[T, R]) At(i int) Branch[T, R] {
	return r.branches[i]
}

// Patterns returns the branch patterns in registration order.
func (r *Registry[T, R]) Patterns() []pattern.Descriptor {
	out := make([]pattern.Descriptor, len(r.branches))
	for i, b := range r.branches {
		out[i] = b.Pattern
	}
	return out
}

// Dispatch evaluates the registry against the subject and resolves the
// winning outcome. It returns the result and the winning index.
//
// Errors:
//   - EMPTY_REGISTRY when no branches are registered
//   - PREDICATE_FAILED when a predicate returns an error
//   - NO_MATCH when every branch was evaluated without a match
//   - BACKEND_FAILED when the backend reports an index out of range
func Dispatch[T, R any](b Backend, subject T, reg *Registry[T, R]) (R, int, error) {
	var zero R

	if reg.Len() == 0 {
		return zero, -1, NewUsageError(ErrCodeEmptyRegistry, "run called with no branches registered")
	}

	idx, ok, err := b.Evaluate(subject, reg.Patterns())
	if err != nil {
		return zero, -1, err
	}
	if !ok {
		return zero, -1, NewNoMatchError(reg.Len())
	}
	if idx < 0 || idx >= reg.Len() {
		return zero, -1, NewBackendError(fmt.Sprintf("backend returned index %d for %d branches", idx, reg.Len()), nil)
	}

	return Resolve(reg.At(idx).Outcome, subject), idx, nil
}
