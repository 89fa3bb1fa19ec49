package engine

// Outcome is a sealed interface for what a branch produces when it wins.
// Only Literal and Transform implement it.
type Outcome[T, R any] interface {
	resolve(subject T) R
	IsTransform() bool
}

// Literal is returned verbatim. A func-valued literal is never called.
type Literal[T, R any] struct {
	Value R
}

func (l Literal[T, R]) resolve(T) R { return l.Value }

// IsTransform implements Outcome.
func (Literal[T, R]) IsTransform() bool { return false }

// Transform is called with the subject, and only if its branch wins.
type Transform[T, R any] struct {
	Fn func(T) R
}

func (t Transform[T, R]) resolve(subject T) R { return t.Fn(subject) }

// IsTransform implements Outcome.
func (Transform[T, R]) IsTransform() bool { return true }

// Resolve produces the result of an outcome for the subject.
func Resolve[T, R any](o Outcome[T, R], subject T) R {
	return o.resolve(subject)
}
