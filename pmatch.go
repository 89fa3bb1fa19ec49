package pmatch

import (
	"context"

	"github.com/roach88/pmatch/internal/engine"
	"github.com/roach88/pmatch/internal/pattern"
)

// Descriptor is a classified pattern.
type Descriptor = pattern.Descriptor

// Backend evaluates a subject against classified patterns.
type Backend = engine.Backend

// Loader produces a Backend during Engine.Init.
type Loader = engine.Loader

// Any is the wildcard pattern. It matches every subject.
var Any = pattern.Any

// Classify converts a raw pattern into its Descriptor.
func Classify(raw any) Descriptor {
	return pattern.Classify(raw)
}

// Matches reports whether a single raw pattern matches v.
func Matches(raw any, v any) (bool, error) {
	return engine.Matches(pattern.Classify(raw), v)
}

// Engine owns the backend used by match sessions.
type Engine struct {
	setup *engine.Setup
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	backend engine.Backend
	loader  engine.Loader
}

// WithBackend replaces the native backend. The engine is ready immediately.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
		o.loader = nil
	}
}

// WithLoader defers backend creation to Engine.Init.
func WithLoader(fn Loader) Option {
	return func(o *options) {
		o.loader = fn
		o.backend = nil
	}
}

// New creates an Engine. Without options it uses the native backend and is
// ready for use.
func New(opts ...Option) *Engine {
	o := options{backend: engine.Native{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loader != nil {
		return &Engine{setup: engine.NewSetup(o.loader)}
	}
	if o.backend == nil {
		o.backend = engine.Native{}
	}
	return &Engine{setup: engine.NewReadySetup(o.backend)}
}

// Init prepares the backend. It is idempotent; concurrent callers share one
// load, and a failed load may be retried by calling Init again.
func (e *Engine) Init(ctx context.Context) error {
	return e.setup.Init(ctx)
}

// Ready reports whether terminal calls can run.
func (e *Engine) Ready() bool {
	return e.setup.Ready()
}

var defaultEngine = New()

// Default returns the ready in-process engine used by Match.
func Default() *Engine {
	return defaultEngine
}

// Session is one match chain over a subject of type T producing R.
type Session[R, T any] struct {
	engine   *Engine
	subject  T
	registry engine.Registry[T, R]
	pending  *Pending[R, T]
	err      error
	consumed bool
}

// Pending is a staged pattern awaiting its outcome.
type Pending[R, T any] struct {
	session *Session[R, T]
	pattern pattern.Descriptor
	done    bool
}

// Match starts a session on the default engine.
func Match[R, T any](subject T) *Session[R, T] {
	return MatchWith[R](defaultEngine, subject)
}

// MatchWith starts a session on e.
func MatchWith[R, T any](e *Engine, subject T) *Session[R, T] {
	if e == nil {
		e = defaultEngine
	}
	return &Session[R, T]{engine: e, subject: subject}
}

// When stages a pattern. The returned Pending must be completed with To or
// Map before the next When or the terminal call.
func (s *Session[R, T]) When(raw any) *Pending[R, T] {
	if s.pending != nil {
		s.fail(engine.ErrCodeIncompleteBranch, "when called while a previous branch has no outcome")
	}
	p := &Pending[R, T]{session: s, pattern: pattern.Classify(raw)}
	s.pending = p
	return p
}

// To completes the branch with a literal result.
func (p *Pending[R, T]) To(v R) *Session[R, T] {
	return p.complete(engine.Literal[T, R]{Value: v})
}

// Map completes the branch with a transform of the subject.
func (p *Pending[R, T]) Map(fn func(T) R) *Session[R, T] {
	if fn == nil {
		p.session.fail(engine.ErrCodeIncompleteBranch, "map called with a nil function")
		p.done = true
		if p.session.pending == p {
			p.session.pending = nil
		}
		return p.session
	}
	return p.complete(engine.Transform[T, R]{Fn: fn})
}

func (p *Pending[R, T]) complete(o engine.Outcome[T, R]) *Session[R, T] {
	s := p.session
	if p.done || s.pending != p {
		s.fail(engine.ErrCodeIncompleteBranch, "outcome attached to a stale branch")
		return s
	}
	p.done = true
	s.pending = nil
	s.registry.Append(p.pattern, o)
	return s
}

// Otherwise appends a wildcard branch returning v and runs the session.
// It never fails with NO_MATCH. Usage errors take precedence: on a session
// that is already consumed, has a recorded usage error, or has a branch
// without an outcome, no wildcard is appended and that error is returned.
func (s *Session[R, T]) Otherwise(v R) (R, error) {
	if s.consumed || s.err != nil || s.pending != nil {
		return s.Run()
	}
	s.registry.Append(pattern.Any, engine.Literal[T, R]{Value: v})
	return s.Run()
}

// Run evaluates the registered branches and resolves the winner.
func (s *Session[R, T]) Run() (R, error) {
	var zero R

	if s.consumed {
		return zero, engine.NewUsageError(engine.ErrCodeSessionConsumed, "terminal call on a consumed session")
	}
	s.consumed = true

	if s.pending != nil {
		s.fail(engine.ErrCodeIncompleteBranch, "terminal call with a branch that has no outcome")
	}
	if s.err != nil {
		return zero, s.err
	}

	b, err := s.engine.setup.Backend()
	if err != nil {
		return zero, err
	}

	res, _, err := engine.Dispatch(b, s.subject, &s.registry)
	if err != nil {
		return zero, err
	}
	return res, nil
}

// fail records the first usage error; later terminal calls report it.
func (s *Session[R, T]) fail(code engine.ErrorCode, msg string) {
	if s.err == nil {
		s.err = engine.NewUsageError(code, msg)
	}
}
