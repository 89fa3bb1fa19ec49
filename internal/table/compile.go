package table

import (
	"errors"
	"fmt"

	"github.com/roach88/pmatch/internal/engine"
	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/pattern"
	"github.com/roach88/pmatch/internal/predicate"
)

// Decision is the outcome of evaluating a subject against a Program.
type Decision struct {
	// Index is the winning rule index; len(Rules) for the otherwise branch.
	Index int `json:"index"`

	// Rule is the winning rule name, empty for unnamed rules and otherwise.
	Rule string `json:"rule,omitempty"`

	Result   any  `json:"result"`
	Fallback bool `json:"fallback"`
}

// TransformError reports a failed `map` expression on the winning rule.
type TransformError struct {
	Rule  int
	Name  string
	Cause error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("rules[%d] map failed: %v", e.Rule, e.Cause)
}

func (e *TransformError) Unwrap() error {
	return e.Cause
}

// CodeTransformFailed is reported by ErrorCode for a *TransformError.
const CodeTransformFailed = "TRANSFORM_FAILED"

// ErrorCode returns a stable code for an Evaluate error: the MatchError code,
// CodeTransformFailed, or "ERROR" for anything else. It returns "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	var te *TransformError
	if errors.As(err, &te) {
		return CodeTransformFailed
	}
	return "ERROR"
}

// resolved carries a transform failure through the registry, whose outcomes
// cannot return errors.
type resolved struct {
	value any
	err   error
}

// Program is a compiled decision table.
//
// Thread-safety: a Program is immutable after Compile and safe for
// concurrent use.
type Program struct {
	table    *Table
	hash     string
	backend  engine.Backend
	registry engine.Registry[any, resolved]
}

// Option configures Compile.
type Option func(*Program)

// WithBackend evaluates through b instead of the native matcher.
func WithBackend(b engine.Backend) Option {
	return func(p *Program) {
		p.backend = b
	}
}

// Compile validates t and builds its program.
func Compile(t *Table, opts ...Option) (*Program, error) {
	if errs := Validate(t); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid table %q: %w", t.Name, errors.Join(joined...))
	}

	hash, err := ir.TableHash(t.Definition())
	if err != nil {
		return nil, fmt.Errorf("hash table %q: %w", t.Name, err)
	}

	p := &Program{table: t, hash: hash, backend: engine.Native{}}
	for _, opt := range opts {
		opt(p)
	}

	for i := range t.Rules {
		r := &t.Rules[i]

		d, err := compileCondition(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ruleField(i, r), err)
		}
		o, err := compileOutcome(i, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ruleField(i, r), err)
		}
		p.registry.Append(d, o)
	}

	if t.HasOtherwise {
		p.registry.Append(pattern.Any, engine.Literal[any, resolved]{Value: resolved{value: t.Otherwise}})
	}

	return p, nil
}

func compileCondition(r *Rule) (pattern.Descriptor, error) {
	var (
		fn  predicate.Func
		err error
	)

	switch {
	case r.HasWhen:
		return pattern.Classify(r.When), nil
	case r.Expr != "":
		fn, err = predicate.Expr(r.Expr)
	case r.Glob != "":
		fn, err = predicate.Glob(r.Glob)
	case r.Regex != "":
		fn, err = predicate.Regex(r.Regex)
	case r.Path != nil:
		want := pattern.Any
		if r.Path.HasEquals {
			want = pattern.Classify(r.Path.Equals)
		}
		fn, err = predicate.JSONPath(r.Path.Path, want)
	case r.Schema != nil:
		fn, err = predicate.Schema(r.Schema)
	default:
		return pattern.Any, nil
	}

	if err != nil {
		return nil, err
	}
	return pattern.Classify(fn), nil
}

func compileOutcome(i int, r *Rule) (engine.Outcome[any, resolved], error) {
	if r.HasTo {
		return engine.Literal[any, resolved]{Value: resolved{value: r.To}}, nil
	}

	prog, err := predicate.CompileExpr(r.Map)
	if err != nil {
		return nil, err
	}
	return engine.Transform[any, resolved]{Fn: func(subject any) resolved {
		out, err := prog.Run(subject)
		if err != nil {
			return resolved{err: &TransformError{Rule: i, Name: r.Name, Cause: err}}
		}
		// Transform results are normalized so they compare like table data.
		n, err := ir.Normalize(out)
		if err != nil {
			return resolved{err: &TransformError{Rule: i, Name: r.Name, Cause: err}}
		}
		return resolved{value: n}
	}}, nil
}

// Table returns the source table.
func (p *Program) Table() *Table {
	return p.table
}

// Hash returns the content hash of the table definition.
func (p *Program) Hash() string {
	return p.hash
}

// Evaluate runs the subject through the table.
//
// Errors are MatchErrors (NO_MATCH without otherwise, PREDICATE_FAILED) or a
// *TransformError from the winning rule's map.
func (p *Program) Evaluate(subject any) (Decision, error) {
	res, idx, err := engine.Dispatch(p.backend, subject, &p.registry)
	if err != nil {
		return Decision{Index: -1}, err
	}
	if res.err != nil {
		return Decision{Index: idx}, res.err
	}

	d := Decision{Index: idx, Result: res.value}
	if idx < len(p.table.Rules) {
		d.Rule = p.table.Rules[idx].Name
	} else {
		d.Fallback = true
	}
	return d, nil
}
