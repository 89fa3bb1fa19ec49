package predicate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// SubjectVar is the name the subject is bound to inside expressions.
const SubjectVar = "it"

// Program is a compiled expr-lang expression over a subject.
type Program struct {
	source  string
	program *vm.Program
}

// CompileExpr compiles src. The subject is available as `it`.
func CompileExpr(src string) (*Program, error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &Program{source: src, program: program}, nil
}

// Source returns the expression text.
func (p *Program) Source() string {
	return p.source
}

// Run evaluates the expression with the subject bound to `it`.
func (p *Program) Run(subject any) (any, error) {
	out, err := expr.Run(p.program, map[string]any{SubjectVar: subject})
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", p.source, err)
	}
	return out, nil
}

// Test evaluates the expression and reports whether it produced exactly true.
func (p *Program) Test(subject any) (bool, error) {
	out, err := p.Run(subject)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	return ok && b, nil
}

// Expr returns a predicate backed by an expr-lang expression.
//
//	predicate.Expr(`it.status >= 500 && it.retryable`)
func Expr(src string) (Func, error) {
	p, err := CompileExpr(src)
	if err != nil {
		return nil, err
	}
	return p.Test, nil
}
