package table

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pmatch/internal/ir"
)

// CompileCUE parses a CUE value into a Table.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: status: { rules: [...] }`)
//	t, err := CompileCUE(v.LookupPath(cue.ParsePath("table.status")))
//
// The table name defaults to the struct label and may be overridden by a
// `name` field.
func CompileCUE(v cue.Value) (*Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &Table{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.Name = labels[len(labels)-1].String()
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		field := iter.Value()
		switch label := iter.Label(); label {
		case "name":
			if t.Name, err = field.String(); err != nil {
				return nil, formatCUEError(err)
			}
		case "description":
			if t.Description, err = field.String(); err != nil {
				return nil, formatCUEError(err)
			}
		case "otherwise":
			if t.Otherwise, err = cueData(field); err != nil {
				return nil, err
			}
			t.HasOtherwise = true
		case "rules":
			if t.Rules, err = parseRules(field); err != nil {
				return nil, err
			}
		default:
			return nil, &CompileError{
				Field:   label,
				Message: "unknown table field",
				Pos:     field.Pos(),
			}
		}
	}

	return t, nil
}

// parseRules extracts the ordered rule list.
func parseRules(v cue.Value) ([]Rule, error) {
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []Rule
	for i := 0; list.Next(); i++ {
		r, err := parseRule(list.Value())
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func parseRule(v cue.Value) (Rule, error) {
	var r Rule

	iter, err := v.Fields()
	if err != nil {
		return r, formatCUEError(err)
	}

	for iter.Next() {
		field := iter.Value()
		label := iter.Label()

		switch label {
		case "name":
			r.Name, err = field.String()
		case "when_expr":
			r.Expr, err = field.String()
		case "when_glob":
			r.Glob, err = field.String()
		case "when_regex":
			r.Regex, err = field.String()
		case "map":
			r.Map, err = field.String()
		case "when":
			r.When, err = cueData(field)
			r.HasWhen = true
		case "to":
			r.To, err = cueData(field)
			r.HasTo = true
		case "when_schema":
			r.Schema, err = cueData(field)
		case "when_path":
			r.Path, err = parsePath(field)
		default:
			return r, &CompileError{
				Field:   label,
				Message: "unknown rule field",
				Pos:     field.Pos(),
			}
		}
		if err != nil {
			if _, ok := err.(*CompileError); ok {
				return r, err
			}
			return r, formatCUEError(err)
		}
	}

	return r, nil
}

func parsePath(v cue.Value) (*PathCondition, error) {
	p := &PathCondition{}

	pathVal := v.LookupPath(cue.ParsePath("path"))
	if !pathVal.Exists() {
		return nil, &CompileError{
			Field:   "when_path.path",
			Message: "path is required",
			Pos:     v.Pos(),
		}
	}
	path, err := pathVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	p.Path = path

	equalsVal := v.LookupPath(cue.ParsePath("equals"))
	if equalsVal.Exists() {
		if p.Equals, err = cueData(equalsVal); err != nil {
			return nil, err
		}
		p.HasEquals = true
	}
	return p, nil
}

// cueData converts a concrete CUE value into canonical data.
func cueData(v cue.Value) (any, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	d, err := ir.DecodeJSON(b)
	if err != nil {
		return nil, &CompileError{Field: "value", Message: err.Error(), Pos: v.Pos()}
	}
	return d, nil
}

// LoadCUE compiles every table under the top-level `table` struct of a CUE
// file, in declaration order.
func LoadCUE(path string) ([]*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "no table definitions found",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tables []*Table
	for iter.Next() {
		t, err := CompileCUE(iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
