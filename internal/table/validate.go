package table

import (
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrTableNameEmpty     = "E201" // name is required
	ErrTableEmpty         = "E202" // no rules and no otherwise
	ErrMultipleConditions = "E203" // more than one when* form on a rule
	ErrOutcomeMissing     = "E204" // neither to nor map
	ErrOutcomeConflict    = "E205" // both to and map
	ErrDuplicateRuleName  = "E206" // rule names must be unique
	ErrPathEmpty          = "E207" // when_path without a path
)

// ValidationError represents a table validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks table structure. It returns all errors found.
func Validate(t *Table) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "table name is required",
			Code:    ErrTableNameEmpty,
		})
	}

	if len(t.Rules) == 0 && !t.HasOtherwise {
		errs = append(errs, ValidationError{
			Field:   "rules",
			Message: "table needs at least one rule or an otherwise value",
			Code:    ErrTableEmpty,
		})
	}

	seen := make(map[string]int)
	for i := range t.Rules {
		r := &t.Rules[i]
		field := ruleField(i, r)

		if conds := r.conditions(); len(conds) > 1 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("at most one condition allowed, got %s", strings.Join(conds, ", ")),
				Code:    ErrMultipleConditions,
			})
		}

		switch {
		case r.HasTo && r.Map != "":
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "to and map are mutually exclusive",
				Code:    ErrOutcomeConflict,
			})
		case !r.HasTo && r.Map == "":
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "rule needs a to or map outcome",
				Code:    ErrOutcomeMissing,
			})
		}

		if r.Path != nil && strings.TrimSpace(r.Path.Path) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".when_path",
				Message: "path is required",
				Code:    ErrPathEmpty,
			})
		}

		if r.Name != "" {
			if prev, ok := seen[r.Name]; ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("duplicate rule name (first defined at rules[%d])", prev),
					Code:    ErrDuplicateRuleName,
				})
			} else {
				seen[r.Name] = i
			}
		}
	}

	return errs
}

func ruleField(i int, r *Rule) string {
	if r.Name != "" {
		return fmt.Sprintf("rules[%d](%s)", i, r.Name)
	}
	return fmt.Sprintf("rules[%d]", i)
}
