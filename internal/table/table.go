package table

// Table is a named, ordered list of rules with an optional fallback.
type Table struct {
	Name        string
	Description string
	Rules       []Rule

	// Otherwise is the fallback result. It is used only when HasOtherwise is
	// set, since nil is a valid fallback.
	Otherwise    any
	HasOtherwise bool
}

// Rule is one branch of a decision table.
type Rule struct {
	Name string

	// When is a canonical pattern. HasWhen distinguishes `when: null` from
	// an absent condition.
	When    any
	HasWhen bool

	Expr   string
	Glob   string
	Regex  string
	Path   *PathCondition
	Schema any

	// To is the literal outcome, valid when HasTo is set.
	To    any
	HasTo bool

	// Map is an expr-lang transform of the subject.
	Map string
}

// PathCondition selects values with a JSONPath and matches them against
// Equals. A nil Equals with HasEquals unset matches any selected value.
type PathCondition struct {
	Path      string
	Equals    any
	HasEquals bool
}

// conditions returns the names of the condition forms set on the rule.
func (r *Rule) conditions() []string {
	var out []string
	if r.HasWhen {
		out = append(out, "when")
	}
	if r.Expr != "" {
		out = append(out, "when_expr")
	}
	if r.Glob != "" {
		out = append(out, "when_glob")
	}
	if r.Regex != "" {
		out = append(out, "when_regex")
	}
	if r.Path != nil {
		out = append(out, "when_path")
	}
	if r.Schema != nil {
		out = append(out, "when_schema")
	}
	return out
}

// Definition returns the table as canonical data. Tables loaded from YAML
// and CUE with the same content produce equal definitions.
func (t *Table) Definition() map[string]any {
	rules := make([]any, len(t.Rules))
	for i := range t.Rules {
		rules[i] = t.Rules[i].definition()
	}

	def := map[string]any{
		"name":  t.Name,
		"rules": rules,
	}
	if t.Description != "" {
		def["description"] = t.Description
	}
	if t.HasOtherwise {
		def["otherwise"] = t.Otherwise
	}
	return def
}

func (r *Rule) definition() map[string]any {
	def := map[string]any{}
	if r.Name != "" {
		def["name"] = r.Name
	}
	if r.HasWhen {
		def["when"] = r.When
	}
	if r.Expr != "" {
		def["when_expr"] = r.Expr
	}
	if r.Glob != "" {
		def["when_glob"] = r.Glob
	}
	if r.Regex != "" {
		def["when_regex"] = r.Regex
	}
	if r.Path != nil {
		p := map[string]any{"path": r.Path.Path}
		if r.Path.HasEquals {
			p["equals"] = r.Path.Equals
		}
		def["when_path"] = p
	}
	if r.Schema != nil {
		def["when_schema"] = r.Schema
	}
	if r.HasTo {
		def["to"] = r.To
	}
	if r.Map != "" {
		def["map"] = r.Map
	}
	return def
}
