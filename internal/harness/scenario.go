package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pmatch/internal/table"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is the path to a YAML or CUE table, relative to the scenario
	// file. Mutually exclusive with Rules.
	Table string `yaml:"table,omitempty"`

	// TableName selects one table from a CUE file defining several.
	TableName string `yaml:"table_name,omitempty"`

	// Rules and Otherwise define an inline table, in table YAML syntax.
	Rules     yaml.Node `yaml:"rules,omitempty"`
	Otherwise yaml.Node `yaml:"otherwise,omitempty"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`

	// Assertions validate the whole run.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Session is the fixed journal session id.
	// If empty, defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`
}

// Case is one subject and its expected outcome.
type Case struct {
	Name    string    `yaml:"name,omitempty"`
	Subject yaml.Node `yaml:"subject"`
	Expect  Expect    `yaml:"expect"`
}

// Expect specifies the expected outcome of a case. Exactly one of Result
// or Error must be given.
type Expect struct {
	// Result is compared with strict type equality after normalization.
	Result yaml.Node `yaml:"result,omitempty"`

	// Error is an error code such as NO_MATCH or TRANSFORM_FAILED.
	Error string `yaml:"error,omitempty"`

	// Rule is the expected winning rule name.
	Rule string `yaml:"rule,omitempty"`

	// Fallback, if set, requires the otherwise branch to have won.
	Fallback *bool `yaml:"fallback,omitempty"`
}

// Assertion validates the trace or the journal after all cases ran.
type Assertion struct {
	// Type is one of rule_count, fallback_count, error_count, journal_count.
	Type string `yaml:"type"`

	// Rule is the rule name (rule_count).
	Rule string `yaml:"rule,omitempty"`

	// Error is the error code (error_count).
	Error string `yaml:"error,omitempty"`

	// Count is the expected number of occurrences.
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertRuleCount     = "rule_count"
	AssertFallbackCount = "fallback_count"
	AssertErrorCount    = "error_count"
	AssertJournalCount  = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file. A relative Table path
// is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if scenario.Table != "" && !filepath.IsAbs(scenario.Table) {
		scenario.Table = filepath.Join(filepath.Dir(path), scenario.Table)
	}
	if scenario.Table != "" {
		if _, err := os.Stat(scenario.Table); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: table file not found: %s", path, scenario.Table)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML bytes. Table paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	hasInline := s.Rules.Kind != 0
	switch {
	case s.Table == "" && !hasInline:
		return fmt.Errorf("table or rules is required")
	case s.Table != "" && hasInline:
		return fmt.Errorf("table and rules are mutually exclusive")
	case s.Table != "" && s.Otherwise.Kind != 0:
		return fmt.Errorf("otherwise belongs in the table file when table is set")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Subject.Kind == 0 {
			return fmt.Errorf("cases[%d]: subject is required (use null for a null subject)", i)
		}
		hasResult := c.Expect.Result.Kind != 0
		if hasResult == (c.Expect.Error != "") {
			return fmt.Errorf("cases[%d].expect: exactly one of result or error is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertRuleCount:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for rule_count", index)
		}
	case AssertErrorCount:
		if a.Error == "" {
			return fmt.Errorf("assertions[%d]: error is required for error_count", index)
		}
	case AssertFallbackCount, AssertJournalCount:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// loadTable resolves the scenario's table, from file or inline rules.
func (s *Scenario) loadTable() (*table.Table, error) {
	if s.Table != "" {
		return table.Load(s.Table, s.TableName)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}
	add("name", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Name})
	add("rules", &s.Rules)
	if s.Otherwise.Kind != 0 {
		add("otherwise", &s.Otherwise)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("inline table: %w", err)
	}
	t, err := table.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("inline table: %w", err)
	}
	return t, nil
}
