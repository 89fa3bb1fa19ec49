package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pmatch/internal/ir"
)

// yamlTable mirrors the YAML layout. yaml.Node fields keep `key: null`
// distinguishable from an absent key.
type yamlTable struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Rules       []yamlRule `yaml:"rules"`
	Otherwise   yaml.Node  `yaml:"otherwise"`
}

type yamlRule struct {
	Name   string    `yaml:"name"`
	When   yaml.Node `yaml:"when"`
	Expr   string    `yaml:"when_expr"`
	Glob   string    `yaml:"when_glob"`
	Regex  string    `yaml:"when_regex"`
	Path   *yamlPath `yaml:"when_path"`
	Schema yaml.Node `yaml:"when_schema"`
	To     yaml.Node `yaml:"to"`
	Map    string    `yaml:"map"`
}

type yamlPath struct {
	Path   string    `yaml:"path"`
	Equals yaml.Node `yaml:"equals"`
}

// LoadYAML reads a decision table from a YAML file.
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}
	t, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseYAML parses a decision table from YAML bytes.
// Unknown fields are rejected.
func ParseYAML(data []byte) (*Table, error) {
	var raw yamlTable
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table document")
		}
		return nil, fmt.Errorf("failed to parse table YAML: %w", err)
	}
	return raw.table()
}

func (y *yamlTable) table() (*Table, error) {
	t := &Table{
		Name:        y.Name,
		Description: y.Description,
		Rules:       make([]Rule, 0, len(y.Rules)),
	}

	var err error
	if t.Otherwise, t.HasOtherwise, err = nodeValue(&y.Otherwise); err != nil {
		return nil, fmt.Errorf("otherwise: %w", err)
	}

	for i := range y.Rules {
		r, err := y.Rules[i].rule()
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		t.Rules = append(t.Rules, r)
	}
	return t, nil
}

func (y *yamlRule) rule() (Rule, error) {
	r := Rule{
		Name:  y.Name,
		Expr:  y.Expr,
		Glob:  y.Glob,
		Regex: y.Regex,
		Map:   y.Map,
	}

	var err error
	if r.When, r.HasWhen, err = nodeValue(&y.When); err != nil {
		return r, fmt.Errorf("when: line %d: %w", y.When.Line, err)
	}
	if r.To, r.HasTo, err = nodeValue(&y.To); err != nil {
		return r, fmt.Errorf("to: line %d: %w", y.To.Line, err)
	}
	if r.Schema, _, err = nodeValue(&y.Schema); err != nil {
		return r, fmt.Errorf("when_schema: line %d: %w", y.Schema.Line, err)
	}
	if y.Path != nil {
		r.Path = &PathCondition{Path: y.Path.Path}
		if r.Path.Equals, r.Path.HasEquals, err = nodeValue(&y.Path.Equals); err != nil {
			return r, fmt.Errorf("when_path.equals: line %d: %w", y.Path.Equals.Line, err)
		}
	}
	return r, nil
}

// nodeValue decodes n into canonical data. The second result reports whether
// the key was present at all.
func nodeValue(n *yaml.Node) (any, bool, error) {
	if n.Kind == 0 {
		return nil, false, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, true, err
	}
	c, err := ir.Normalize(v)
	if err != nil {
		return nil, true, err
	}
	return c, true, nil
}
