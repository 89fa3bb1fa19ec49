package table

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	yamlPattern = "*.{yaml,yml}"
	cuePattern  = "*.cue"
)

// Load reads one decision table from a YAML or CUE file, chosen by
// extension. A CUE file must define exactly one table unless name selects
// one of several.
func Load(path, name string) (*Table, error) {
	base := filepath.Base(path)

	if ok, _ := doublestar.Match(yamlPattern, base); ok {
		t, err := LoadYAML(path)
		if err != nil {
			return nil, err
		}
		if name != "" && t.Name != name {
			return nil, fmt.Errorf("%s: table %q not found (file defines %q)", path, name, t.Name)
		}
		return t, nil
	}

	if ok, _ := doublestar.Match(cuePattern, base); ok {
		tables, err := LoadCUE(path)
		if err != nil {
			return nil, err
		}
		return selectTable(path, name, tables)
	}

	return nil, fmt.Errorf("%s: unsupported table file (want .yaml, .yml or .cue)", path)
}

// IsTableFile reports whether path has a table file extension.
func IsTableFile(path string) bool {
	base := filepath.Base(path)
	for _, p := range []string{yamlPattern, cuePattern} {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

func selectTable(path, name string, tables []*Table) (*Table, error) {
	if name == "" {
		if len(tables) != 1 {
			return nil, fmt.Errorf("%s: defines %d tables, select one by name", path, len(tables))
		}
		return tables[0], nil
	}
	for _, t := range tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: table %q not found", path, name)
}
