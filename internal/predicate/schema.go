package predicate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "schema.json"

// Schema returns a predicate that validates the subject against a JSON Schema
// (draft 2020-12). schema may be raw JSON ([]byte or string) or any value
// that marshals to a schema document.
//
// The subject is converted to JSON before validation. A subject that cannot
// be represented as JSON does not match.
func Schema(schema any) (Func, error) {
	var doc []byte
	switch s := schema.(type) {
	case []byte:
		doc = s
	case string:
		doc = []byte(s)
	default:
		b, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		doc = b
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return func(subject any) (bool, error) {
		instance, ok := toJSON(subject)
		if !ok {
			return false, nil
		}
		err := compiled.Validate(instance)
		if err == nil {
			return true, nil
		}
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return false, nil
		}
		return false, fmt.Errorf("validate: %w", err)
	}, nil
}

// toJSON converts v into the generic form the validator expects.
func toJSON(v any) (any, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, false
	}
	return out, true
}
