package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/pmatch/internal/ir"
)

// marshalData converts canonical data to JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalData(v any) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalData parses stored JSON TEXT back into canonical data.
// Integers come back as int64, so large values keep full precision.
func unmarshalData(data string) (any, error) {
	v, err := ir.DecodeJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal stored json: %w", err)
	}
	return v, nil
}

// marshalResult returns a NULL column for failed evaluations.
func marshalResult(ev Evaluation) (sql.NullString, error) {
	if ev.Failed() {
		return sql.NullString{}, nil
	}
	s, err := marshalData(ev.Result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal result: %w", err)
	}
	return sql.NullString{String: s, Valid: true}, nil
}
