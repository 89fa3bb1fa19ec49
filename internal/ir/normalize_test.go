package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{"nil", nil, nil},
		{"int", 5, int64(5)},
		{"int32", int32(-3), int64(-3)},
		{"uint8", uint8(7), int64(7)},
		{"float", 1.5, 1.5},
		{"float32", float32(0.5), 0.5},
		{"integral float", 2.0, int64(2)},
		{"integral json float", json.Number("2.0"), int64(2)},
		{"float beyond int64", 1e20, 1e20},
		{"json integer", json.Number("42"), int64(42)},
		{"json float", json.Number("4.2"), 4.2},
		{"string", "a", "a"},
		{"bool", true, true},
		{"typed slice", []string{"a", "b"}, []any{"a", "b"}},
		{"array", [2]int{1, 2}, []any{int64(1), int64(2)}},
		{"typed map", map[string]int{"a": 1}, map[string]any{"a": int64(1)}},
		{"nested", map[string]any{"x": []any{1, map[string]any{"y": uint16(2)}}},
			map[string]any{"x": []any{int64(1), map[string]any{"y": int64(2)}}}},
		{"pointer", ptr(3), int64(3)},
		{"nil pointer", (*int)(nil), nil},
		{"nil slice", []int(nil), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"uint overflow", uint64(math.MaxUint64)},
		{"int keys", map[int]string{1: "a"}},
		{"func", func() {}},
		{"struct", struct{ A int }{1}},
		{"nested nan", []any{1, math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON([]byte(`{"status": 200, "ratio": 0.5, "tags": ["a"], "none": null}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"status": int64(200),
		"ratio":  0.5,
		"tags":   []any{"a"},
		"none":   nil,
	}, got)
}

func TestDecodeJSONScalar(t *testing.T) {
	got, err := DecodeJSON([]byte(` 5 `))
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

func TestDecodeJSONErrors(t *testing.T) {
	_, err := DecodeJSON([]byte(`{`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`1 2`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(``))
	assert.Error(t, err)
}
