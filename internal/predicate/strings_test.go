package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlob(t *testing.T) {
	testCases := []struct {
		pattern string
		subject any
		want    bool
	}{
		{"api/*/users", "api/v1/users", true},
		{"api/*/users", "api/v1/beta/users", false},
		{"api/**/users", "api/v1/beta/users", true},
		{"*.{yaml,yml}", "table.yml", true},
		{"*.yaml", 42, false},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			fn, err := Glob(tc.pattern)
			require.NoError(t, err)

			got, err := fn(tc.subject)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGlob_InvalidPattern(t *testing.T) {
	_, err := Glob("[a-")
	assert.Error(t, err)
}

func TestRegex(t *testing.T) {
	fn, err := Regex(`^ord-\d+$`)
	require.NoError(t, err)

	ok, err := fn("ord-42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fn("ord-x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = fn([]byte("ord-42"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegex_Invalid(t *testing.T) {
	_, err := Regex(`(`)
	assert.Error(t, err)
}
