package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectHashDeterminism(t *testing.T) {
	a := map[string]any{"status": 200, "tags": []string{"x"}}
	b := map[string]any{"tags": []any{"x"}, "status": int64(200)}

	h1, err := SubjectHash(a)
	require.NoError(t, err)
	h2, err := SubjectHash(b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "equal canonical data must hash equally")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestSubjectHashChangesWithInput(t *testing.T) {
	assert.NotEqual(t, MustSubjectHash(1), MustSubjectHash(2))
	assert.NotEqual(t, MustSubjectHash(1), MustSubjectHash(1.5))
	assert.NotEqual(t, MustSubjectHash("1"), MustSubjectHash(1))
}

func TestDomainSeparation(t *testing.T) {
	def := map[string]any{"name": "x"}

	subject, err := SubjectHash(def)
	require.NoError(t, err)
	table, err := TableHash(def)
	require.NoError(t, err)

	assert.NotEqual(t, subject, table, "domains must separate identical payloads")
}

func TestEvaluationID(t *testing.T) {
	id1, err := EvaluationID("s-1", "t", "h", 1)
	require.NoError(t, err)
	id2, err := EvaluationID("s-1", "t", "h", 1)
	require.NoError(t, err)
	id3, err := EvaluationID("s-1", "t", "h", 2)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestSubjectHashError(t *testing.T) {
	_, err := SubjectHash(func() {})
	assert.Error(t, err)

	assert.Panics(t, func() { MustSubjectHash(func() {}) })
}
