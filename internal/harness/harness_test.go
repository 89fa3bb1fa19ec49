package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return s
}

func TestRun_TableFile(t *testing.T) {
	result, err := Run(loadScenario(t, "http_status.yaml"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.TableHash)
	require.Len(t, result.Trace, 5)

	for i, ev := range result.Trace {
		assert.Equal(t, i, ev.Case)
		assert.Equal(t, int64(i+1), ev.Seq)
	}
	assert.Equal(t, "server-error", result.Trace[2].RuleName)
	assert.Equal(t, "retry:503", result.Trace[2].Result)
	assert.True(t, result.Trace[4].Fallback)
}

func TestRun_Inline(t *testing.T) {
	result, err := Run(loadScenario(t, "inline_rules.yaml"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, int64(30), result.Trace[0].Result)
	assert.Equal(t, "NO_MATCH", result.Trace[3].Error)
	assert.Equal(t, -1, result.Trace[3].Rule)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "http_status.yaml")

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	b1, err := MarshalTrace(s, r1)
	require.NoError(t, err)
	b2, err := MarshalTrace(s, r2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestRun_ExpectationFailures(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: Every case is wrong
rules:
  - name: one
    when: 1
    to: uno
  - name: two
    when: 2
    map: '"dos"'
  - name: three
    when_expr: 'it == 3'
    to: tres
cases:
  - name: wrong result
    subject: 1
    expect: {result: one}
  - name: wrong rule
    subject: 3
    expect: {result: tres, rule: one}
  - name: error expected
    subject: 1
    expect: {error: NO_MATCH}
  - name: result expected
    subject: 9
    expect: {result: uno}
  - name: fallback
    subject: 1
    expect: {result: uno, fallback: true}
assertions:
  - type: rule_count
    rule: one
    count: 5
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)

	assert.Contains(t, result.Errors[0], "case 0 (wrong result): expected result")
	assert.Contains(t, result.Errors[1], `expected rule "one", got "three"`)
	assert.Contains(t, result.Errors[2], "expected error NO_MATCH, got result")
	assert.Contains(t, result.Errors[3], "got error NO_MATCH")
	assert.Contains(t, result.Errors[4], "expected fallback=true, got false")
	assert.Contains(t, result.Errors[5], "Assertion failed: rule_count")
}

func TestRun_BadTable(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad
description: Rule without outcome
rules:
  - name: r
    when: 1
cases:
  - subject: 1
    expect: {result: 1}
`))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile table")
}

func TestEvaluateAssertions_JournalCount(t *testing.T) {
	s := loadScenario(t, "inline_rules.yaml")
	s.Assertions = []Assertion{{Type: AssertJournalCount, Count: 3}}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "3 journaled evaluations")
}

func TestEvaluateAssertions_NoStore(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertJournalCount}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a store")
}
