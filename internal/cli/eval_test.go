package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalText(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{"structural", `{"status": 200}`, `rule 0 (ok): "success"`},
		{"jsonpath", `{"status": 404}`, `rule 1 (not-found): "missing"`},
		{"transform", `{"status": 502}`, `rule 2 (server-error): "retry:502"`},
		{"null", `null`, `rule 3 (empty): "nothing"`},
		{"otherwise", `{"status": 301}`, `otherwise: "unknown"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", "eval", httpYAML, "--subject", tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestEvalJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "eval", httpCUE, "-s", `{"status": 404}`)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "http", resp.Data.Table)
	assert.Equal(t, 1, resp.Data.Rule)
	assert.Equal(t, "not-found", resp.Data.RuleName)
	assert.Equal(t, "missing", resp.Data.Result)
	assert.False(t, resp.Data.Fallback)
	assert.Empty(t, resp.Data.SessionID)
}

func TestEvalStdinAndFile(t *testing.T) {
	out, _, err := execute(t, `{"status": 200}`, "eval", httpYAML, "--subject", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"success"`)

	path := writeFile(t, t.TempDir(), "subject.json", `{"status": 404}`)
	out, _, err = execute(t, "", "eval", httpYAML, "--subject-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"missing"`)
}

func TestEvalNoMatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "strict.yaml", "name: strict\nrules:\n  - name: one\n    when: 1\n    to: uno\n")

	out, _, err := execute(t, "", "eval", path, "--subject", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NO_MATCH]")
}

func TestEvalPredicateFailure(t *testing.T) {
	// A scalar subject makes the member access in rule 2 fail.
	out, _, err := execute(t, "", "--format", "json", "eval", httpYAML, "--subject", `"text"`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PREDICATE_FAILED", resp.Error.Code)
}

func TestEvalSubjectErrors(t *testing.T) {
	_, _, err := execute(t, "", "eval", httpYAML)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err := execute(t, "", "eval", httpYAML, "--subject", `{"status": `)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeBadSubject)

	out, _, err = execute(t, "", "eval", httpYAML, "--subject-file", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeBadSubject)
}

func TestEvalJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pmatch.db")

	out, _, err := execute(t, "", "eval", httpYAML, "--subject", `{"status": 200}`, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "journaled: ")
	assert.Contains(t, out, "seq 1)")

	out, _, err = execute(t, "", "--format", "json", "eval", httpYAML, "--subject", `{"status": 200}`, "--db", db)
	require.NoError(t, err)

	var resp struct {
		Data EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(2), resp.Data.Seq, "seq continues across sessions")
	assert.Len(t, resp.Data.SessionID, 36)
	assert.Len(t, resp.Data.EvaluationID, 64)
}
