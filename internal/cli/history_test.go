package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pmatch/internal/journal"
	"github.com/roach88/pmatch/internal/store"
)

// journalSubjects evaluates each subject with --db, one session per call.
func journalSubjects(t *testing.T, db, tablePath string, subjects ...string) {
	t.Helper()
	for _, s := range subjects {
		_, _, _ = execute(t, "", "eval", tablePath, "--subject", s, "--db", db)
	}
}

func TestHistorySessions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pmatch.db")
	journalSubjects(t, db, httpYAML, `{"status": 200}`, `{"status": 404}`)

	out, _, err := execute(t, "", "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "SESSION")
	assert.Contains(t, out, "http")

	out, _, err = execute(t, "", "--format", "json", "history", "--db", db)
	require.NoError(t, err)
	var resp struct {
		Data []store.SessionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 1, resp.Data[0].Count)
}

func TestHistoryTableAndSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pmatch.db")
	strict := writeFile(t, t.TempDir(), "strict.yaml", "name: strict\nrules:\n  - name: one\n    when: 1\n    to: uno\n")
	journalSubjects(t, db, strict, "1", "2")

	out, _, err := execute(t, "", "history", "--db", db, "--table", "strict")
	require.NoError(t, err)
	assert.Contains(t, out, "one")
	assert.Contains(t, out, `"uno"`)
	assert.Contains(t, out, "NO_MATCH")

	out, _, err = execute(t, "", "--format", "json", "history", "--db", db, "--table", "strict", "--limit", "1")
	require.NoError(t, err)
	var resp struct {
		Data []store.Evaluation `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "NO_MATCH", resp.Data[0].ErrorCode)

	session := resp.Data[0].SessionID
	out, _, err = execute(t, "", "history", "--db", db, "--session", session)
	require.NoError(t, err)
	assert.Contains(t, out, "NO_MATCH")
	assert.NotContains(t, out, `"uno"`)
}

func TestHistoryMissingDatabase(t *testing.T) {
	out, _, err := execute(t, "", "history", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
}

func TestReplayConsistent(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pmatch.db")
	journalSubjects(t, db, httpYAML, `{"status": 200}`, `{"status": 503}`, `"text"`)

	out, _, err := execute(t, "", "replay", httpCUE, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "3 session(s)")
	assert.Contains(t, out, "✓ All outcomes unchanged")
	assert.NotContains(t, out, "table changed")
}

func TestReplayDrift(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pmatch.db")
	dir := t.TempDir()
	v1 := writeFile(t, dir, "v1.yaml", "name: codes\nrules:\n  - name: one\n    when: 1\n    to: uno\n")
	v2 := writeFile(t, dir, "v2.yaml", "name: codes\nrules:\n  - name: one\n    when: 1\n    to: one\notherwise: other\n")
	journalSubjects(t, db, v1, "1", "2")

	out, _, err := execute(t, "", "replay", v2, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "table changed since recording")
	assert.Contains(t, out, `rule 0 "uno" -> rule 0 "one"`)
	assert.Contains(t, out, `NO_MATCH -> rule 1 "other"`)
	assert.Contains(t, out, "✗ 2 outcome(s) drifted")

	out, _, err = execute(t, "", "--format", "json", "replay", v2, "--db", db)
	require.Error(t, err)
	var resp struct {
		Data  ReplayResult `json:"data"`
		Error *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "E_DRIFT", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Drifts)
	assert.False(t, resp.Data.Consistent)
	require.Len(t, resp.Data.Sessions, 2)
	assert.IsType(t, journal.ReplayReport{}, resp.Data.Sessions[0])
}

func TestReplayUnknownSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pmatch.db")
	journalSubjects(t, db, httpYAML, `{"status": 200}`)

	_, _, err := execute(t, "", "replay", httpYAML, "--db", db, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
