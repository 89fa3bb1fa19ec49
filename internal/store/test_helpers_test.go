package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pmatch/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvaluation creates a successful evaluation with minimal fields.
func createTestEvaluation(id, sessionID string, seq int64) Evaluation {
	return Evaluation{
		ID:            id,
		SessionID:     sessionID,
		TableName:     "http",
		TableHash:     "test-hash",
		Subject:       map[string]any{"status": int64(200)},
		SubjectHash:   "subject-hash",
		Seq:           seq,
		RuleIndex:     0,
		RuleName:      "ok",
		Result:        "success",
		EngineVersion: ir.EngineVersion,
		FormatVersion: ir.FormatVersion,
	}
}
