package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEvaluation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvaluation("ev-1", "session-1", 1)
	ev.Subject = map[string]any{
		"status": int64(200),
		"big":    int64(9007199254740993),
		"ratio":  0.25,
		"tags":   []any{"a", nil},
	}
	require.NoError(t, s.WriteEvaluation(ctx, ev))

	got, err := s.ReadEvaluation(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestWriteEvaluation_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvaluation("ev-1", "session-1", 1)
	require.NoError(t, s.WriteEvaluation(ctx, ev))

	ev.Result = "changed"
	require.NoError(t, s.WriteEvaluation(ctx, ev), "duplicate id is ignored")

	got, err := s.ReadEvaluation(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "success", got.Result, "first write wins")
}

func TestWriteEvaluation_Failure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvaluation("ev-1", "session-1", 1)
	ev.RuleIndex = -1
	ev.RuleName = ""
	ev.Result = nil
	ev.ErrorCode = "NO_MATCH"
	ev.ErrorMessage = "NO_MATCH: no branch matched (2 evaluated)"
	require.NoError(t, s.WriteEvaluation(ctx, ev))

	got, err := s.ReadEvaluation(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, got.Failed())
	assert.Nil(t, got.Result)
	assert.Equal(t, -1, got.RuleIndex)

	var isNull bool
	require.NoError(t, s.db.QueryRow("SELECT result IS NULL FROM evaluations WHERE id = 'ev-1'").Scan(&isNull))
	assert.True(t, isNull)
}

func TestWriteEvaluation_NullResultIsNotFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvaluation("ev-1", "session-1", 1)
	ev.Result = nil
	require.NoError(t, s.WriteEvaluation(ctx, ev))

	var stored string
	require.NoError(t, s.db.QueryRow("SELECT result FROM evaluations WHERE id = 'ev-1'").Scan(&stored))
	assert.Equal(t, "null", stored)
}

func TestWriteEvaluation_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.WriteEvaluation(ctx, Evaluation{})
	assert.Error(t, err)

	ev := createTestEvaluation("ev-1", "session-1", 1)
	ev.Subject = func() {}
	assert.Error(t, s.WriteEvaluation(ctx, ev))
}

func TestReadEvaluation_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadEvaluation(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestReadSession_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Written out of order; equal seq values tie-break on id.
	for _, ev := range []Evaluation{
		createTestEvaluation("c", "s1", 2),
		createTestEvaluation("b", "s1", 1),
		createTestEvaluation("a", "s1", 2),
		createTestEvaluation("z", "s2", 0),
	} {
		require.NoError(t, s.WriteEvaluation(ctx, ev))
	}

	got, err := s.ReadSession(ctx, "s1")
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, ev := range got {
		ids[i] = ev.ID
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)

	empty, err := s.ReadSession(ctx, "none")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReadTable_Limit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"e1", "e2", "e3", "e4"} {
		require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(id, "s1", int64(i+1))))
	}
	other := createTestEvaluation("x", "s1", 9)
	other.TableName = "other"
	require.NoError(t, s.WriteEvaluation(ctx, other))

	all, err := s.ReadTable(ctx, "http", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	last, err := s.ReadTable(ctx, "http", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "e3", last[0].ID)
	assert.Equal(t, "e4", last[1].ID)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	failed := createTestEvaluation("f", "s2", 3)
	failed.ErrorCode = "NO_MATCH"

	for _, ev := range []Evaluation{
		createTestEvaluation("a", "s2", 2),
		failed,
		createTestEvaluation("b", "s1", 1),
		createTestEvaluation("c", "s1", 4),
	} {
		require.NoError(t, s.WriteEvaluation(ctx, ev))
	}

	got, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SessionSummary{
		{SessionID: "s1", TableName: "http", Count: 2, Failures: 0, FirstSeq: 1, LastSeq: 4},
		{SessionID: "s2", TableName: "http", Count: 2, Failures: 1, FirstSeq: 2, LastSeq: 3},
	}, got)
}

func TestNextSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.NextSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation("a", "s1", 7)))

	seq, err = s.NextSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)
}
