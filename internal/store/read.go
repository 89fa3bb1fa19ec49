package store

import (
	"context"
	"database/sql"
	"fmt"
)

const evaluationColumns = `
	id, session_id, table_name, table_hash, subject, subject_hash, seq,
	rule_index, rule_name, result, fallback, error_code, error_message,
	engine_version, format_version`

// ReadEvaluation retrieves a single evaluation by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEvaluation(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE id = ?
	`, id)

	return scanEvaluation(row)
}

// ReadSession returns all evaluations of a session in seq order.
// Returns an empty slice (not nil) if the session has no records.
func (s *Store) ReadSession(ctx context.Context, sessionID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return collectEvaluations(rows)
}

// ReadTable returns the most recent evaluations of a table in seq order.
// A limit <= 0 returns all of them.
func (s *Store) ReadTable(ctx context.Context, tableName string, limit int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+` FROM (
			SELECT * FROM evaluations
			WHERE table_name = ?
			ORDER BY seq DESC, id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, tableName, limit)
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}
	return collectEvaluations(rows)
}

// ListSessions summarizes every session in first-seq order.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, MIN(table_name), COUNT(*),
		       SUM(CASE WHEN error_code != '' THEN 1 ELSE 0 END),
		       MIN(seq), MAX(seq)
		FROM evaluations
		GROUP BY session_id
		ORDER BY MIN(seq) ASC, session_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	summaries := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.SessionID, &sum.TableName, &sum.Count, &sum.Failures, &sum.FirstSeq, &sum.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return summaries, nil
}

// NextSeq returns the next logical clock value: one past the highest
// recorded seq, or 1 for an empty journal.
func (s *Store) NextSeq(ctx context.Context) (int64, error) {
	var last int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM evaluations`).Scan(&last); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return last + 1, nil
}

func collectEvaluations(rows *sql.Rows) ([]Evaluation, error) {
	defer rows.Close()

	evaluations := []Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evaluations, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(sc scanner) (Evaluation, error) {
	var (
		ev          Evaluation
		subjectJSON string
		resultJSON  sql.NullString
	)

	err := sc.Scan(
		&ev.ID,
		&ev.SessionID,
		&ev.TableName,
		&ev.TableHash,
		&subjectJSON,
		&ev.SubjectHash,
		&ev.Seq,
		&ev.RuleIndex,
		&ev.RuleName,
		&resultJSON,
		&ev.Fallback,
		&ev.ErrorCode,
		&ev.ErrorMessage,
		&ev.EngineVersion,
		&ev.FormatVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Evaluation{}, err
		}
		return Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}

	if ev.Subject, err = unmarshalData(subjectJSON); err != nil {
		return Evaluation{}, err
	}
	if resultJSON.Valid {
		if ev.Result, err = unmarshalData(resultJSON.String); err != nil {
			return Evaluation{}, err
		}
	}
	return ev, nil
}
