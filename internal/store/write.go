package store

import (
	"context"
	"errors"
	"fmt"
)

// WriteEvaluation inserts an evaluation record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// Other constraint violations (e.g., NOT NULL) will still return errors.
//
// Subject and Result are serialized to canonical JSON per RFC 8785.
func (s *Store) WriteEvaluation(ctx context.Context, ev Evaluation) error {
	if ev.ID == "" {
		return errors.New("write evaluation: id is required")
	}

	subjectJSON, err := marshalData(ev.Subject)
	if err != nil {
		return fmt.Errorf("write evaluation: marshal subject: %w", err)
	}

	resultJSON, err := marshalResult(ev)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
		(id, session_id, table_name, table_hash, subject, subject_hash, seq,
		 rule_index, rule_name, result, fallback, error_code, error_message,
		 engine_version, format_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.SessionID,
		ev.TableName,
		ev.TableHash,
		subjectJSON,
		ev.SubjectHash,
		ev.Seq,
		ev.RuleIndex,
		ev.RuleName,
		resultJSON,
		ev.Fallback,
		ev.ErrorCode,
		ev.ErrorMessage,
		ev.EngineVersion,
		ev.FormatVersion,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	return nil
}
