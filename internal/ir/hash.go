package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainSubject    = "pmatch/subject/v1"
	DomainTable      = "pmatch/table/v1"
	DomainEvaluation = "pmatch/evaluation/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SubjectHash identifies a subject by its canonical JSON.
func SubjectHash(subject any) (string, error) {
	canonical, err := MarshalCanonical(subject)
	if err != nil {
		return "", fmt.Errorf("SubjectHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSubject, canonical), nil
}

// TableHash identifies a decision table by the canonical JSON of its
// definition. Equivalent YAML and CUE sources hash the same.
func TableHash(definition any) (string, error) {
	canonical, err := MarshalCanonical(definition)
	if err != nil {
		return "", fmt.Errorf("TableHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// EvaluationID computes the content-addressed id of one journaled
// evaluation. The same session, table, subject and seq always produce the
// same id, which makes journal writes idempotent.
func EvaluationID(sessionID, tableHash, subjectHash string, seq int64) (string, error) {
	obj := map[string]any{
		"session_id":   sessionID,
		"table_hash":   tableHash,
		"subject_hash": subjectHash,
		"seq":          seq,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EvaluationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvaluation, canonical), nil
}

// MustSubjectHash is like SubjectHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSubjectHash(subject any) string {
	h, err := SubjectHash(subject)
	if err != nil {
		panic(err)
	}
	return h
}
