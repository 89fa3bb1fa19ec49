package engine

import (
	"errors"
	"fmt"
)

// MatchError represents a failure of a match session's terminal call.
//
// Match errors include:
//   - Uninitialized: terminal call before the backend finished setup
//   - Empty registry: Run with no branches
//   - No match: every branch evaluated, none matched
//   - Predicate failed: a predicate returned an error
//   - Incomplete branch: a When was left without To/Map, or a stale handle was reused
//   - Session consumed: a second terminal call on the same session
//   - Backend failed: the backend loader failed or returned a bad index
//
// MatchError compares equal under errors.Is to any MatchError with the same Code,
// so the package-level sentinels can be used as targets.
type MatchError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Branch is the index of the failing branch, or -1.
	Branch int

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes match errors.
type ErrorCode string

const (
	ErrCodeUninitialized    ErrorCode = "UNINITIALIZED"
	ErrCodeEmptyRegistry    ErrorCode = "EMPTY_REGISTRY"
	ErrCodeNoMatch          ErrorCode = "NO_MATCH"
	ErrCodePredicateFailed  ErrorCode = "PREDICATE_FAILED"
	ErrCodeIncompleteBranch ErrorCode = "INCOMPLETE_BRANCH"
	ErrCodeSessionConsumed  ErrorCode = "SESSION_CONSUMED"
	ErrCodeBackendFailed    ErrorCode = "BACKEND_FAILED"
)

// Sentinels for errors.Is. Only Code is compared.
var (
	ErrUninitialized    = &MatchError{Code: ErrCodeUninitialized, Message: "backend not initialized", Branch: -1}
	ErrEmptyRegistry    = &MatchError{Code: ErrCodeEmptyRegistry, Message: "no branches registered", Branch: -1}
	ErrNoMatch          = &MatchError{Code: ErrCodeNoMatch, Message: "no branch matched", Branch: -1}
	ErrPredicateFailed  = &MatchError{Code: ErrCodePredicateFailed, Message: "predicate failed", Branch: -1}
	ErrIncompleteBranch = &MatchError{Code: ErrCodeIncompleteBranch, Message: "branch staged without an outcome", Branch: -1}
	ErrSessionConsumed  = &MatchError{Code: ErrCodeSessionConsumed, Message: "session already consumed", Branch: -1}
	ErrBackendFailed    = &MatchError{Code: ErrCodeBackendFailed, Message: "backend failed", Branch: -1}
)

// Error implements the error interface.
func (e *MatchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Branch >= 0 {
		msg = fmt.Sprintf("%s (branch=%d)", msg, e.Branch)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MatchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a MatchError with the same Code.
func (e *MatchError) Is(target error) bool {
	var t *MatchError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the MatchError code carried by err, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsNoMatch returns true if the error is a no-match error.
func IsNoMatch(err error) bool {
	return CodeOf(err) == ErrCodeNoMatch
}

// IsPredicateError returns true if a predicate failed during evaluation.
func IsPredicateError(err error) bool {
	return CodeOf(err) == ErrCodePredicateFailed
}

// IsUsageError returns true for errors caused by misusing a session or engine
// rather than by the subject being matched.
func IsUsageError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeUninitialized, ErrCodeEmptyRegistry, ErrCodeIncompleteBranch, ErrCodeSessionConsumed:
		return true
	}
	return false
}

// NewPredicateError wraps a predicate failure for the given branch.
func NewPredicateError(branch int, err error) *MatchError {
	return &MatchError{
		Code:    ErrCodePredicateFailed,
		Message: "predicate returned an error",
		Branch:  branch,
		Err:     err,
	}
}

// NewNoMatchError creates a MatchError for an exhausted registry.
func NewNoMatchError(evaluated int) *MatchError {
	return &MatchError{
		Code:    ErrCodeNoMatch,
		Message: fmt.Sprintf("no branch matched (%d evaluated)", evaluated),
		Branch:  -1,
	}
}

// NewUsageError creates a MatchError for builder misuse.
func NewUsageError(code ErrorCode, message string) *MatchError {
	return &MatchError{Code: code, Message: message, Branch: -1}
}

// NewBackendError wraps a backend failure.
func NewBackendError(message string, err error) *MatchError {
	return &MatchError{Code: ErrCodeBackendFailed, Message: message, Branch: -1, Err: err}
}
