package pmatch

import "github.com/roach88/pmatch/internal/engine"

// MatchError is the error type returned by terminal calls.
type MatchError = engine.MatchError

// ErrorCode categorizes a MatchError.
type ErrorCode = engine.ErrorCode

const (
	CodeUninitialized    = engine.ErrCodeUninitialized
	CodeEmptyRegistry    = engine.ErrCodeEmptyRegistry
	CodeNoMatch          = engine.ErrCodeNoMatch
	CodePredicateFailed  = engine.ErrCodePredicateFailed
	CodeIncompleteBranch = engine.ErrCodeIncompleteBranch
	CodeSessionConsumed  = engine.ErrCodeSessionConsumed
	CodeBackendFailed    = engine.ErrCodeBackendFailed
)

// Sentinels for errors.Is.
var (
	ErrUninitialized    = engine.ErrUninitialized
	ErrEmptyRegistry    = engine.ErrEmptyRegistry
	ErrNoMatch          = engine.ErrNoMatch
	ErrPredicateFailed  = engine.ErrPredicateFailed
	ErrIncompleteBranch = engine.ErrIncompleteBranch
	ErrSessionConsumed  = engine.ErrSessionConsumed
	ErrBackendFailed    = engine.ErrBackendFailed
)

// CodeOf returns the MatchError code carried by err, or "".
func CodeOf(err error) ErrorCode { return engine.CodeOf(err) }

// IsNoMatch returns true if every branch was evaluated without a match.
func IsNoMatch(err error) bool { return engine.IsNoMatch(err) }

// IsPredicateError returns true if a predicate failed during evaluation.
func IsPredicateError(err error) bool { return engine.IsPredicateError(err) }

// IsUsageError returns true if err reports misuse of a session or engine.
func IsUsageError(err error) bool { return engine.IsUsageError(err) }
