package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchError_Format(t *testing.T) {
	err := NewPredicateError(2, errors.New("boom"))
	assert.Equal(t, "PREDICATE_FAILED: predicate returned an error (branch=2): boom", err.Error())

	err = NewNoMatchError(3)
	assert.Equal(t, "NO_MATCH: no branch matched (3 evaluated)", err.Error())
}

func TestMatchError_IsComparesCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNoMatchError(1))
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.NotErrorIs(t, err, ErrEmptyRegistry)
	assert.True(t, IsNoMatch(err))
	assert.False(t, IsPredicateError(err))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeSessionConsumed, CodeOf(NewUsageError(ErrCodeSessionConsumed, "x")))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsUsageError(t *testing.T) {
	testCases := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeUninitialized, true},
		{ErrCodeEmptyRegistry, true},
		{ErrCodeIncompleteBranch, true},
		{ErrCodeSessionConsumed, true},
		{ErrCodeNoMatch, false},
		{ErrCodePredicateFailed, false},
		{ErrCodeBackendFailed, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, IsUsageError(NewUsageError(tc.code, "x")))
		})
	}
}
