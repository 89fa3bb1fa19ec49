package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/pmatch/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, describe(event))
		}
	}

	return buf.String()
}

// AssertionContext provides what journal assertions need.
type AssertionContext struct {
	Store     *store.Store
	Ctx       context.Context
	SessionID string
}

// EvaluateAssertions checks every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRuleCount:
			err = assertCount(result.Trace, a, fmt.Sprintf("rule %q", a.Rule),
				func(ev TraceEvent) bool { return ev.Error == "" && ev.RuleName == a.Rule })
		case AssertFallbackCount:
			err = assertCount(result.Trace, a, "fallback",
				func(ev TraceEvent) bool { return ev.Fallback })
		case AssertErrorCount:
			err = assertCount(result.Trace, a, "error "+a.Error,
				func(ev TraceEvent) bool { return ev.Error == a.Error })
		case AssertJournalCount:
			err = assertJournalCount(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertCount checks that exactly a.Count trace events satisfy match.
func assertCount(trace []TraceEvent, a Assertion, what string, match func(TraceEvent) bool) error {
	count := 0
	for _, ev := range trace {
		if match(ev) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, what),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertJournalCount checks the number of evaluations journaled for the
// session, failures included.
func assertJournalCount(actx *AssertionContext, a Assertion) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("journal_count assertion requires a store")
	}

	evs, err := actx.Store.ReadSession(actx.Ctx, actx.SessionID)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("read session %s", actx.SessionID),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	if len(evs) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d journaled evaluations", a.Count),
			Actual:   fmt.Sprintf("%d journaled evaluations", len(evs)),
		}
	}
	return nil
}
