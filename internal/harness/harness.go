package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/journal"
	"github.com/roach88/pmatch/internal/store"
	"github.com/roach88/pmatch/internal/table"
	"github.com/roach88/pmatch/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and session id.
type Harness struct {
	store    *store.Store
	recorder *journal.Recorder
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// The returned error covers setup problems (unreadable table, invalid
// rules); case mismatches are reported through Result.Errors.
//
// Execution flow:
// 1. Load and compile the table
// 2. Create fresh in-memory database and recorder
// 3. Evaluate every case and check its expectation
// 4. Evaluate assertions over the trace and journal
func Run(scenario *Scenario) (*Result, error) {
	tbl, err := scenario.loadTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	program, err := table.Compile(tbl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile table: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	recorder, err := journal.NewRecorder(ctx, program, st,
		journal.WithClock(testutil.NewDeterministicClock()),
		journal.WithSessionIDGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		journal.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder: %w", err)
	}

	h := &Harness{store: st, recorder: recorder, logger: logger}

	result := NewResult()
	result.TableHash = program.Hash()

	if err := h.executeCases(ctx, scenario.Cases, result); err != nil {
		return nil, fmt.Errorf("failed to execute cases: %w", err)
	}

	actx := &AssertionContext{
		Store:     st,
		Ctx:       ctx,
		SessionID: recorder.SessionID(),
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// executeCases evaluates each case through the recorder and validates its
// expect clause.
func (h *Harness) executeCases(ctx context.Context, cases []Case, result *Result) error {
	for i := range cases {
		c := &cases[i]

		subject, err := decodeNode(&c.Subject)
		if err != nil {
			return fmt.Errorf("case %d: subject: %w", i, err)
		}

		_, ev, err := h.recorder.Evaluate(ctx, subject)
		if err != nil && ev.ID == "" {
			// Nothing was journaled: the subject itself was unusable.
			return fmt.Errorf("case %d: %w", i, err)
		}

		event := TraceEvent{
			Case:     i,
			Name:     c.Name,
			Seq:      ev.Seq,
			Subject:  ev.Subject,
			Rule:     ev.RuleIndex,
			RuleName: ev.RuleName,
			Fallback: ev.Fallback,
			Result:   ev.Result,
			Error:    ev.ErrorCode,
		}
		result.AddTrace(event)

		if msg, err := checkExpect(c.Expect, event); err != nil {
			return fmt.Errorf("case %d: expect: %w", i, err)
		} else if msg != "" {
			result.AddError(fmt.Sprintf("case %d%s: %s", i, caseLabel(c.Name), msg))
		}

		h.logger.Info("case evaluated",
			"case", i,
			"seq", ev.Seq,
			"rule", ev.RuleIndex,
			"error_code", ev.ErrorCode,
		)
	}
	return nil
}

// checkExpect returns a failure message, or "" if the event meets expect.
func checkExpect(expect Expect, event TraceEvent) (string, error) {
	if expect.Error != "" {
		if event.Error != expect.Error {
			return fmt.Sprintf("expected error %s, got %s", expect.Error, describe(event)), nil
		}
	} else {
		want, err := decodeNode(&expect.Result)
		if err != nil {
			return "", err
		}
		if event.Error != "" {
			return fmt.Sprintf("expected result %v, got %s", want, describe(event)), nil
		}
		if !reflect.DeepEqual(want, event.Result) {
			return fmt.Sprintf("expected result %#v, got %#v", want, event.Result), nil
		}
	}

	if expect.Rule != "" && event.RuleName != expect.Rule {
		return fmt.Sprintf("expected rule %q, got %q", expect.Rule, event.RuleName), nil
	}
	if expect.Fallback != nil && event.Fallback != *expect.Fallback {
		return fmt.Sprintf("expected fallback=%t, got %t", *expect.Fallback, event.Fallback), nil
	}
	return "", nil
}

func describe(event TraceEvent) string {
	if event.Error != "" {
		return "error " + event.Error
	}
	return fmt.Sprintf("result %#v", event.Result)
}

func caseLabel(name string) string {
	if name == "" {
		return ""
	}
	return " (" + name + ")"
}

// decodeNode converts a YAML node to canonical data.
func decodeNode(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return ir.Canonicalize(v)
}
