package journal

import (
	"context"
	"fmt"
	"reflect"

	"github.com/roach88/pmatch/internal/store"
	"github.com/roach88/pmatch/internal/table"
)

// Outcome is the comparable part of an evaluation.
type Outcome struct {
	RuleIndex int    `json:"rule_index"`
	Result    any    `json:"result"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Drift is a recorded evaluation whose outcome changed on replay.
type Drift struct {
	ID      string  `json:"id"`
	Seq     int64   `json:"seq"`
	Subject any     `json:"subject"`
	Before  Outcome `json:"before"`
	After   Outcome `json:"after"`
}

// ReplayReport summarizes a session replay.
type ReplayReport struct {
	SessionID    string  `json:"session_id"`
	Total        int     `json:"total"`
	TableChanged bool    `json:"table_changed"`
	Drifts       []Drift `json:"drifts"`
}

// Replay re-evaluates every recorded subject of a session against p, in seq
// order, and reports outcomes that differ from the journal. Nothing is
// written to the store.
func Replay(ctx context.Context, st *store.Store, p *table.Program, sessionID string) (ReplayReport, error) {
	evs, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	if len(evs) == 0 {
		return ReplayReport{}, fmt.Errorf("replay %s: session not found", sessionID)
	}

	report := ReplayReport{
		SessionID: sessionID,
		Total:     len(evs),
		Drifts:    []Drift{},
	}

	for _, ev := range evs {
		if ev.TableHash != p.Hash() {
			report.TableChanged = true
		}

		before := Outcome{RuleIndex: ev.RuleIndex, Result: ev.Result, ErrorCode: ev.ErrorCode}

		d, evalErr := p.Evaluate(ev.Subject)
		after := Outcome{RuleIndex: d.Index, Result: d.Result, ErrorCode: table.ErrorCode(evalErr)}
		if evalErr != nil {
			after.Result = nil
		}

		if !reflect.DeepEqual(before, after) {
			report.Drifts = append(report.Drifts, Drift{
				ID:      ev.ID,
				Seq:     ev.Seq,
				Subject: ev.Subject,
				Before:  before,
				After:   after,
			})
		}
	}

	return report, nil
}
