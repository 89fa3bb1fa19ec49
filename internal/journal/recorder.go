package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/store"
	"github.com/roach88/pmatch/internal/table"
)

// Recorder evaluates subjects against a program and journals every outcome,
// including failures.
//
// Thread-safety: Evaluate may be called concurrently; seq values stay unique
// because the store serializes writes and the clock is atomic.
type Recorder struct {
	program   *table.Program
	store     *store.Store
	clock     Sequencer
	sessionID string
	logger    *slog.Logger
}

// Option configures a Recorder.
type Option func(*recorderConfig)

type recorderConfig struct {
	clock  Sequencer
	ids    SessionIDGenerator
	logger *slog.Logger
}

// WithClock replaces the journal-resuming clock.
func WithClock(c Sequencer) Option {
	return func(cfg *recorderConfig) { cfg.clock = c }
}

// WithSessionIDGenerator replaces the UUIDv7 session id generator.
func WithSessionIDGenerator(g SessionIDGenerator) Option {
	return func(cfg *recorderConfig) { cfg.ids = g }
}

// WithLogger sets the logger used for journal diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *recorderConfig) { cfg.logger = l }
}

// NewRecorder creates a Recorder with a fresh session id. Unless a clock is
// supplied, seq resumes after the highest seq already in the store.
func NewRecorder(ctx context.Context, p *table.Program, st *store.Store, opts ...Option) (*Recorder, error) {
	cfg := recorderConfig{ids: UUIDv7Generator{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.clock == nil {
		next, err := st.NextSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("new recorder: %w", err)
		}
		cfg.clock = NewClockAt(next - 1)
	}

	return &Recorder{
		program:   p,
		store:     st,
		clock:     cfg.clock,
		sessionID: cfg.ids.Generate(),
		logger:    cfg.logger,
	}, nil
}

// SessionID returns the id shared by every evaluation this Recorder writes.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Evaluate runs subject through the program and journals the outcome.
//
// The decision and evaluation error are returned as Program.Evaluate
// returns them. A journal failure is returned instead of the evaluation
// error, since the caller must know the record is missing.
func (r *Recorder) Evaluate(ctx context.Context, subject any) (table.Decision, store.Evaluation, error) {
	// Evaluate exactly what the journal will hold, so replays see the same subject.
	canonical, err := ir.Canonicalize(subject)
	if err != nil {
		return table.Decision{Index: -1}, store.Evaluation{}, fmt.Errorf("record: subject is not canonical data: %w", err)
	}
	subjectHash, err := ir.SubjectHash(canonical)
	if err != nil {
		return table.Decision{Index: -1}, store.Evaluation{}, fmt.Errorf("record: %w", err)
	}

	seq := r.clock.Next()
	decision, evalErr := r.program.Evaluate(canonical)

	ev := store.Evaluation{
		SessionID:     r.sessionID,
		TableName:     r.program.Table().Name,
		TableHash:     r.program.Hash(),
		Subject:       canonical,
		SubjectHash:   subjectHash,
		Seq:           seq,
		RuleIndex:     decision.Index,
		RuleName:      decision.Rule,
		Result:        decision.Result,
		Fallback:      decision.Fallback,
		EngineVersion: ir.EngineVersion,
		FormatVersion: ir.FormatVersion,
	}
	if evalErr != nil {
		ev.Result = nil
		ev.ErrorCode = table.ErrorCode(evalErr)
		ev.ErrorMessage = evalErr.Error()
	}

	ev.ID, err = ir.EvaluationID(ev.SessionID, ev.TableHash, ev.SubjectHash, ev.Seq)
	if err != nil {
		return decision, ev, fmt.Errorf("record: %w", err)
	}

	if err := r.store.WriteEvaluation(ctx, ev); err != nil {
		r.logger.Error("evaluation not journaled",
			"session", r.sessionID,
			"seq", seq,
			"error", err,
		)
		return decision, ev, fmt.Errorf("record: %w", err)
	}

	r.logger.Debug("evaluation journaled",
		"session", r.sessionID,
		"seq", seq,
		"rule", decision.Index,
		"error_code", ev.ErrorCode,
	)

	return decision, ev, evalErr
}
