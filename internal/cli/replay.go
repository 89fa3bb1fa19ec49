package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/journal"
	"github.com/roach88/pmatch/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
	Name     string
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Table      string                 `json:"table"`
	Hash       string                 `json:"hash"`
	Sessions   []journal.ReplayReport `json:"sessions"`
	Drifts     int                    `json:"drifts"`
	Consistent bool                   `json:"consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <table-file>",
		Short: "Re-evaluate journaled subjects and report drift",
		Long: `Re-evaluate every journaled subject against a table and report
subjects whose outcome (winning rule, result or error code) changed.

Without --session, every session recorded for the table's name is replayed.
Nothing is written to the journal.

Exit codes:
  0 - Every outcome is unchanged
  1 - At least one outcome drifted
  2 - Command error (bad table, database not found, unknown session)

Examples:
  pmatch replay http.yaml --db ./pmatch.db
  pmatch replay http.yaml --db ./pmatch.db --session 01890a5d-...
  pmatch replay http.yaml --db ./pmatch.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")
	cmd.Flags().StringVar(&opts.Name, "name", "", "table to select from a CUE file defining several")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	program, err := loadProgram(formatter, path, opts.Name)
	if err != nil {
		return err
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	sessions, err := replaySessions(ctx, st, opts.Session, program.Table().Name)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}

	result := ReplayResult{
		Table:      program.Table().Name,
		Hash:       program.Hash(),
		Sessions:   make([]journal.ReplayReport, 0, len(sessions)),
		Consistent: true,
	}

	for _, id := range sessions {
		formatter.VerboseLog("Replaying session %s", id)
		report, err := journal.Replay(ctx, st, program, id)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		result.Sessions = append(result.Sessions, report)
		result.Drifts += len(report.Drifts)
	}
	result.Consistent = result.Drifts == 0

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replaySessions resolves which sessions to replay.
func replaySessions(ctx context.Context, st *store.Store, session, tableName string) ([]string, error) {
	if session != "" {
		return []string{session}, nil
	}

	summaries, err := st.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, s := range summaries {
		if s.TableName == tableName {
			ids = append(ids, s.SessionID)
		}
	}
	return ids, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	if result.Consistent {
		return formatter.Success(result)
	}

	msg := fmt.Sprintf("%d outcome(s) drifted", result.Drifts)
	if err := formatter.Failure(result, "E_DRIFT", msg); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	if len(result.Sessions) == 0 {
		fmt.Fprintf(w, "No sessions found for table %s.\n", result.Table)
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: table %s, %d session(s)\n", result.Table, len(result.Sessions))
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if len(s.Drifts) > 0 {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.SessionID)
		fmt.Fprintf(w, "  Evaluations: %d, drifted: %d\n", s.Total, len(s.Drifts))
		if s.TableChanged {
			fmt.Fprintln(w, "  Note: table changed since recording")
		}
		for _, d := range s.Drifts {
			subject, _ := ir.MarshalCanonical(d.Subject)
			fmt.Fprintf(w, "  seq %d %s: %s -> %s\n", d.Seq, subject, describeOutcome(d.Before), describeOutcome(d.After))
		}
		fmt.Fprintln(w)
	}

	if result.Consistent {
		fmt.Fprintln(w, "✓ All outcomes unchanged")
		return nil
	}

	fmt.Fprintf(w, "✗ %d outcome(s) drifted\n", result.Drifts)
	return NewExitError(ExitFailure, fmt.Sprintf("%d outcome(s) drifted", result.Drifts))
}

func describeOutcome(o journal.Outcome) string {
	if o.ErrorCode != "" {
		return o.ErrorCode
	}
	result, err := ir.MarshalCanonical(o.Result)
	if err != nil {
		return fmt.Sprintf("rule %d", o.RuleIndex)
	}
	return fmt.Sprintf("rule %d %s", o.RuleIndex, result)
}
