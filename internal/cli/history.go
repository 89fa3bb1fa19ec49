package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Session  string
	Table    string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled evaluations",
		Long: `Show the evaluation journal written by 'pmatch eval --db'.

With no selector, lists sessions. --session lists one session's
evaluations in seq order; --table lists the latest evaluations of a table.

Examples:
  pmatch history --db ./pmatch.db
  pmatch history --db ./pmatch.db --session 01890a5d-...
  pmatch history --db ./pmatch.db --table http --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show one session's evaluations")
	cmd.Flags().StringVar(&opts.Table, "table", "", "show a table's latest evaluations")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum evaluations with --table (0 for all)")
	cmd.MarkFlagsMutuallyExclusive("session", "table")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	if opts.Session == "" && opts.Table == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
		}
		if opts.Format == "json" {
			return formatter.Success(sessions)
		}
		return outputSessionsText(formatter, sessions)
	}

	var evs []store.Evaluation
	if opts.Session != "" {
		evs, err = st.ReadSession(ctx, opts.Session)
	} else {
		evs, err = st.ReadTable(ctx, opts.Table, opts.Limit)
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}

	if opts.Format == "json" {
		return formatter.Success(evs)
	}
	return outputEvaluationsText(formatter, evs)
}

// openExistingStore opens a journal database that must already exist.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}

func outputSessionsText(formatter *OutputFormatter, sessions []store.SessionSummary) error {
	if len(sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tTABLE\tEVALUATIONS\tFAILURES\tSEQ")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d-%d\n", s.SessionID, s.TableName, s.Count, s.Failures, s.FirstSeq, s.LastSeq)
	}
	return tw.Flush()
}

func outputEvaluationsText(formatter *OutputFormatter, evs []store.Evaluation) error {
	if len(evs) == 0 {
		fmt.Fprintln(formatter.Writer, "No evaluations found.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTABLE\tRULE\tOUTCOME\tSUBJECT")
	for _, ev := range evs {
		subject, _ := ir.MarshalCanonical(ev.Subject)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", ev.Seq, ev.TableName, ruleLabel(ev), outcomeLabel(ev), subject)
	}
	return tw.Flush()
}

func ruleLabel(ev store.Evaluation) string {
	switch {
	case ev.RuleIndex < 0:
		return "-"
	case ev.Fallback:
		return "otherwise"
	case ev.RuleName != "":
		return ev.RuleName
	default:
		return fmt.Sprintf("#%d", ev.RuleIndex)
	}
}

func outcomeLabel(ev store.Evaluation) string {
	if ev.Failed() {
		return ev.ErrorCode
	}
	result, err := ir.MarshalCanonical(ev.Result)
	if err != nil {
		return "?"
	}
	return string(result)
}
