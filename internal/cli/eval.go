package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/journal"
	"github.com/roach88/pmatch/internal/store"
	"github.com/roach88/pmatch/internal/table"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Name        string
	Subject     string // JSON text, or "-" for stdin
	SubjectFile string
	Database    string // optional journal
}

// EvalResult is the outcome of one evaluation.
type EvalResult struct {
	Table        string `json:"table"`
	Hash         string `json:"hash"`
	Rule         int    `json:"rule"`
	RuleName     string `json:"rule_name,omitempty"`
	Fallback     bool   `json:"fallback"`
	Result       any    `json:"result"`
	SessionID    string `json:"session_id,omitempty"`
	EvaluationID string `json:"evaluation_id,omitempty"`
	Seq          int64  `json:"seq,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <table-file>",
		Short: "Evaluate a JSON subject against a decision table",
		Long: `Evaluate one JSON subject against a decision table and print the
winning rule and its result. Rules are tried in order; the first match wins.

With --db, the evaluation is journaled (failures included) so it can be
listed with 'pmatch history' and checked with 'pmatch replay'.

Exit codes:
  0 - A rule (or otherwise) matched
  1 - No rule matched, or a predicate or transform failed
  2 - Command error (bad table, invalid subject, database error)

Examples:
  pmatch eval http.yaml --subject '{"status": 404}'
  echo '{"status": 503}' | pmatch eval http.cue --subject -
  pmatch eval http.yaml --subject-file resp.json --db ./pmatch.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "table to select from a CUE file defining several")
	cmd.Flags().StringVarP(&opts.Subject, "subject", "s", "", `subject as JSON ("-" reads stdin)`)
	cmd.Flags().StringVarP(&opts.SubjectFile, "subject-file", "f", "", "read the subject from a JSON file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the evaluation to this SQLite database")
	cmd.MarkFlagsMutuallyExclusive("subject", "subject-file")
	cmd.MarkFlagsOneRequired("subject", "subject-file")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
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

	subject, err := readSubject(opts, cmd.InOrStdin())
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadSubject, err.Error(), nil)
	}

	result := EvalResult{
		Table: program.Table().Name,
		Hash:  program.Hash(),
	}

	var (
		decision table.Decision
		evalErr  error
	)
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
		}
		defer st.Close()

		rec, err := journal.NewRecorder(ctx, program, st,
			journal.WithLogger(newLogger(opts.RootOptions, formatter.GetErrWriter())))
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
		}

		var ev store.Evaluation
		decision, ev, evalErr = rec.Evaluate(ctx, subject)
		if evalErr != nil && table.ErrorCode(evalErr) == "ERROR" {
			return outputCommandError(formatter, ErrCodeDatabase, evalErr.Error(), nil)
		}
		result.SessionID = ev.SessionID
		result.EvaluationID = ev.ID
		result.Seq = ev.Seq
		formatter.VerboseLog("Journaled evaluation %s (session %s, seq %d)", ev.ID, ev.SessionID, ev.Seq)
	} else {
		decision, evalErr = program.Evaluate(subject)
	}

	if evalErr != nil {
		code := table.ErrorCode(evalErr)
		_ = formatter.Error(code, evalErr.Error(), evalDetails(result))
		return WrapExitError(ExitFailure, "evaluation failed", evalErr)
	}

	result.Rule = decision.Index
	result.RuleName = decision.Rule
	result.Fallback = decision.Fallback
	result.Result = decision.Result

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputEvalText(formatter, result)
}

// readSubject decodes the subject from --subject, stdin or --subject-file.
func readSubject(opts *EvalOptions, stdin io.Reader) (any, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case opts.SubjectFile != "":
		data, err = os.ReadFile(opts.SubjectFile)
	case opts.Subject == "-":
		data, err = io.ReadAll(stdin)
	default:
		data = []byte(opts.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("reading subject: %w", err)
	}

	subject, err := ir.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return subject, nil
}

// evalDetails keeps journal identifiers visible when evaluation fails.
func evalDetails(r EvalResult) any {
	if r.EvaluationID == "" {
		return nil
	}
	return map[string]any{"session_id": r.SessionID, "evaluation_id": r.EvaluationID, "seq": r.Seq}
}

func outputEvalText(formatter *OutputFormatter, r EvalResult) error {
	result, err := ir.MarshalCanonical(r.Result)
	if err != nil {
		return err
	}

	w := formatter.Writer
	if r.Fallback {
		fmt.Fprintf(w, "otherwise: %s\n", result)
	} else if r.RuleName != "" {
		fmt.Fprintf(w, "rule %d (%s): %s\n", r.Rule, r.RuleName, result)
	} else {
		fmt.Fprintf(w, "rule %d: %s\n", r.Rule, result)
	}

	if r.EvaluationID != "" {
		fmt.Fprintf(w, "journaled: %s (session %s, seq %d)\n", r.EvaluationID, r.SessionID, r.Seq)
	}
	return nil
}
