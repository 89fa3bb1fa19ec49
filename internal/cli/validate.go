package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pmatch/internal/table"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Table  string                  `json:"table,omitempty"`
	Errors []table.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "validate <table-file>",
		Short: "Validate a decision table without evaluating it",
		Long: `Validate a YAML or CUE decision table.

Reports every structural problem at once (missing outcomes, conflicting
conditions, duplicate rule names), then compiles each predicate and
transform so syntax errors surface before evaluation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], name, cmd)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "table to select from a CUE file defining several")

	return cmd
}

func runValidate(opts *RootOptions, path, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	t, loadErr := LoadTable(path, name)
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}

	if errs := table.Validate(t); len(errs) > 0 {
		return outputValidationErrors(formatter, t.Name, errs, ExitFailure)
	}

	formatter.VerboseLog("Structure valid, compiling %d rule(s)", len(t.Rules))
	if _, err := table.Compile(t); err != nil {
		return outputValidationErrors(formatter, t.Name, []table.ValidationError{{
			Field:   "compile",
			Message: err.Error(),
			Code:    ErrCodeCompileFailed,
		}}, ExitFailure)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Table: t.Name})
	}

	fmt.Fprintf(formatter.Writer, "✓ Table %s valid\n", t.Name)
	return nil
}

// outputValidationErrors outputs every validation error and returns an
// ExitError with exitCode.
func outputValidationErrors(formatter *OutputFormatter, tableName string, errs []table.ValidationError, exitCode int) error {
	exitErr := NewExitError(exitCode, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Table: tableName, Errors: errs}
		if err := formatter.Failure(result, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}

	return exitErr
}
