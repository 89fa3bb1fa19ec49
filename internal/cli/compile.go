package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pmatch/internal/ir"
	"github.com/roach88/pmatch/internal/table"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Name   string // table name within a multi-table CUE file
	Output string // output file path
}

// CompilationResult describes a compiled table.
type CompilationResult struct {
	Name         string `json:"name"`
	Hash         string `json:"hash"`
	Rules        int    `json:"rules"`
	HasOtherwise bool   `json:"has_otherwise"`
	Definition   any    `json:"definition"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <table-file>",
		Short: "Compile a decision table to canonical JSON",
		Long: `Load a YAML or CUE decision table, validate it, compile every
predicate and transform, and print its canonical JSON definition and hash.

Tables with the same content hash identically whichever format they were
written in.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "table to select from a CUE file defining several")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	program, err := loadProgram(formatter, path, opts.Name)
	if err != nil {
		return err
	}

	t := program.Table()
	def := t.Definition()
	canonical, err := ir.MarshalCanonical(def)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("canonical encoding: %v", err), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, canonical, 0644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote %d bytes to %s", len(canonical), opts.Output)
	}

	result := CompilationResult{
		Name:         t.Name,
		Hash:         program.Hash(),
		Rules:        len(t.Rules),
		HasOtherwise: t.HasOtherwise,
		Definition:   def,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	otherwise := "no otherwise"
	if t.HasOtherwise {
		otherwise = "with otherwise"
	}
	fmt.Fprintf(w, "✓ Compiled table %s: %d rule(s), %s\n", t.Name, len(t.Rules), otherwise)
	fmt.Fprintf(w, "hash: %s\n", program.Hash())
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote canonical table to %s\n", opts.Output)
	} else {
		fmt.Fprintln(w, string(canonical))
	}
	return nil
}

// loadProgram loads, validates and compiles a table, reporting any failure
// through formatter as a command error.
func loadProgram(formatter *OutputFormatter, path, name string) (*table.Program, error) {
	t, loadErr := LoadTable(path, name)
	if loadErr != nil {
		return nil, outputLoadError(formatter, loadErr)
	}
	formatter.VerboseLog("Loaded table %s (%d rules) from %s", t.Name, len(t.Rules), path)

	if errs := table.Validate(t); len(errs) > 0 {
		return nil, outputValidationErrors(formatter, t.Name, errs, ExitCommandError)
	}

	program, err := table.Compile(t)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeCompileFailed, err.Error(), nil)
	}
	return program, nil
}

// outputLoadError reports a LoadError, with its CUE position when known.
func outputLoadError(formatter *OutputFormatter, loadErr *LoadError) error {
	var details any
	message := loadErr.Message
	if pos := loadErr.Pos; pos.IsValid() {
		details = map[string]any{
			"file":   pos.Filename(),
			"line":   pos.Line(),
			"column": pos.Column(),
		}
		message = fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), message)
	}
	return outputCommandError(formatter, loadErr.Code, message, details)
}

// outputCommandError outputs a single command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
