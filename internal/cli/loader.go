package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/token"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/roach88/pmatch/internal/table"
)

// LoadError represents an error that occurred while loading a table.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
// Table validation codes (E2xx) come from the table package.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeUnsupported   = "E003" // Not a table file
	ErrCodeLoadFailed    = "E004" // Table parse failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeCUE           = "E006" // CUE evaluation failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeCompileFailed = "E008" // Predicate or transform failed to compile
	ErrCodeBadSubject    = "E009" // Subject is not valid JSON data
	ErrCodeDatabase      = "E010" // Journal database error
)

// LoadTable reads one table from a YAML or CUE file.
func LoadTable(path, name string) (*table.Table, *LoadError) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("table file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing table file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("is a directory: %s", path)}
	}
	if !table.IsTableFile(path) {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported table file (want .yaml, .yml or .cue): %s", path)}
	}

	t, err := table.Load(path, name)
	if err != nil {
		return nil, convertLoadError(err)
	}
	return t, nil
}

// convertLoadError converts a table load error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var compileErr *table.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCUE,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// FindFiles returns the files under dir matching the doublestar pattern,
// as paths joined onto dir, sorted.
func FindFiles(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	return files, nil
}
