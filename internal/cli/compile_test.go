package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func compileJSON(t *testing.T, path string) CompilationResult {
	t.Helper()
	out, _, err := execute(t, "", "--format", "json", "compile", path)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestCompileText(t *testing.T) {
	out, _, err := execute(t, "", "compile", httpYAML)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled table http: 4 rule(s), with otherwise")
	assert.Contains(t, out, "hash: ")
	assert.Contains(t, out, `"otherwise":"unknown"`)
}

func TestCompileJSON(t *testing.T) {
	res := compileJSON(t, httpYAML)
	assert.Equal(t, "http", res.Name)
	assert.Equal(t, 4, res.Rules)
	assert.True(t, res.HasOtherwise)
	assert.Len(t, res.Hash, 64)
}

func TestCompileYAMLAndCUEHashEqual(t *testing.T) {
	assert.Equal(t, compileJSON(t, httpYAML).Hash, compileJSON(t, httpCUE).Hash)
}

func TestCompileOutputFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "http.json")

	out, _, err := execute(t, "", "compile", httpYAML, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote canonical table to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var def map[string]any
	require.NoError(t, json.Unmarshal(data, &def))
	assert.Equal(t, "http", def["name"])
	assert.Equal(t, "unknown", def["otherwise"])
}

func TestCompileErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := writeFile(t, dir, "bad.yaml", "name: bad\nrules:\n  - name: r\n    when: 1\n")
	typo := writeFile(t, dir, "typo.yaml", "name: t\nrulez: []\n")
	txt := writeFile(t, dir, "table.txt", "name: t\n")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), "E005"},
		{"unsupported extension", txt, "E003"},
		{"unknown field", typo, "E004"},
		{"invalid table", invalid, "E204"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", "compile", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCompileCUEErrorPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", "table: t: {\n\trules: [{name: \"r\", to: 1, colour: 2}]\n}\n")

	out, _, err := execute(t, "", "--format", "json", "compile", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCUE, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unknown rule field")

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok, "details should carry the CUE position")
	assert.Equal(t, float64(2), details["line"])
}
