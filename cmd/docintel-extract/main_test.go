package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-docintel/internal/docintel"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
)

const aadhaarText = `GOVT OF INDIA
Remy Baastin Rayappan
DOB: 15/08/1999
Male
1234 5678 9012`

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunTextOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aadhaar.txt")
	require.NoError(t, os.WriteFile(path, []byte(aadhaarText), 0o644))

	code, stdout, stderr := runCLI(t, "", "--label", "DOB", "--label", "Blood Group", path)
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Type: Aadhaar Card (High confidence)")
	assert.Contains(t, stdout, "1234 5678 9012")
	assert.Contains(t, stdout, "Blood Group")
	assert.Contains(t, stdout, "(not found)")
}

func TestRunJSONFromStdin(t *testing.T) {
	code, stdout, stderr := runCLI(t, aadhaarText, "--form", "PAN", "--format", "json", "-")
	require.Equal(t, 0, code, stderr)

	var out Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	assert.Equal(t, "-", out.File)
	assert.Equal(t, intelligence.DocumentTypeAadhaar, out.Result.DocumentType)
	require.NotNil(t, out.Form)
	assert.Equal(t, docintel.StatusMapped, out.Form.Status)
	assert.Equal(t, "Shri", out.Form.Record["title"])
	require.NotNil(t, out.Form.Report)
	assert.Equal(t, []string{"Email ID", "Mobile Number"}, out.Form.Report.Missing)
}

func TestRunSkippedScheme(t *testing.T) {
	code, stdout, stderr := runCLI(t, aadhaarText, "--form", "Post Matric Scholarship", "-")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "not available yet")
}

func TestRunEmptyInput(t *testing.T) {
	code, stdout, _ := runCLI(t, "  \n", "-")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No text extracted.")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"no path", nil, 2, "exactly one document path"},
		{"two paths", []string{"a.txt", "b.txt"}, 2, "exactly one document path"},
		{"bad format", []string{"--format", "xml", "-"}, 2, "unsupported output format"},
		{"unknown flag", []string{"--nope", "-"}, 2, "unknown flag"},
		{"missing file", []string{filepath.Join(os.TempDir(), "does-not-exist.txt")}, 1, "Error:"},
		{"unknown scheme", []string{"--form", "Ration Card", "-"}, 1, "no form schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, aadhaarText, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestRunUnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	code, _, stderr := runCLI(t, "", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unsupported document type")
}

func TestRunHelp(t *testing.T) {
	code, _, stderr := runCLI(t, "", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "USAGE:")
	assert.Contains(t, stderr, "--label")
}

func TestRunTooLarge(t *testing.T) {
	code, _, stderr := runCLI(t, strings.Repeat("a", 64), "--max-file-size", "16", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "file too large")
}
