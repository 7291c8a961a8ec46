package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	doc := write(t, dir, "invoice.txt", "Invoice # INV-7\nTotal: $40.00\n")
	rulesPath := write(t, dir, "rules.yaml", `rules:
  - field_name: Total
    extraction_type: after_pattern
    search_pattern: "Total:"
    context_after: "\\n"
`)

	t.Run("Should print matches as json", func(t *testing.T) {
		out, err := run(t, "extract", doc, "-r", rulesPath, "-f", "json", "--log-level", "error")
		require.NoError(t, err)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "$40.00", rows[0]["value"])
		assert.Equal(t, "Total", rows[0]["field_name"])
	})

	t.Run("Should print page text without rules", func(t *testing.T) {
		out, err := run(t, "extract", doc, "-r", "", "-f", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "--- page 1 (TXT) ---")
		assert.Contains(t, out, "Invoice # INV-7")
	})

	t.Run("Should require an output file for xlsx", func(t *testing.T) {
		_, err := run(t, "extract", doc, "-r", rulesPath, "-f", "xlsx", "-o", "")
		assert.ErrorContains(t, err, "--output")
	})
}

func TestRulesCommands(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "rules.xlsx")

	out, err := run(t, "rules", "template", tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+tmpl)

	out, err = run(t, "rules", "validate", tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	bad := write(t, dir, "bad.json", `[{"field_name":"X","extraction_type":"regex","search_pattern":"("}]`)
	out, err = run(t, "rules", "validate", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "INVALID")
}

func TestStoredWorkflow(t *testing.T) {
	dir := t.TempDir()
	db := "file:" + filepath.Join(dir, "test.db") + "?_pragma=foreign_keys(1)"
	rulesPath := write(t, dir, "rules.json", `[{"field_name":"Ref","extraction_type":"regex","search_pattern":"REF-\\d+"}]`)
	inbox := filepath.Join(dir, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	write(t, inbox, "a.txt", "see REF-1 and REF-2")
	write(t, inbox, "b.txt", "nothing here")

	_, err := run(t, "rules", "import", rulesPath, "--db", db, "--log-level", "error")
	require.NoError(t, err)

	out, err := run(t, "ingest", inbox, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "matched=2 succeeded=2")

	out, err = run(t, "results", "--db", db, "-f", "json")
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "REF-1", rows[0]["value"])

	xlsx := filepath.Join(dir, "out.xlsx")
	out, err = run(t, "export", "--db", db, "-o", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 results")
	assert.FileExists(t, xlsx)
}
