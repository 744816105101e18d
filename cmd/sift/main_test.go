package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnnotate_MissingDumpReturnsError(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pages.db")
	_, err := execute(t, "annotate", filepath.Join(t.TempDir(), "absent.xml"), "--db", db, "--output", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open dump")
}

func TestAnnotateThenLookup(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "pages.db")
	outPath := filepath.Join(dir, "out.jsonl")
	sample := filepath.Join("..", "..", "internal", "dump", "testdata", "sample.xml")

	_, err := execute(t, "annotate", sample, "--db", db, "--output", outPath, "--workers", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], `{"id":13692155,"title":"Philosophy"`))

	out, err := execute(t, "lookup", "Philosophical", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"title":"Philosophy"`)
	assert.Contains(t, out, "first link: Existence\n")

	out, err = execute(t, "stats", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "redirects")
}
