package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes a fresh root command with args, returning stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestEstimateCommandReportsSizes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt": "hello",
		"b.txt": "world!",
	})

	out, err := runCLI(t, dir,
		"--budget", "0s", "--workers", "1", "--no-history", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Uncompressed size:")
	assert.Contains(t, out, "(11 bytes)")
	assert.Contains(t, out, "Compressed size:")
	assert.Contains(t, out, "1 samples")
	assert.Contains(t, out, "stddev 0 bytes", "a single sample has zero deviation")
}

func TestEstimateCommandEmptyDirectory(t *testing.T) {
	out, err := runCLI(t, t.TempDir(),
		"--budget", "0s", "--workers", "1", "--no-history", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "(0 bytes)")
	assert.Contains(t, out, "1 samples")
}

func TestEstimateCommandHonorsIgnoreRules(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		".gitignore": "*.bin\n",
		"note.txt":   "some notes",
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.bin"),
		[]byte{0x00, 0xFF, 0x01}, 0644))

	// Eligible: .gitignore (7 bytes) + note.txt (10 bytes).
	out, err := runCLI(t, dir,
		"--budget", "0s", "--workers", "1", "--no-history", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "(17 bytes)")
}

func TestEstimateCommandUnknownAlgorithm(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "hello"})

	_, err := runCLI(t, dir, "--algorithm", "paq", "--budget", "0s", "--no-history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported compression algorithm")
}

func TestEstimateCommandMissingDirectory(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "absent"),
		"--budget", "0s", "--no-history")
	assert.Error(t, err)
}

func TestEstimateCommandReadsConfigFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		".shrinkrate.yaml": "algorithm: gzip\nbudget: 0s\nworkers: 1\nhistory: false\nlog_level: error\n",
		"a.txt":            "hello world hello world",
	})

	out, err := runCLI(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 samples")
}

func TestHistoryRoundTrip(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt": "hello compression history",
	})

	// Run with history recording enabled.
	_, err := runCLI(t, dir,
		"--budget", "0s", "--workers", "1", "--log-level", "error")
	require.NoError(t, err)

	// The database lands under the scanned root.
	_, statErr := os.Stat(filepath.Join(dir, ".shrinkrate", "history.db"))
	require.NoError(t, statErr)

	out, err := runCLI(t, "history", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "zstd")
	assert.Contains(t, out, "1 run(s)")
}

func TestHistoryEmpty(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "history", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded runs")
}

func TestHistoryExport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt": "export me",
	})

	_, err := runCLI(t, dir,
		"--budget", "0s", "--workers", "1", "--log-level", "error")
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "runs.yaml")
	out, err := runCLI(t, "history", "export", dir, "--output", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 run(s)")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "algorithm: zstd")
	assert.Contains(t, string(data), "uncompressed_size: 9")
}
