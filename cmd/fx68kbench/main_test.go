package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenska/m68kbench/internal/logging"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultCatalog, opts.catalog)
	assert.Equal(t, "fx68k_main_trace.vcd", opts.traceFile)
	assert.Equal(t, 2, opts.delay)
	assert.Equal(t, "single", opts.policy)
	assert.Equal(t, logging.LevelInfo, opts.logLevel)
	assert.False(t, opts.trace)
}

func TestParseFlagsLogLevel(t *testing.T) {
	opts, err := parseFlags([]string{"--log-level", "warn"})
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, opts.logLevel)

	opts, err = parseFlags([]string{"--log-level", "error", "--verbose"})
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, opts.logLevel)
}

func TestParseFlagsRejectsBadValues(t *testing.T) {
	_, err := parseFlags([]string{"--policy", "fifo"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"--delay", "-1"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"--log-level", "trace"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"--bogus"})
	assert.Error(t, err)
}

func TestRunPassesWithGoodCatalog(t *testing.T) {
	dir := t.TempDir()
	opts, err := parseFlags([]string{
		"--catalog", writeCatalog(t, "INT,2,00000068,autovector2,12,basic level-2 IRQ\n"),
		"--program", filepath.Join(dir, "prog.asm"),
		"--trace",
		"--trace-file", filepath.Join(dir, "trace.vcd"),
		"--performance",
		"--policy", "priority",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, 0, run(opts, &out))
	assert.Contains(t, out.String(), "All tests passed")
	assert.Contains(t, out.String(), "Total tests: 1")
	assert.Contains(t, out.String(), "Time per cycle")

	info, err := os.Stat(filepath.Join(dir, "trace.vcd"))
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunFailsWithFailingScenario(t *testing.T) {
	opts, err := parseFlags([]string{
		"--catalog", writeCatalog(t, "EXCEPTION,divide_by_zero,00000014,h,12,unknown\n"),
		"--program", filepath.Join(t.TempDir(), "prog.asm"),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, 1, run(opts, &out))
	assert.Contains(t, out.String(), "Some tests failed")
}

func TestRunFailsWithUnknownScenarioKind(t *testing.T) {
	opts, err := parseFlags([]string{
		"--catalog", writeCatalog(t, "INT,2,00000068,autovector2,12,ok\nINTERRUPT,2,00000068,autovector2,12,typo kind\n"),
		"--program", filepath.Join(t.TempDir(), "prog.asm"),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, 1, run(opts, &out))
	assert.Contains(t, out.String(), "INTERRUPT")
	assert.Contains(t, out.String(), "Total tests: 2")
	assert.Contains(t, out.String(), "Failed: 1")
	assert.Contains(t, out.String(), "Some tests failed")
}

func TestRunWithMissingCatalogRunsNothing(t *testing.T) {
	opts, err := parseFlags([]string{
		"--catalog", filepath.Join(t.TempDir(), "missing.txt"),
		"--program", filepath.Join(t.TempDir(), "prog.asm"),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, 0, run(opts, &out))
	assert.Contains(t, out.String(), "Total tests: 0")
}
