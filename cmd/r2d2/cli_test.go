package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/caffeineduck/r2d2/guest"
	"github.com/caffeineduck/r2d2/internal/wasmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, module []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.wasm")
	require.NoError(t, os.WriteFile(path, module, 0o644))
	return path
}

func execRoot(t *testing.T, args ...string) (*rootOptions, *bytes.Buffer, error) {
	t.Helper()
	// Keep a stray user config out of the tests.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd, opts := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return opts, &stdout, err
}

func TestRunCommandPassesExitCodeThrough(t *testing.T) {
	path := writeModule(t, wasmtest.Exit(7))
	opts, _, err := execRoot(t, "run", "--module", path)

	require.NoError(t, err)
	require.NotNil(t, opts.outcome)
	assert.Equal(t, bridge.KindSuccess, opts.outcome.Kind())
	assert.Equal(t, 7, opts.outcome.ExitCode())
}

func TestRootDefaultsToRun(t *testing.T) {
	path := writeModule(t, wasmtest.Exit(0))
	opts, _, err := execRoot(t, "--module", path)

	require.NoError(t, err)
	require.NotNil(t, opts.outcome)
	assert.Equal(t, 0, opts.outcome.ExitCode())
}

func TestUsageCommandPrintsValue(t *testing.T) {
	path := writeModule(t, wasmtest.Print(`{"end":"e","payload_size":1234}`))
	opts, stdout, err := execRoot(t, "usage", "--module", path)

	require.NoError(t, err)
	assert.Equal(t, 0, opts.outcome.ExitCode())
	assert.Contains(t, stdout.String(), "usage through e")
	assert.Contains(t, stdout.String(), "1.23 kB")
}

func TestErrorCommandReportsFailure(t *testing.T) {
	path := writeModule(t, wasmtest.Noop())
	opts, _, err := execRoot(t, "error", "--module", path)

	require.NoError(t, err)
	require.NotNil(t, opts.outcome)
	assert.Equal(t, bridge.KindFailure, opts.outcome.Kind())
	assert.Equal(t, bridge.ExitFailure, opts.outcome.ExitCode())
	assert.Contains(t, opts.outcome.Err().Error(), "something went wrong mate")
}

func TestTrapBecomesAbortOutcome(t *testing.T) {
	path := writeModule(t, wasmtest.Trap())
	opts, _, err := execRoot(t, "run", "--module", path)

	require.NoError(t, err)
	assert.Equal(t, bridge.KindAbort, opts.outcome.Kind())
	assert.Equal(t, bridge.ExitAbort, opts.outcome.ExitCode())

	var buf bytes.Buffer
	opts.outcome.Diagnostic(&buf)
	assert.NotEmpty(t, buf.String())
}

func TestMissingModuleIsFailureOutcome(t *testing.T) {
	opts, _, err := execRoot(t, "run")

	require.NoError(t, err)
	require.NotNil(t, opts.outcome)
	assert.Equal(t, bridge.ExitFailure, opts.outcome.ExitCode())
	assert.Contains(t, opts.outcome.Err().Error(), "no engine module configured")
}

func TestInvalidMemoryFlag(t *testing.T) {
	_, _, err := execRoot(t, "run", "--memory", "2tb")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid memory limit")
}

func TestConfigFileSuppliesModule(t *testing.T) {
	module := writeModule(t, wasmtest.Exit(7))
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("module: "+module+"\n"), 0o644))

	opts, _, err := execRoot(t, "run", "--config", cfgPath)

	require.NoError(t, err)
	assert.Equal(t, 7, opts.outcome.ExitCode())
}

func TestParseMemoryLimit(t *testing.T) {
	cases := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"", 0, false},
		{"1mb", guest.MemoryLimit1MB, false},
		{"16MB", guest.MemoryLimit16MB, false},
		{"64mb", guest.MemoryLimit64MB, false},
		{"256mb", guest.MemoryLimit256MB, false},
		{"1gb", guest.MemoryLimit1GB, false},
		{"2tb", 0, true},
	}
	for _, tc := range cases {
		got, err := parseMemoryLimit(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "parseMemoryLimit(%q)", tc.in)
			continue
		}
		require.NoError(t, err, "parseMemoryLimit(%q)", tc.in)
		assert.Equal(t, tc.want, got, "parseMemoryLimit(%q)", tc.in)
	}
}
