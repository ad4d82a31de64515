package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with an isolated parameter file and no .env file
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args,
		"--params-file", filepath.Join(dir, "noiser_parameters.json"),
		"--env-file", "",
		"--output-dir", dir,
	))
	err := cmd.Execute()
	return out.String(), err
}

func TestSampleCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "sample", "1,2", "--stream", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "0.4755286006364264")

	out, err = execute(t, t.TempDir(), "sample", "1,2", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "[0.4755286006364264 ")
}

func TestSampleCommandRejectsBadPoint(t *testing.T) {
	_, err := execute(t, t.TempDir(), "sample", "1,x")
	assert.Error(t, err)
}

func TestNoiseCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "noise", "0,0", "1,2")
	require.NoError(t, err)
	assert.Contains(t, out, "0.942105041310229")
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "none")
}

func TestNoiseCommandSummary(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "noise", "--samples", "500", "--graph")
	require.NoError(t, err)
	assert.Contains(t, out, "added outliers")
	assert.FileExists(t, filepath.Join(dir, "noise_histogram.png"))
}

func TestNoiseCommandNeedsInput(t *testing.T) {
	_, err := execute(t, t.TempDir(), "noise")
	assert.Error(t, err)
}

func TestParamsCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "params", "show", "--p-subtract", "0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "flag")
	assert.Contains(t, out, "NOISER_P_SUBTRACT")

	_, err = execute(t, dir, "params", "dump", "--p-subtract", "0.3")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "noiser_parameters.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "p_subtract")

	out, err = execute(t, dir, "params", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "file")
	assert.Contains(t, out, "0.3")
}

func TestRunAndVerify(t *testing.T) {
	dir := t.TempDir()
	trajectory := filepath.Join(dir, "run.json")

	out, err := execute(t, dir, "run", "--budget", "30", "--optimizer", "compass", "--trajectory", trajectory, "--graph")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN SUMMARY")
	assert.FileExists(t, trajectory)

	charts, err := filepath.Glob(filepath.Join(dir, "chart_*.html"))
	require.NoError(t, err)
	assert.Len(t, charts, 1)

	// the trajectory carries its own noise parameters
	out, err = execute(t, dir, "verify", trajectory, "--points", "20", "--p-add", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "0 mismatches")
	assert.Equal(t, 2, strings.Count(out, "0 mismatches"))
}

func TestSweepCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "sweep", "--budget", "10", "--min", "0", "--max", "0.2", "--step", "0.1", "--graph")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4)
	assert.FileExists(t, filepath.Join(dir, "sweep_sphere_d02.html"))
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := execute(t, t.TempDir(), "params", "show", "--p-add=-1")
	assert.Error(t, err)

	_, err = execute(t, t.TempDir(), "run", "--problem", "nope")
	assert.Error(t, err)

	_, err = execute(t, t.TempDir(), "sample", "--log-level", "loud")
	assert.Error(t, err)
}
