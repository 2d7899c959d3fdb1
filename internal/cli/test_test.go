package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

const passingScenario = `name: passing
description: outreach only
message: |
  From: jordan@acme.io
  Subject: Acme - Staff Engineer
  Date: Tue, 21 Oct 2025 09:30:00 +0000

  Hello.
assertions:
  - type: no_schedule
`

const failingScenario = `name: failing
description: wrong company
message: |
  From: jordan@acme.io
  Subject: Acme - Staff Engineer

  Hello.
assertions:
  - type: opportunity
    expect: {company: Globex}
`

func TestTest_HarnessScenariosMatchGolden(t *testing.T) {
	run := execute(t, "", "test", harnessScenarios)
	require.NoError(t, run.err, "stdout: %s", run.stdout)
	assert.Contains(t, run.stdout, "✓ scheduled_outreach")
	assert.Contains(t, run.stdout, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	run := execute(t, "", "--format", "json", "test", harnessScenarios, "--filter", "undated*")
	require.NoError(t, run.err)

	data := decodeResponse(t, run.stdout).Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["passed"])
}

func TestTest_FailureExitCode(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenarios")
	writeScenario(t, dir, "passing.yaml", passingScenario)
	writeScenario(t, dir, "failing.yaml", failingScenario)

	run := execute(t, "", "test", dir)
	require.Error(t, run.err)
	assert.Equal(t, ExitFailure, GetExitCode(run.err))
	assert.Contains(t, run.stdout, "✓ passing")
	assert.Contains(t, run.stdout, "✗ failing")
	assert.Contains(t, run.stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_UpdateWritesGolden(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	writeScenario(t, dir, "passing.yaml", passingScenario)

	run := execute(t, "", "test", dir, "--update")
	require.NoError(t, run.err)

	golden, err := os.ReadFile(filepath.Join(root, "golden", "passing.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"passing"`)

	// A second run compares against the file just written.
	run = execute(t, "", "test", dir)
	require.NoError(t, run.err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "golden", "passing.golden"), []byte("{}"), 0o644))
	run = execute(t, "", "test", dir)
	require.Error(t, run.err)
	assert.Contains(t, run.stdout, "trace does not match golden file")
}

func TestTest_MissingDirectory(t *testing.T) {
	run := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestTest_NoScenarios(t *testing.T) {
	run := execute(t, "", "test", t.TempDir())
	require.NoError(t, run.err)
	assert.Equal(t, "No scenarios found.\n", run.stdout)
}
