package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestdataScenarios(t *testing.T) []*Scenario {
	t.Helper()
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		require.NoError(t, err, "loading %s", f)
		scenarios = append(scenarios, s)
	}
	return scenarios
}

func TestScenarios_Golden(t *testing.T) {
	for _, scenario := range loadTestdataScenarios(t) {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_ReplaysRecordNothingNew(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: replay
description: three identical deliveries
replays: 2
message: |
  From: "Casey Rivera" <casey@instabase.com>
  Subject: Instabase - Senior Backend Engineer
  Date: Mon, 20 Oct 2025 16:15:00 +0000

  Are you free Thu Oct 23, 2:00 PM PT?
assertions:
  - type: event_count
    count: 3
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.Equal(t, []IngestRecord{
		{Events: 3, AuditEntries: 3},
		{Events: 0, AuditEntries: 0},
		{Events: 0, AuditEntries: 0},
	}, result.Trace.Ingests)
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: expectations that do not hold
message: |
  From: jordan@acme.io
  Subject: Acme - Staff Engineer
  Date: Tue, 21 Oct 2025 09:30:00 +0000

  No times here.
assertions:
  - type: opportunity
    expect: {company: Globex}
  - type: audit_count
    count: 1
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `company: expected "Globex", got "Acme"`)
}

func TestRun_TimezoneOverride(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: override
description: winter PT configured as -8
timezones: {PT: -8}
message: |
  From: casey@instabase.com
  Date: Mon, 1 Dec 2025 10:00:00 +0000

  How about Thu Dec 4, 2:00 PM PT?
assertions:
  - type: schedule
    expect: {iso: "2025-12-04T22:00:00.000Z"}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
}

func TestRun_BlankMessageFails(t *testing.T) {
	s := &Scenario{
		Name:       "bad",
		Message:    "   ",
		Assertions: []Assertion{{Type: AssertNoSchedule}},
	}
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest #1")
}
