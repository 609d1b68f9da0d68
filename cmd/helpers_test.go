package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enzoomoreira/bacen-data-analysis/internal/importer"
	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
)

func TestResolveDates_ExplicitList(t *testing.T) {
	dates, err := resolveDates([]int{202312, 202403}, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []int{202312, 202403}, dates)
}

func TestResolveDates_Range(t *testing.T) {
	dates, err := resolveDates(nil, 202311, 202402, false)
	require.NoError(t, err)
	assert.Equal(t, []int{202311, 202312, 202401, 202402}, dates)
}

func TestResolveDates_QuarterlyRange(t *testing.T) {
	dates, err := resolveDates(nil, 202301, 202312, true)
	require.NoError(t, err)
	assert.Equal(t, []int{202303, 202306, 202309, 202312}, dates)
}

func TestResolveDates_BothFormsRejected(t *testing.T) {
	_, err := resolveDates([]int{202312}, 202301, 202312, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestResolveDates_NeitherFormRejected(t *testing.T) {
	_, err := resolveDates(nil, 0, 0, false)
	require.Error(t, err)
}

func TestParseSelectors_MixedForms(t *testing.T) {
	selectors, err := parseSelectors([]string{"10000007", "Ativo Total"})
	require.NoError(t, err)
	require.Len(t, selectors, 2)
	assert.Equal(t, model.AccountByCode(10000007), selectors[0])
	assert.Equal(t, model.AccountByName("Ativo Total"), selectors[1])
}

func TestParseSelectors_EmptyRejected(t *testing.T) {
	_, err := parseSelectors(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--account")
}

func TestParseScopes(t *testing.T) {
	scopes, err := parseScopes([]string{"prudencial", "individual"})
	require.NoError(t, err)
	assert.Equal(t, []model.Scope{model.ScopePrudencial, model.ScopeIndividual}, scopes)
}

func TestParseScopes_InvalidScope(t *testing.T) {
	_, err := parseScopes([]string{"consolidado"})
	require.Error(t, err)

	var scopeErr *model.InvalidScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "consolidado", scopeErr.Scope)
}

func TestFormatRuns_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatRuns(&buf, nil)

	output := buf.String()
	// Header renders even with no runs.
	assert.Contains(t, output, "DATASET")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "STARTED")
}

func TestFormatRuns_SingleRun(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	completed := started.Add(42 * time.Second)

	runs := []importer.Run{
		{
			ID:          "0f9d6a3e-5f6c-4f7f-9f2a-1c2d3e4f5a6b",
			Dataset:     "cosif_individual",
			Status:      "complete",
			StartedAt:   started,
			CompletedAt: &completed,
			RowsLoaded:  125000,
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "0f9d6a3e")
	assert.NotContains(t, output, "5f6c-4f7f")
	assert.Contains(t, output, "cosif_individual")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "42s")
	assert.Contains(t, output, "125000")
}

func TestFormatRuns_RunningHasNoDuration(t *testing.T) {
	runs := []importer.Run{
		{
			ID:        "run-1",
			Dataset:   "cadastro",
			Status:    "running",
			StartedAt: time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	assert.Contains(t, buf.String(), "running")
	assert.Contains(t, buf.String(), "-")
}

func TestFormatRuns_TruncatesError(t *testing.T) {
	long := "importer: open cosif_individual.csv: no such file or directory in the configured drop dir"
	runs := []importer.Run{
		{ID: "run-2", Dataset: "cosif_individual", Status: "failed",
			StartedAt: time.Now(), Error: long},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), "drop dir")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "0123456...", truncate("0123456789x", 10))
}
