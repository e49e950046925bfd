package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
)

func TestJSONStorage_SaveLoad(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = "/project"
	fs := afero.NewMemMapFs()
	s := NewJSONStorageFs(cfg, fs)

	finished := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	run := Run{
		ID:          "run-1",
		Environment: "stg",
		Duration:    90 * time.Second,
		Workers:     2,
		FinishedAt:  finished,
		Results: []domain.SuiteResult{
			{Name: "login", Units: []domain.UnitResult{
				{Status: domain.StatusPassed},
				{Status: domain.StatusFailed, Error: errors.New("boom")},
			}},
			{Name: "cart", Units: []domain.UnitResult{{Status: domain.StatusSkipped}}},
		},
	}
	failures := []domain.TestFailure{{CaseID: "C1", Suite: "login", Title: "t", Message: "boom"}}

	require.NoError(t, s.Save(run, failures))

	exists, err := afero.Exists(fs, cfg.GetOutputPath())
	require.NoError(t, err)
	require.True(t, exists)

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.TestResultsMeta{
		RunID:           "run-1",
		Environment:     "stg",
		TotalSuites:     2,
		FailedSuites:    1,
		TotalUnits:      3,
		PassedUnits:     1,
		FailedUnits:     1,
		SkippedUnits:    1,
		FailedTestCases: 1,
		Duration:        "1m30s",
		DurationSeconds: 90,
		Workers:         2,
		Timestamp:       "2026-10-19T12:00:00Z",
	}, out.Meta)
	assert.Equal(t, failures, out.Details)
}

func TestJSONStorage_SaveOutputRoundTripsResolved(t *testing.T) {
	cfg := config.New()
	s := NewJSONStorageFs(cfg, afero.NewMemMapFs())

	require.NoError(t, s.Save(Run{ID: "r"}, nil))
	out, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, out.Details)
	assert.NotEmpty(t, out.Meta.Timestamp)

	out.Details = append(out.Details, domain.TestFailure{CaseID: "C9", Resolved: true})
	require.NoError(t, s.SaveOutput(out))

	again, err := s.Load()
	require.NoError(t, err)
	require.Len(t, again.Details, 1)
	assert.True(t, again.Details[0].Resolved)
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	s := NewJSONStorageFs(config.New(), afero.NewMemMapFs())
	_, err := s.Load()
	assert.Error(t, err)
}
