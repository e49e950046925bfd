package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"e2ekit/internal/domain"
)

// Meta summarizes a run for the results file.
func Meta(run Run, failures []domain.TestFailure) domain.TestResultsMeta {
	meta := domain.TestResultsMeta{
		RunID:           run.ID,
		Environment:     run.Environment,
		TotalSuites:     len(run.Results),
		FailedTestCases: len(failures),
		Duration:        run.Duration.String(),
		DurationSeconds: run.Duration.Seconds(),
		Workers:         run.Workers,
		Timestamp:       run.FinishedAt.Format(time.RFC3339),
	}
	if run.FinishedAt.IsZero() {
		meta.Timestamp = time.Now().Format(time.RFC3339)
	}
	for _, r := range run.Results {
		if !r.Success() {
			meta.FailedSuites++
		}
		p, f, s := r.Counts()
		meta.PassedUnits += p
		meta.FailedUnits += f
		meta.SkippedUnits += s
		meta.TotalUnits += len(r.Units)
	}
	return meta
}

// Save writes the run summary and failures to the configured JSON output file.
func (s *JSONStorage) Save(run Run, failures []domain.TestFailure) error {
	if failures == nil {
		failures = []domain.TestFailure{}
	}
	return s.SaveOutput(&domain.TestResultsOutput{
		Meta:    Meta(run, failures),
		Details: failures,
	})
}

// Load reads the last results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	data, err := afero.ReadFile(s.fs, s.cfg.GetOutputPath())
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
