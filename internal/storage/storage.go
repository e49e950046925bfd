package storage

import (
	"time"

	"github.com/spf13/afero"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
)

// Storage persists and loads run results (e.g. for the faills viewer).
type Storage interface {
	Save(run Run, failures []domain.TestFailure) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after the viewer marked failures resolved).
	SaveOutput(output *domain.TestResultsOutput) error
}

// Run describes a finished run
type Run struct {
	ID          string
	Environment string
	Results     []domain.SuiteResult
	Duration    time.Duration
	Workers     int
	FinishedAt  time.Time
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	fs  afero.Fs
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path on the OS filesystem.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return NewJSONStorageFs(cfg, afero.NewOsFs())
}

// NewJSONStorageFs is NewJSONStorage on an arbitrary filesystem.
func NewJSONStorageFs(cfg *config.Config, fs afero.Fs) *JSONStorage {
	return &JSONStorage{cfg: cfg, fs: fs}
}
