package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultFixturesFolder holds dataset files and generated fixtures
	DefaultFixturesFolder = "fixtures"
	// DefaultDownloadsFolder is cleared before every run
	DefaultDownloadsFolder = "artifacts/downloads"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultEnvironment is used when no environment is configured
	DefaultEnvironment = "stg"
	// DefaultTestTimeout is the max runtime of one test unit
	DefaultTestTimeout = 5 * time.Minute
	// DefaultSuiteTimeout is the max runtime of one suite
	DefaultSuiteTimeout = 15 * time.Minute
	// DefaultCommandTimeout bounds single commands and requests issued by specs
	DefaultCommandTimeout = 60000 * time.Millisecond
	// DefaultRetries is the number of extra attempts for a failing unit in run mode
	DefaultRetries = 1
)

// DefaultPathsToIgnore are the default directories to ignore when scanning fixtures
var DefaultPathsToIgnore = []string{
	"node_modules",
	"artifacts",
	"temp",
}
