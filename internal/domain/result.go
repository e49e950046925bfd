package domain

import "time"

// Status is the terminal state of a test unit
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Step is a single step-log line recorded while a unit was running
type Step struct {
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
	At      time.Time      `json:"at"`
}

// UnitResult represents the outcome of one registered test unit
type UnitResult struct {
	Suite    string        // Name of the suite the unit belongs to
	Title    string        // Full title, including the @ID prefix and describe path
	Status   Status        // Terminal state
	Error    error         // Failure cause, nil unless Status is failed
	Attempts int           // Number of times the body was run
	Duration time.Duration // Time spent in the body across attempts
	Steps    []Step        // Step log recorded during the last attempt
}

// SuiteResult represents the outcome of running one suite definition
type SuiteResult struct {
	Name     string
	Units    []UnitResult
	Error    error // Suite-level failure, e.g. exceeding the suite runtime limit
	Duration time.Duration
	WorkerID int
}

// Success reports whether the suite and all of its units finished without failures.
func (r SuiteResult) Success() bool {
	if r.Error != nil {
		return false
	}
	for _, u := range r.Units {
		if u.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed, failed and skipped units.
func (r SuiteResult) Counts() (passed, failed, skipped int) {
	for _, u := range r.Units {
		switch u.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	Environment     string  `json:"environment"`
	TotalSuites     int     `json:"total_suites"`
	FailedSuites    int     `json:"failed_suites"`
	TotalUnits      int     `json:"total_units"`
	PassedUnits     int     `json:"passed_units"`
	FailedUnits     int     `json:"failed_units"`
	SkippedUnits    int     `json:"skipped_units"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}
