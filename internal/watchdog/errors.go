package watchdog

import (
	"fmt"
	"time"
)

// TimeoutExceededError is raised into a unit that outlived its max runtime.
type TimeoutExceededError struct {
	Unit  string
	Limit time.Duration
}

func (e *TimeoutExceededError) Error() string {
	return fmt.Sprintf("Test exceeded max runtime of %s", FormatDuration(e.Limit))
}

// SuiteTimeoutError reports a suite whose total runtime exceeded its limit.
type SuiteTimeoutError struct {
	Suite   string
	Limit   time.Duration
	Elapsed time.Duration
}

func (e *SuiteTimeoutError) Error() string {
	return fmt.Sprintf("suite %q ran for %s, over its limit of %s",
		e.Suite, FormatDuration(e.Elapsed.Round(time.Millisecond)), FormatDuration(e.Limit))
}
