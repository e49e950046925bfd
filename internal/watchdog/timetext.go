package watchdog

import (
	"strconv"
	"time"
)

// DefaultSuiteLimit bounds the runtime of a whole suite.
const DefaultSuiteLimit = 15 * time.Minute

// FromSeconds converts n seconds to a duration.
func FromSeconds(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

// FromMinutes converts n minutes to a duration.
func FromMinutes(n float64) time.Duration {
	return time.Duration(n * float64(time.Minute))
}

// FormatDuration renders d for humans: "500 ms", "1.5 seconds", "5 minutes".
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1000:
		return strconv.FormatInt(ms, 10) + " ms"
	case ms < 60000:
		return formatFloat(float64(ms)/1000) + " seconds"
	default:
		return formatFloat(float64(ms)/60000) + " minutes"
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CheckSuiteRuntime returns a *SuiteTimeoutError when a suite started at start
// has been running for more than limit at now.
func CheckSuiteRuntime(suite string, start, now time.Time, limit time.Duration) error {
	if limit <= 0 {
		return nil
	}
	if elapsed := now.Sub(start); elapsed > limit {
		return &SuiteTimeoutError{Suite: suite, Limit: limit, Elapsed: elapsed}
	}
	return nil
}
