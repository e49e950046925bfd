package watchdog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{500 * time.Millisecond, "500 ms"},
		{999 * time.Millisecond, "999 ms"},
		{time.Second, "1 seconds"},
		{1500 * time.Millisecond, "1.5 seconds"},
		{FromMinutes(5), "5 minutes"},
		{90 * time.Second, "1.5 minutes"},
		{FromMinutes(15), "15 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.in))
		})
	}
}

func TestFromSeconds(t *testing.T) {
	assert.Equal(t, 2500*time.Millisecond, FromSeconds(2.5))
	assert.Equal(t, 300000*time.Millisecond, FromMinutes(5))
}

func TestCheckSuiteRuntime(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, CheckSuiteRuntime("demo", start, start.Add(DefaultSuiteLimit), DefaultSuiteLimit))
	assert.NoError(t, CheckSuiteRuntime("demo", start, start.Add(time.Hour), 0))

	err := CheckSuiteRuntime("demo", start, start.Add(16*time.Minute), DefaultSuiteLimit)
	var suiteErr *SuiteTimeoutError
	if assert.True(t, errors.As(err, &suiteErr)) {
		assert.Equal(t, "demo", suiteErr.Suite)
		assert.Contains(t, err.Error(), "15 minutes")
	}
}
