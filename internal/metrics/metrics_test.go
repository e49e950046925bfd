package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/domain"
)

func TestCollector_ObserveSuite(t *testing.T) {
	c := New()
	c.ObserveSuite(domain.SuiteResult{
		Name: "login",
		Units: []domain.UnitResult{
			{Status: domain.StatusPassed, Duration: time.Second},
			{Status: domain.StatusPassed, Duration: 2 * time.Second},
			{Status: domain.StatusFailed, Duration: time.Second, Error: errors.New("boom")},
			{Status: domain.StatusSkipped},
		},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.units.WithLabelValues("login", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.units.WithLabelValues("login", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.units.WithLabelValues("login", "skipped")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.unitDuration))
}

func TestCollector_TimeoutsAndRun(t *testing.T) {
	c := New()
	c.WatchdogTimeout("login")
	c.WatchdogTimeout("login")
	c.ObserveRun(90 * time.Second)

	expected := `
# HELP e2e_watchdog_timeouts_total Units failed by the watchdog for exceeding their max runtime.
# TYPE e2e_watchdog_timeouts_total counter
e2e_watchdog_timeouts_total{suite="login"} 2
`
	require.NoError(t, testutil.CollectAndCompare(c.timeouts, strings.NewReader(expected)))
	assert.Equal(t, 90.0, testutil.ToFloat64(c.runDuration))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveSuite(domain.SuiteResult{Name: "x", Units: []domain.UnitResult{{Status: domain.StatusPassed}}})
	c.WatchdogTimeout("x")
	c.ObserveRun(time.Second)
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.ObserveRun(time.Second)

	path := filepath.Join(t.TempDir(), "out", "e2e.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "e2e_run_duration_seconds 1")
}
