// Package metrics exposes run statistics as Prometheus collectors. A run is a
// short-lived process, so the registry is exported to a textfile rather than served.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"e2ekit/internal/domain"
)

const namespace = "e2e"

// Collector holds the run metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	registry     *prometheus.Registry
	units        *prometheus.CounterVec
	unitDuration *prometheus.HistogramVec
	timeouts     *prometheus.CounterVec
	runDuration  prometheus.Gauge
}

// New creates a Collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Test units by suite and terminal status.",
		}, []string{"suite", "status"}),
		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Time spent in unit bodies, retries included.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"suite"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_timeouts_total",
			Help:      "Units failed by the watchdog for exceeding their max runtime.",
		}, []string{"suite"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the whole run.",
		}),
	}
	c.registry.MustRegister(c.units, c.unitDuration, c.timeouts, c.runDuration)
	return c
}

// Registry returns the registry the collectors are registered with
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveSuite records every unit of a finished suite.
func (c *Collector) ObserveSuite(res domain.SuiteResult) {
	if c == nil {
		return
	}
	for _, u := range res.Units {
		c.units.WithLabelValues(res.Name, string(u.Status)).Inc()
		if u.Status != domain.StatusSkipped {
			c.unitDuration.WithLabelValues(res.Name).Observe(u.Duration.Seconds())
		}
	}
}

// WatchdogTimeout counts one unit failed by the watchdog.
func (c *Collector) WatchdogTimeout(suite string) {
	if c == nil {
		return
	}
	c.timeouts.WithLabelValues(suite).Inc()
}

// ObserveRun records the total run duration.
func (c *Collector) ObserveRun(d time.Duration) {
	if c == nil {
		return
	}
	c.runDuration.Set(d.Seconds())
}

// WriteTextfile writes the registry in the text exposition format, e.g. for
// the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
