package execution

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
	"e2ekit/internal/metrics"
	"e2ekit/internal/watchdog"
)

// Runner executes a single suite definition
type Runner struct {
	config  *config.Config
	log     logrus.FieldLogger
	clock   clock.Clock
	metrics *metrics.Collector
	keep    func(title string) bool
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the logger for step logs and watchdog warnings
func WithLogger(log logrus.FieldLogger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithClock replaces the clock used by the watchdog and the suite runtime check
func WithClock(c clock.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithMetrics records suite results and watchdog timeouts in m
func WithMetrics(m *metrics.Collector) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithUnitFilter runs only units whose full title satisfies keep
func WithUnitFilter(keep func(title string) bool) RunnerOption {
	return func(r *Runner) { r.keep = keep }
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		config: cfg,
		log:    logrus.StandardLogger(),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run builds the suite, runs its units under a watchdog and checks the suite runtime
func (r *Runner) Run(ctx context.Context, def Definition, workerID int) domain.SuiteResult {
	log := r.log.WithFields(logrus.Fields{"suite": def.Name, "worker": workerID})
	start := r.clock.Now()
	result := domain.SuiteResult{Name: def.Name, WorkerID: workerID}

	suite, err := Build(def,
		WithRetries(r.config.Retries),
		WithBail(r.config.Flags.FailFast),
		WithSuiteLogger(log),
	)
	if err != nil {
		result.Error = err
		return result
	}

	wd := watchdog.New(suite,
		watchdog.WithClock(r.clock),
		watchdog.WithLimit(r.config.TestTimeout),
		watchdog.WithDisabled(r.config.NoTestTimeout),
		watchdog.WithLogger(log),
		watchdog.WithOnFire(func(watchdog.Unit, error) {
			r.metrics.WatchdogTimeout(def.Name)
		}),
	)
	defer wd.Stop()
	suite.OnBeforeRun(func(u *Unit) { wd.Arm(u) })
	suite.OnAfterRun(func(u *Unit) { wd.Disarm(u) })

	log.Debug("Running suite")
	result.Units = suite.Run(ctx, r.keep)

	end := r.clock.Now()
	result.Duration = end.Sub(start)
	if !r.config.NoTestTimeout {
		result.Error = watchdog.CheckSuiteRuntime(def.Name, start, end, r.config.SuiteTimeout)
	}
	r.metrics.ObserveSuite(result)

	return result
}
