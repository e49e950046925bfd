package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"e2ekit/internal/config"
	"e2ekit/internal/discovery"
	"e2ekit/internal/domain"
	"e2ekit/internal/execution"
	"e2ekit/internal/fixtures"
	"e2ekit/internal/metrics"
	"e2ekit/internal/parser"
	"e2ekit/internal/resultsdb"
	"e2ekit/internal/storage"
	"e2ekit/internal/title"
	"e2ekit/internal/ui"
)

// ErrTestsFailed is returned by run when any unit or suite failed
var ErrTestsFailed = errors.New("tests failed")

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	catalog   *execution.Catalog
	filter    *discovery.Filter
	parser    *parser.ResultParser
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
	files     *fixtures.Files
	publisher *resultsdb.Publisher
	log       logrus.FieldLogger
	out       io.Writer
	progress  bool
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags := rc.config.Flags

	if err := rc.files.ClearFolder(rc.config.GetDownloadsPath()); err != nil {
		return fmt.Errorf("failed to clear downloads folder: %w", err)
	}

	// Select suites and units
	names := rc.filter.FilterByName(rc.catalog.Names(), flags.NameFilter)
	keep := rc.filter.Grep(flags.Grep)
	if flags.OnlyFailed {
		var err error
		names, keep, err = rc.lastFailures(names, keep)
		if err != nil {
			return err
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(rc.out, color.YellowString("No suites to execute"))
		return nil
	}
	defs, err := rc.catalog.Definitions(names)
	if err != nil {
		return err
	}

	// Execute suites
	m := metrics.New()
	runner := execution.NewRunner(rc.config,
		execution.WithLogger(rc.log),
		execution.WithMetrics(m),
		execution.WithUnitFilter(keep),
	)
	pool := execution.NewWorkerPool(rc.config, runner, execution.NewRoundRobinScheduler())
	if rc.progress {
		pool.SetProgress(ui.NewProgressBar(len(defs)))
	}
	results, duration, runErr := pool.ExecuteWithOptions(ctx, defs, flags.FailFast)

	// Parse failures
	var failures []domain.TestFailure
	for _, result := range results {
		failures = append(failures, rc.parser.ParseSuite(result)...)
	}

	// Save results
	run := storage.Run{
		ID:          uuid.NewString(),
		Environment: rc.config.Environment,
		Results:     results,
		Duration:    duration,
		Workers:     rc.config.Processors,
		FinishedAt:  time.Now(),
	}
	if err := rc.storage.Save(run, failures); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	m.ObserveRun(duration)
	if flags.MetricsFile != "" {
		if err := m.WriteTextfile(flags.MetricsFile); err != nil {
			return err
		}
	}

	if flags.Publish {
		if err := rc.publish(ctx, storage.Meta(run, failures), results); err != nil {
			return err
		}
	}

	// Print stats
	rc.formatter.PrintSuiteTable(results, duration)
	if err := rc.formatter.PrintMetaStats(); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if len(failures) == 0 {
		return nil
	}
	if flags.OpenFaills {
		output, err := rc.storage.Load()
		if err != nil {
			return err
		}
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}
	return ErrTestsFailed
}

func (rc *RunCommand) publish(ctx context.Context, meta domain.TestResultsMeta, results []domain.SuiteResult) error {
	if err := rc.publisher.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare results database: %w", err)
	}
	if err := rc.publisher.Publish(ctx, meta, results); err != nil {
		return fmt.Errorf("failed to publish results: %w", err)
	}
	return nil
}

// lastFailures narrows names and keep to what failed in the last saved run.
func (rc *RunCommand) lastFailures(names []string, keep func(string) bool) ([]string, func(string) bool, error) {
	output, err := rc.storage.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("no previous results to rerun: %w", err)
	}

	suites := make(map[string]bool)
	titles := make(map[string]bool)
	caseIDs := make(map[string]bool)
	wholeSuite := make(map[string]bool)
	for _, f := range output.Details {
		if f.Resolved {
			continue
		}
		suites[f.Suite] = true
		switch {
		case f.Title == "":
			// suite-level failure
			wholeSuite[f.Suite] = true
		case f.CaseID != "":
			caseIDs[f.CaseID] = true
		default:
			titles[f.Title] = true
		}
	}

	var selected []string
	for _, name := range names {
		if suites[name] {
			selected = append(selected, name)
		}
	}
	if len(wholeSuite) > 0 {
		// a suite that failed as a whole reruns every unit that passes keep
		return selected, keep, nil
	}

	failedUnit := func(t string) bool {
		if titles[t] {
			return true
		}
		for _, id := range title.CaseIDs(t) {
			if caseIDs[id] {
				return true
			}
		}
		return false
	}
	if keep == nil {
		return selected, failedUnit, nil
	}
	return selected, func(t string) bool { return keep(t) && failedUnit(t) }, nil
}
