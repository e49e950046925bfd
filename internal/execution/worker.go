package execution

import (
	"context"
	"sort"
	"sync"
	"time"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
	"e2ekit/internal/ui"
)

// WorkerPool runs suites in parallel, one suite per worker at a time
type WorkerPool struct {
	config    *config.Config
	runner    SuiteRunner
	scheduler Scheduler
	progress  *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner SuiteRunner, scheduler Scheduler) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Execute runs all suites (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, defs []Definition) ([]domain.SuiteResult, time.Duration, error) {
	return wp.ExecuteWithOptions(ctx, defs, false)
}

// ExecuteWithOptions runs suites with optional fail-fast. With fail-fast, no new
// suite starts after a failure; suites already running finish.
// Results are sorted by suite name.
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, defs []Definition, failFast bool) ([]domain.SuiteResult, time.Duration, error) {
	if len(defs) == 0 {
		return nil, 0, nil
	}

	stop, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(defs) {
		workerCount = len(defs)
	}
	batches := wp.scheduler.Schedule(defs, workerCount)
	results := make(chan domain.SuiteResult, len(defs))

	var mu sync.Mutex
	var completed, passedUnits, failedUnits int
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(workerID int, batch []Definition) {
			defer wg.Done()
			for _, def := range batch {
				if stop.Err() != nil {
					return
				}
				result := wp.runner.Run(ctx, def, workerID)
				results <- result

				mu.Lock()
				completed++
				p, f, _ := result.Counts()
				passedUnits += p
				failedUnits += f
				if wp.progress != nil {
					wp.progress.Update(completed, passedUnits, failedUnits)
				}
				if failFast && !result.Success() {
					cancel()
				}
				mu.Unlock()
			}
		}(i+1, batch)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var allResults []domain.SuiteResult
	for result := range results {
		allResults = append(allResults, result)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	sort.SliceStable(allResults, func(i, j int) bool { return allResults[i].Name < allResults[j].Name })

	return allResults, time.Since(startTime), ctx.Err()
}
