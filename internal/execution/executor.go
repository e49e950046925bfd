package execution

import (
	"context"
	"time"

	"e2ekit/internal/domain"
)

// Executor executes suites and returns results
type Executor interface {
	Execute(ctx context.Context, defs []Definition) ([]domain.SuiteResult, time.Duration, error)
}

// SuiteRunner runs one suite on behalf of a worker
type SuiteRunner interface {
	Run(ctx context.Context, def Definition, workerID int) domain.SuiteResult
}

var (
	_ Executor    = (*WorkerPool)(nil)
	_ SuiteRunner = (*Runner)(nil)
)
