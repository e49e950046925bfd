package execution

// Scheduler distributes suites across workers
type Scheduler interface {
	Schedule(defs []Definition, workerCount int) [][]Definition
}

// RoundRobinScheduler distributes suites evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule assigns suite i to worker i % workerCount, keeping the input order per worker
func (s *RoundRobinScheduler) Schedule(defs []Definition, workerCount int) [][]Definition {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]Definition, workerCount)
	for i, def := range defs {
		distribution[i%workerCount] = append(distribution[i%workerCount], def)
	}

	return distribution
}
