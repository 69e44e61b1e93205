package jobs

import (
	"github.com/vytor/runview/internal/repository"
	"github.com/vytor/runview/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool       *worker.Pool
	reportRepo repository.ReportRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, reportRepo repository.ReportRepository) JobQueue {
	return &WorkerQueue{
		pool:       pool,
		reportRepo: reportRepo,
	}
}

func (q *WorkerQueue) EnqueuePrune(keep int) error {
	return q.pool.Submit(&worker.PruneReportsJob{
		ReportRepo: q.reportRepo,
		Keep:       keep,
	})
}
