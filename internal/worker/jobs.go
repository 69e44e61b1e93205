package worker

import (
	"context"

	"github.com/vytor/runview/internal/repository"
)

// PruneReportsJob trims report history to the newest Keep reports.
type PruneReportsJob struct {
	ReportRepo repository.ReportRepository
	Keep       int
}

func (j *PruneReportsJob) Name() string { return "prune_reports" }

func (j *PruneReportsJob) Run(ctx context.Context) error {
	_, err := j.ReportRepo.Prune(ctx, j.Keep)
	return err
}
