package repository

import (
	"context"

	"github.com/vytor/runview/internal/models"
)

// ReportRepository handles stored report data access
type ReportRepository interface {
	Insert(ctx context.Context, report models.Report) (int64, error)
	Get(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportSummary, error)
	Count(ctx context.Context, filter models.ReportFilter) (int, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Prune(ctx context.Context, keep int) (int, error)
}
