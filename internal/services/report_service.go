package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io"

	"github.com/vytor/runview/internal/analyzer"
	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/jobs"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/render"
	"github.com/vytor/runview/internal/repository"
)

// ReportService handles uploads and stored reports
type ReportService interface {
	Analyze(ctx context.Context, filename string, r io.Reader) (*models.Report, *models.Payload, error)
	GetReport(ctx context.Context, id int64) (*models.Report, *models.Payload, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]models.ReportSummary, int, error)
	DeleteReport(ctx context.Context, id int64) error
}

type reportService struct {
	analyzer     analyzer.ClientInterface
	reportRepo   repository.ReportRepository
	historyLimit int
	queue        jobs.JobQueue
}

// NewReportService creates a new ReportService. historyLimit <= 0 keeps every
// report. With a nil queue history is pruned inline after each upload.
func NewReportService(client analyzer.ClientInterface, reportRepo repository.ReportRepository, historyLimit int, queue jobs.JobQueue) ReportService {
	return &reportService{
		analyzer:     client,
		reportRepo:   reportRepo,
		historyLimit: historyLimit,
		queue:        queue,
	}
}

func (s *reportService) Analyze(ctx context.Context, filename string, r io.Reader) (*models.Report, *models.Payload, error) {
	log := logger.FromContext(ctx).WithField("filename", filename)
	log.Debug("analyzing upload")

	if filename == "" || r == nil {
		return nil, nil, errors.NewBadRequestError("Please select a file!")
	}

	payload, raw, err := s.analyzer.Analyze(ctx, filename, r)
	if err != nil {
		log.Warn("analyzer call failed: %v", err)
		return nil, nil, analyzerError(err)
	}

	// A payload that cannot be rendered is not worth keeping.
	if _, err := render.Build(ctx, payload, render.Options{}); err != nil {
		log.Warn("analyzer payload cannot be rendered: %v", err)
		return nil, nil, errors.NewMalformedPayloadError(err)
	}

	report := models.Report{
		Filename:  filename,
		Payload:   raw,
		SizeBytes: int64(len(raw)),
	}
	id, err := s.reportRepo.Insert(ctx, report)
	if err != nil {
		log.Error("failed to store report: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	report.ID = id

	s.pruneHistory(ctx)

	log.Info("stored report %d", id)
	return &report, payload, nil
}

// pruneHistory hands pruning to the job queue, falling back to doing it
// inline when there is no queue or it refuses the job.
func (s *reportService) pruneHistory(ctx context.Context) {
	if s.historyLimit <= 0 {
		return
	}
	log := logger.FromContext(ctx)
	if s.queue != nil {
		err := s.queue.EnqueuePrune(s.historyLimit)
		if err == nil {
			return
		}
		log.Warn("failed to enqueue history pruning, pruning inline: %v", err)
	}
	if _, err := s.reportRepo.Prune(ctx, s.historyLimit); err != nil {
		log.Warn("failed to prune report history: %v", err)
	}
}

func analyzerError(err error) *errors.AppError {
	var statusErr *analyzer.StatusError
	switch {
	case stderrors.As(err, &statusErr):
		return errors.NewUpstreamError(statusErr.Detail(), err)
	case stderrors.Is(err, analyzer.ErrMalformedResponse):
		return errors.NewMalformedPayloadError(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewUpstreamError("analyzer timed out", err)
	default:
		return errors.NewUpstreamError("analyzer is unavailable", err)
	}
}

func (s *reportService) GetReport(ctx context.Context, id int64) (*models.Report, *models.Payload, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting report: id=%d", id)

	report, err := s.reportRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil, errors.NewNotFoundError("report", id)
		}
		log.Error("failed to get report: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}

	payload, err := models.DecodePayload(report.Payload)
	if err != nil {
		log.Error("stored report %d has an invalid payload: %v", id, err)
		return nil, nil, errors.NewInternalError(err)
	}
	return report, payload, nil
}

func (s *reportService) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.ReportSummary, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing reports")

	reports, err := s.reportRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list reports: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.reportRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count reports: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return reports, total, nil
}

func (s *reportService) DeleteReport(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting report: id=%d", id)

	deleted, err := s.reportRepo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete report: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("report", id)
	}
	return nil
}
