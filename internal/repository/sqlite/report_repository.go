package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/repository"
)

const defaultListLimit = 50

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository implementation
func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Insert(ctx context.Context, report models.Report) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	log.Debug("inserting report: filename=%s, size=%d", report.Filename, report.SizeBytes)

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	sqlStr, args, err := sqlBuilder.Insert("reports").
		Columns("filename", "payload", "size_bytes", "created_at").
		Values(report.Filename, report.Payload, report.SizeBytes, createdAt.UTC()).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to insert report: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get last insert id: %v", err)
		return 0, err
	}
	log.Debug("report inserted: id=%d", id)
	return id, nil
}

func (r *reportRepository) Get(ctx context.Context, id int64) (*models.Report, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	log.Debug("getting report: id=%d", id)

	var rep models.Report
	err := r.db.QueryRowContext(ctx, `
SELECT id, filename, payload, size_bytes, created_at
FROM reports
WHERE id = ?
`, id).Scan(&rep.ID, &rep.Filename, &rep.Payload, &rep.SizeBytes, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("report not found: id=%d", id)
		} else {
			log.Error("failed to get report: %v", err)
		}
		return nil, err
	}
	return &rep, nil
}

func applyReportFilter(query squirrel.SelectBuilder, filter models.ReportFilter) squirrel.SelectBuilder {
	if filter.Filename != "" {
		query = query.Where(squirrel.Like{"filename": "%" + filter.Filename + "%"})
	}
	return query
}

func (r *reportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.ReportSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	log.Debug("listing reports: filename=%s, limit=%d, offset=%d", filter.Filename, filter.Limit, filter.Offset)

	query := applyReportFilter(
		sqlBuilder.Select("id", "filename", "size_bytes", "created_at").From("reports"),
		filter,
	)

	dir := orderDir(filter.OrderDir)
	query = query.OrderBy("created_at "+dir, "id "+dir)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list reports: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reports []models.ReportSummary
	for rows.Next() {
		var s models.ReportSummary
		if err := rows.Scan(&s.ID, &s.Filename, &s.SizeBytes, &s.CreatedAt); err != nil {
			log.Error("failed to scan report row: %v", err)
			return nil, err
		}
		reports = append(reports, s)
	}
	log.Debug("found %d reports", len(reports))
	return reports, rows.Err()
}

func (r *reportRepository) Count(ctx context.Context, filter models.ReportFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")

	query := applyReportFilter(sqlBuilder.Select("COUNT(*)").From("reports"), filter)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count reports: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *reportRepository) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	log.Debug("deleting report: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete report %d: %v", id, err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Prune deletes all but the newest keep reports and returns how many were
// removed. keep <= 0 keeps everything.
func (r *reportRepository) Prune(ctx context.Context, keep int) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("report_repo")
	if keep <= 0 {
		return 0, nil
	}

	var removed int
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		// SQLite needs a LIMIT before OFFSET.
		rows, err := tx.QueryContext(ctx, `
SELECT id FROM reports
ORDER BY created_at DESC, id DESC
LIMIT -1 OFFSET ?
`, keep)
		if err != nil {
			return err
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		sqlStr, args, err := sqlBuilder.Delete("reports").Where(squirrel.Eq{"id": ids}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = int(n)
		return nil
	})
	if err != nil {
		log.Error("failed to prune reports: %v", err)
		return 0, err
	}
	if removed > 0 {
		log.Info("pruned %d old reports, keeping %d", removed, keep)
	}
	return removed, nil
}
