package api

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/runview/internal/charts"
	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/render"
)

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	pageParam := r.URL.Query().Get("page")
	perPageParam := r.URL.Query().Get("per_page")
	orderDir := strings.ToUpper(r.URL.Query().Get("order_dir"))

	log = log.WithFields(map[string]any{
		"q":         query,
		"page":      pageParam,
		"per_page":  perPageParam,
		"order_dir": orderDir,
	})
	log.Debug("listing reports")

	page := 1
	if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
		page = p
	}

	perPage := 25
	switch perPageParam {
	case "10":
		perPage = 10
	case "25":
		perPage = 25
	case "50":
		perPage = 50
	case "100":
		perPage = 100
	}

	filter := models.ReportFilter{
		Filename: query,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
		OrderDir: orderDir,
	}
	reports, totalCount, err := s.ReportService.ListReports(r.Context(), filter)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	totalPages := (totalCount + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	s.render(w, r, "pages/reports.html", pageData{
		"reports":     reports,
		"filters":     r.URL.Query(),
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
		"total_count": totalCount,
		"order_dir":   orderDir,
	})
}

func (s *Server) handleReportDetail(w http.ResponseWriter, r *http.Request) {
	id, err := reportIDParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context()).WithField("report_id", id)
	log.Debug("fetching report detail")

	report, payload, err := s.ReportService.GetReport(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	view, err := s.renderReport(r, report, payload)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/report.html", pageData{
		"report": view,
	})
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	id, err := reportIDParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		s.handleError(w, r, errors.NewBadRequestError("invalid chart index"))
		return
	}
	log := logger.FromContext(r.Context()).WithFields(map[string]any{"report_id": id, "chart": index})

	_, payload, err := s.ReportService.GetReport(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	artifacts, err := render.Build(r.Context(), payload, render.Options{Locale: s.locale(r)})
	if err != nil {
		s.handleError(w, r, errors.NewMalformedPayloadError(err))
		return
	}
	var chartSpecs []*render.Chart
	for _, a := range artifacts {
		if c, ok := a.(*render.Chart); ok {
			chartSpecs = append(chartSpecs, c)
		}
	}
	if index >= len(chartSpecs) {
		s.handleError(w, r, errors.NewNotFoundError("chart", index))
		return
	}
	c := chartSpecs[index]

	var buf bytes.Buffer
	if err := charts.PNG(&buf, c); err != nil {
		if stderrors.Is(err, charts.ErrNoData) {
			s.handleError(w, r, errors.NewValidationError("chart", "it has no data points"))
			return
		}
		s.handleError(w, r, errors.NewInternalError(err))
		return
	}

	log.Debug("exporting chart %s as png", c.ID)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fmt.Sprintf("report-%d-%s.png", id, c.ID)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportIDParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context()).WithField("report_id", id)

	if err := s.ReportService.DeleteReport(r.Context(), id); err != nil {
		s.handleError(w, r, err)
		return
	}

	if sess := sessionFromContext(r.Context()); sess != nil && sess.ReportID == id {
		sess.ReportID = 0
		if err := s.Sessions.Save(w, r, sess); err != nil {
			log.Error("failed to save session: %v", err)
		}
	}
	log.Info("report deleted")
	http.Redirect(w, r, "/reports", http.StatusSeeOther)
}
