package api

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/render"
)

// renderResponse is the JSON form of a rendered payload.
type renderResponse struct {
	Tables []*render.Table `json:"tables"`
	Charts []*render.Chart `json:"charts"`
}

// handleAPIReport returns the stored payload exactly as the analyzer sent it.
func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportIDParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	report, _, err := s.ReportService.GetReport(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Payload)
}

// handleAPIRender renders a payload posted by the caller without storing it.
func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.handleError(w, r, errors.NewBadRequestError("payload too large"))
			return
		}
		s.handleError(w, r, errors.NewBadRequestError("failed to read payload"))
		return
	}

	payload, err := models.DecodePayload(body)
	if err != nil {
		log.Warn("invalid payload: %v", err)
		s.handleError(w, r, errors.NewValidationError("payload", err.Error()))
		return
	}

	var tableRegion, chartRegion render.Buffer
	if err := render.Render(r.Context(), payload, &tableRegion, &chartRegion, render.Options{Locale: s.locale(r)}); err != nil {
		log.Warn("payload cannot be rendered: %v", err)
		s.handleError(w, r, errors.NewValidationError("payload", err.Error()))
		return
	}

	resp := renderResponse{
		Tables: tableRegion.Tables(),
		Charts: chartRegion.Charts(),
	}
	if resp.Tables == nil {
		resp.Tables = []*render.Table{}
	}
	if resp.Charts == nil {
		resp.Charts = []*render.Chart{}
	}
	writeJSON(w, http.StatusOK, resp)
}
