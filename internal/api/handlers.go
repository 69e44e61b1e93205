package api

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/runview/internal/charts"
	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/services"
)

// HealthChecker reports whether a backing store can serve requests.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type Server struct {
	ReportService  services.ReportService
	Health         HealthChecker
	Templates      *template.Template
	Static         fs.FS
	Sessions       *SessionManager
	Metrics        *Metrics
	Locales        *locale.Registry
	ChartTheme     string
	MaxUploadBytes int64
	CORSOrigin     string

	uploads uploadGuard
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

// renderStatus executes the template into a buffer first so a template
// failure can still produce a clean 500.
func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	if _, ok := data["session"]; !ok {
		data["session"] = sessionFromContext(r.Context())
	}
	if view, ok := data["report"].(*reportView); ok && view != nil && len(view.Charts) > 0 {
		data["chart_scripts"] = charts.Scripts(s.ChartTheme)
	}

	log := logger.FromContext(r.Context())
	var buf bytes.Buffer
	if err := s.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) locale(r *http.Request) *locale.Formatter {
	reg := s.Locales
	if reg == nil {
		reg = locale.Default()
	}
	return reg.Match(r.Header.Get("Accept-Language"))
}

func (s *Server) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return 10 << 20
}

func reportIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid report ID: %s", idStr)
		return 0, errors.NewBadRequestError("invalid report ID")
	}
	return id, nil
}
