package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(s.Metrics.middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware(s.CORSOrigin))
		r.Get("/reports/{id}", s.handleAPIReport)
		r.Post("/render", s.handleAPIRender)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleHome)
		r.Post("/upload", s.handleUpload)
		r.Get("/reports", s.handleReports)
		r.Get("/reports/{id}", s.handleReportDetail)
		r.Get("/reports/{id}/charts/{index}.png", s.handleChartPNG)
		r.Post("/reports/{id}/delete", s.handleDeleteReport)
	})

	if s.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.Static))))
	}
	return r
}
