package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/vytor/runview/internal/analyzer"
	"github.com/vytor/runview/internal/api"
	"github.com/vytor/runview/internal/config"
	"github.com/vytor/runview/internal/db"
	"github.com/vytor/runview/internal/jobs"
	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/repository/sqlite"
	"github.com/vytor/runview/internal/services"
	"github.com/vytor/runview/internal/worker"
	"github.com/vytor/runview/web"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("runview server starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("analyzer_url=%s", cfg.AnalyzerURL)
	log.Debug("analyzer_timeout_seconds=%d", cfg.AnalyzerTimeoutSeconds)
	log.Debug("max_upload_bytes=%d", cfg.MaxUploadBytes)
	log.Debug("history_limit=%d", cfg.HistoryLimit)
	log.Debug("maintenance_workers=%d", cfg.MaintenanceWorkers)
	log.Debug("maintenance_queue_size=%d", cfg.MaintenanceQueueSize)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("cors_origin=%s", cfg.CORSOrigin)
	log.Debug("chart_theme=%s", cfg.ChartTheme)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load templates
	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates(web.Templates())
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}
	log.Debug("templates loaded successfully")

	if cfg.SessionKey == "" {
		log.Warn("SESSION_KEY not set, sessions will not survive a restart")
	}

	// Background pool for history maintenance
	maintenancePool := worker.NewPool(cfg.MaintenanceWorkers, cfg.MaintenanceQueueSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	maintenancePool.Start(ctx)

	// Initialize services
	client := analyzer.New(cfg.AnalyzerURL, time.Duration(cfg.AnalyzerTimeoutSeconds)*time.Second)
	reportRepo := sqlite.NewReportRepository(database.DB)
	queue := jobs.NewWorkerQueue(maintenancePool, reportRepo)
	reportService := services.NewReportService(client, reportRepo, cfg.HistoryLimit, queue)

	srv := &api.Server{
		ReportService:  reportService,
		Health:         database,
		Templates:      tmpl,
		Static:         web.Static(),
		Sessions:       api.NewSessionManager([]byte(cfg.SessionKey), false),
		Metrics:        api.NewMetrics(),
		Locales:        locale.Default(),
		ChartTheme:     cfg.ChartTheme,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigin:     cfg.CORSOrigin,
	}

	// Configure HTTP server. The write timeout covers the analyzer call.
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.AnalyzerTimeoutSeconds)*time.Second + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	if cfg.OpenBrowser {
		url := localURL(cfg.Addr)
		log.Info("opening %s in the browser", url)
		if err := browser.OpenURL(url); err != nil {
			log.Warn("failed to open browser: %v", err)
		}
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Let queued maintenance finish before the database closes
	log.Debug("stopping maintenance pool")
	maintenancePool.Stop()

	log.Info("===========================================")
	log.Info("runview server stopped")
	log.Info("===========================================")
}

// localURL turns a listen address such as ":8080" into a browsable URL.
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
