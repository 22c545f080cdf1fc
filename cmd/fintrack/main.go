package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/dashboard"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	ports "fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Level, _ = applog.ParseLevel(cfg.LogLevel)
	logCfg.File = cfg.LogFile
	logger := applog.New(logCfg)
	defer logger.Close()
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	be, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	owner := cfg.Owner()
	pipeline := dashboard.NewPipeline(logger.Logger)
	events, err := be.Store.Subscribe(ctx, owner)
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Store:    be.Store,
		Pipeline: pipeline,
		Sheets:   newSheets(ctx, cfg, logger),
		Owner:    owner,
		Product:  cfg.AppName,
		Now:      cfg.Now,
		Degraded: be.Store.Degraded,
		Ping:     be.Store.Ping,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"owner", owner,
			"degraded", be.Store.Degraded(),
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return pipeline.Run(gctx, events)
	})
	g.Go(func() error {
		if err := be.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// newSheets returns the Google Sheets exporter when credentials are
// configured. Without them the export endpoint reports 503.
func newSheets(ctx context.Context, cfg *config.Config, logger *applog.Logger) ports.RowExporter {
	if !cfg.SheetsConfigured() {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil
	}
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		return nil
	}
	logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return cli
}
