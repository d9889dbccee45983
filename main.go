package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ingest/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ingest/pkg/config"
	"github.com/ekaya-inc/ekaya-ingest/pkg/database"
	"github.com/ekaya-inc/ekaya-ingest/pkg/handlers"
	"github.com/ekaya-inc/ekaya-ingest/pkg/logging"
	"github.com/ekaya-inc/ekaya-ingest/pkg/middleware"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/registry"
	"github.com/ekaya-inc/ekaya-ingest/pkg/services"
	"github.com/ekaya-inc/ekaya-ingest/pkg/spreadsheet"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := loadRegistry(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load schema registry",
			zap.String("source", cfg.Registry.Source),
			zap.String("error", logging.SanitizeError(err)))
	}

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("registry_source", cfg.Registry.Source),
		zap.Int("registry_tables", len(tables)),
		zap.Int("csv_max_rows", cfg.Import.CSVMaxRows),
		zap.Int("excel_max_rows", cfg.Import.ExcelMaxRows),
		zap.Int("sql_max_sample_rows", cfg.Import.SQLMaxSampleRows),
		zap.Int64("max_upload_bytes", cfg.Import.MaxUploadBytes),
		zap.Bool("scan_injection", cfg.Import.ScanInjection))

	previewService := services.NewPreviewService(
		tables,
		spreadsheet.NewExcelizeReader(),
		cfg.ImportOptions(),
		cfg.MatchOptions(),
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, len(tables), logger).RegisterRoutes(mux)
	handlers.NewImportHandler(previewService, cfg.Import.MaxUploadBytes, logger).RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = middleware.RequestLogger(logger.Named("http"))(handler)
	handler = middleware.Recoverer(logger)(handler)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		useTLS := cfg.TLSCertPath != ""
		logger.Info("Starting ekaya-ingest",
			zap.String("addr", server.Addr),
			zap.Bool("tls", useTLS))
		if useTLS {
			errCh <- server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			errCh <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}

// loadRegistry resolves the configured target tables. The postgres source
// introspects once at startup; restart to pick up schema changes.
func loadRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]models.SchemaTable, error) {
	switch cfg.Registry.Source {
	case config.RegistryFile:
		logger.Info("Loading schema registry file", zap.String("path", cfg.Registry.Path))
		return registry.LoadFile(cfg.Registry.Path)
	case config.RegistryPostgres:
		connStr := cfg.Database.ConnectionString()
		logger.Info("Introspecting schema registry",
			zap.String("database", logging.SanitizeConnectionString(connStr)),
			zap.Strings("schemas", cfg.Registry.Schemas))
		db, err := database.NewConnection(ctx, &database.Config{ConnString: connStr})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistryConnection, err)
		}
		defer db.Close()
		return registry.Introspect(ctx, db, cfg.Registry.Schemas)
	default:
		return registry.Default(), nil
	}
}
