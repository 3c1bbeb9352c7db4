package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"transquote/internal/analyzer/docai"
	"transquote/internal/config"
	"transquote/internal/handler"
	"transquote/internal/repository/postgres"
	"transquote/internal/router"
	"transquote/internal/service"
	s3storage "transquote/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	batchRepo := postgres.NewBatchRepo(db)
	fileRepo := postgres.NewBatchFileRepo(db)
	resultRepo := postgres.NewAnalysisResultRepo(db)
	certRepo := postgres.NewCertificationTypeRepo(db)
	settingRepo := postgres.NewSettingRepo(db)

	// Initialize storage and the external analyzer
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	analyzer := docai.NewClient(&cfg.Analyzer)

	// Initialize services
	monitor := service.NewBatchJobMonitor(batchRepo, resultRepo, fileRepo, analyzer, service.MonitorConfig{
		PollInterval: time.Duration(cfg.Monitor.PollIntervalSecs) * time.Second,
	})
	settingsSvc := service.NewSettingsService(settingRepo, &cfg.Billing)
	fileSvc := service.NewFileService(fileRepo, batchRepo, s3Client, &cfg.S3)
	batchSvc := service.NewBatchService(batchRepo, fileRepo, resultRepo, s3Client, analyzer, monitor, cfg.S3.PresignExpiry)
	sheetSvc := service.NewSheetService(batchRepo, resultRepo, certRepo, settingsSvc)

	// Initialize handlers
	batchH := handler.NewBatchHandler(batchSvc, fileSvc)
	sheetH := handler.NewSheetHandler(sheetSvc, batchSvc)
	refH := handler.NewReferenceHandler(certRepo, settingsSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(batchH, sheetH, refH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		monitor.Shutdown()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	monitor.Shutdown()

	return nil
}
