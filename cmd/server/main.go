package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/config"
	"github.com/mamadbah2/cropledger/internal/repository/mongodb"
	"github.com/mamadbah2/cropledger/internal/repository/sheets"
	"github.com/mamadbah2/cropledger/internal/scheduler"
	"github.com/mamadbah2/cropledger/internal/server/handlers"
	"github.com/mamadbah2/cropledger/internal/server/router"
	recordsvc "github.com/mamadbah2/cropledger/internal/service/records"
	reportingsvc "github.com/mamadbah2/cropledger/internal/service/reporting"
	"github.com/mamadbah2/cropledger/pkg/clients/weather"
	"github.com/mamadbah2/cropledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Logging.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongo"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Reports read the spreadsheet when one is configured, since captured
	// records are mirrored into it alongside manual entries.
	var (
		source reportingsvc.Source = mongoRepo
		mirror *recordsvc.SheetMirror
	)
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		source = sheets.NewRecordSource(sheetsRepo, cfg.Sheets.ProductionRange, cfg.Sheets.CostsRange)
		mirror = &recordsvc.SheetMirror{
			Repo:            sheetsRepo,
			ProductionRange: cfg.Sheets.ProductionRange,
			CostsRange:      cfg.Sheets.CostsRange,
		}
		baseLogger.Info("google sheets source enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, reading records from mongodb only")
	}

	var weatherClient weather.Client
	if cfg.Weather.Enabled() {
		weatherClient = weather.NewClient(cfg.Weather)
		baseLogger.Info("openweather client enabled", zap.String("default_city", cfg.Weather.DefaultCity))
	} else {
		baseLogger.Warn("openweather api key missing, climate values must be supplied by clients")
	}

	opts := cfg.AnalyticsOptions()
	recordSvc := recordsvc.NewService(mongoRepo, weatherClient, mirror, baseLogger.Named("svc.records"))
	reportingSvc := reportingsvc.NewService(source, mongoRepo, mongoRepo, opts, cfg.Analytics.FixedCosts, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Analytics: handlers.NewAnalyticsHandler(opts, baseLogger.Named("handlers.analytics")),
		Records:   handlers.NewRecordsHandler(recordSvc, baseLogger.Named("handlers.records")),
		Reports:   handlers.NewReportsHandler(reportingSvc, baseLogger.Named("handlers.reports")),
	}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
