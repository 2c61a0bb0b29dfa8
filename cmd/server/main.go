package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/config"
	"github.com/mamadbah2/stockboard/internal/repository/mongodb"
	"github.com/mamadbah2/stockboard/internal/repository/sheets"
	"github.com/mamadbah2/stockboard/internal/scheduler"
	"github.com/mamadbah2/stockboard/internal/server/handlers"
	"github.com/mamadbah2/stockboard/internal/server/router"
	"github.com/mamadbah2/stockboard/internal/service/editor"
	"github.com/mamadbah2/stockboard/internal/service/export"
	reportingsvc "github.com/mamadbah2/stockboard/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/stockboard/internal/service/whatsapp"
	"github.com/mamadbah2/stockboard/pkg/clients/inventory"
	whatsappclient "github.com/mamadbah2/stockboard/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockboard/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)

	inventoryClient := inventory.NewClient(cfg.Inventory)
	reportingSvc := reportingsvc.NewService(inventoryClient, logger.Named(baseLogger, "svc.reporting"))
	sessions := editor.NewSessionManager(inventoryClient, cfg.Editor.PageSize, cfg.Editor.SessionIdleTimeout, logger.Named(baseLogger, "svc.editor"))

	var (
		sinks     scheduler.Sinks
		history   handlers.HistoryReader
		publisher handlers.ReportPublisher
	)

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks.History = mongoRepo
		history = mongoRepo
	} else {
		baseLogger.Warn("mongodb not configured, metrics history disabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetPublisher := export.NewSheetPublisher(sheetsRepo, cfg.Sheets.ReportRange, logger.Named(baseLogger, "svc.export"))
		sinks.Publisher = sheetPublisher
		publisher = sheetPublisher
	} else {
		baseLogger.Warn("google sheets not configured, report publishing disabled")
	}

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		sinks.Notifier = whatsappsvc.NewStockAlertService(whatsClient, cfg.WhatsApp.AlertRecipient, logger.Named(baseLogger, "svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp not configured, stock alerts disabled")
	}

	engine := router.New(router.Handlers{
		Dashboard: handlers.NewDashboardHandler(reportingSvc, history, logger.Named(baseLogger, "handlers.dashboard")),
		Reports:   handlers.NewReportHandler(reportingSvc, publisher, logger.Named(baseLogger, "handlers.reports")),
		Editor:    handlers.NewEditorHandler(sessions, logger.Named(baseLogger, "handlers.editor")),
	}, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, sinks, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// No WriteTimeout: editor event streams stay open for the session lifetime.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.RunSweeper(ctx, sweepInterval(cfg.Editor.SessionIdleTimeout))

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("inventory_api", cfg.Inventory.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	// Closing the sessions ends their event streams so Shutdown can drain.
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// sweepInterval checks for idle sessions at least once a minute.
func sweepInterval(idle time.Duration) time.Duration {
	if idle < time.Minute {
		return idle
	}
	return time.Minute
}
