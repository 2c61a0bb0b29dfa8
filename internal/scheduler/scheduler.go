package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/config"
	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/internal/service/reporting"
)

const runTimeout = 2 * time.Minute

// ReadingSource produces the data a scheduled run distributes.
type ReadingSource interface {
	TakeReading(ctx context.Context) (reporting.Reading, error)
}

// HistoryStore persists readings for the dashboard history.
type HistoryStore interface {
	SaveMetricsSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error
}

// ReportPublisher mirrors the stock levels series somewhere outside the service.
type ReportPublisher interface {
	Publish(ctx context.Context, series []models.SeriesPoint) error
}

// AlertNotifier delivers the low stock digest.
type AlertNotifier interface {
	NotifyStockAlerts(ctx context.Context, alerts []models.Item) error
}

// Sinks groups the optional destinations of a scheduled run. Nil members are skipped.
type Sinks struct {
	History   HistoryStore
	Publisher ReportPublisher
	Notifier  AlertNotifier
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	source   ReadingSource
	sinks    Sinks
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, source ReadingSource, sinks Sinks, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		source:   source,
		sinks:    sinks,
		logger:   logger,
	}, nil
}

// Start registers the report job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule stock report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled stock report failed", zap.Error(err))
	}
}

// RunOnce takes one reading and hands it to every configured sink. A failing
// sink is logged and does not stop the others. Only a failed reading is
// returned as an error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.logger.Info("generating stock report")

	reading, err := s.source.TakeReading(ctx)
	if err != nil {
		return err
	}

	if s.sinks.History != nil {
		if err := s.sinks.History.SaveMetricsSnapshot(ctx, reading.Record); err != nil {
			s.logger.Error("failed to save metrics snapshot", zap.Error(err))
		}
	}

	if s.sinks.Publisher != nil {
		if err := s.sinks.Publisher.Publish(ctx, reading.Series.ByItem); err != nil {
			s.logger.Error("failed to publish report", zap.Error(err))
		}
	}

	if s.sinks.Notifier != nil {
		if err := s.sinks.Notifier.NotifyStockAlerts(ctx, reading.Metrics.StockAlerts); err != nil {
			s.logger.Error("failed to send stock alerts", zap.Error(err))
		}
	}

	s.logger.Info("stock report done",
		zap.Int("total_items", reading.Metrics.TotalItems),
		zap.Int("low_stock_items", reading.Metrics.LowStockItems))
	return nil
}
