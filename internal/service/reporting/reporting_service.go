package reporting

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/internal/service/aggregation"
)

// SeriesKind selects which series an export is built from.
type SeriesKind string

const (
	SeriesByItem         SeriesKind = "item"
	SeriesByCategory     SeriesKind = "category"
	SeriesCategoryTotals SeriesKind = "category_totals"
)

// ParseSeriesKind accepts the kinds above; an empty value means SeriesByItem.
func ParseSeriesKind(raw string) (SeriesKind, error) {
	switch kind := SeriesKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case "":
		return SeriesByItem, nil
	case SeriesByItem, SeriesByCategory, SeriesCategoryTotals:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown series %q", raw)
	}
}

// Lister fetches a fresh inventory snapshot.
type Lister interface {
	List(ctx context.Context) (models.Snapshot, error)
}

// PlaceholderSource yields values for the dashboard cards that have no backing data.
type PlaceholderSource func() (pendingOrders, upcomingDeliveries int)

// RandomPlaceholders returns 1..50 pending orders and 20..29 upcoming deliveries.
func RandomPlaceholders() (int, int) {
	return rand.Intn(50) + 1, rand.Intn(10) + 20
}

// DashboardView is the payload behind the dashboard screen.
type DashboardView struct {
	Metrics           models.DashboardMetrics `json:"metrics"`
	PlaceholderFields []string                `json:"placeholder_fields"`
	FetchedAt         time.Time               `json:"fetched_at"`
	Stale             bool                    `json:"stale"`
}

// ReportView is the payload behind the reports screen.
type ReportView struct {
	Series         models.ReportSeries  `json:"series"`
	CategoryTotals []models.SeriesPoint `json:"category_totals"`
	FetchedAt      time.Time            `json:"fetched_at"`
}

// Select returns the series named by kind.
func (v ReportView) Select(kind SeriesKind) []models.SeriesPoint {
	switch kind {
	case SeriesByCategory:
		return v.Series.ByCategory
	case SeriesCategoryTotals:
		return v.CategoryTotals
	default:
		return v.Series.ByItem
	}
}

// Reading bundles everything derived from one snapshot, for scheduled jobs.
type Reading struct {
	Record  models.MetricsSnapshot
	Metrics models.DashboardMetrics
	Series  models.ReportSeries
}

// Service fetches snapshots and runs them through the aggregation engine.
// Every call fetches its own snapshot.
type Service struct {
	client       Lister
	placeholders PlaceholderSource
	logger       *zap.Logger
	now          func() time.Time

	mu            sync.Mutex
	lastDashboard *DashboardView
}

// NewService wires a new reporting service instance.
func NewService(client Lister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:       client,
		placeholders: RandomPlaceholders,
		logger:       logger,
		now:          time.Now,
	}
}

// Dashboard computes the dashboard metrics from a fresh snapshot. When the
// fetch fails and an earlier view exists, that view is returned marked stale
// together with the error.
func (s *Service) Dashboard(ctx context.Context) (DashboardView, error) {
	snapshot, err := s.client.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch inventory for dashboard", zap.Error(err))

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastDashboard != nil {
			view := *s.lastDashboard
			view.Stale = true
			return view, fmt.Errorf("load dashboard: %w", err)
		}
		return DashboardView{}, fmt.Errorf("load dashboard: %w", err)
	}

	metrics := aggregation.ComputeMetrics(snapshot)
	metrics.PendingOrders, metrics.UpcomingDeliveries = s.placeholders()

	view := DashboardView{
		Metrics:           metrics,
		PlaceholderFields: []string{"pending_orders", "upcoming_deliveries"},
		FetchedAt:         s.now().UTC(),
	}

	s.mu.Lock()
	s.lastDashboard = &view
	s.mu.Unlock()

	s.logger.Debug("dashboard computed",
		zap.Int("total_items", metrics.TotalItems),
		zap.Int("low_stock_items", metrics.LowStockItems))

	return view, nil
}

// Report computes the chart series from a fresh snapshot.
func (s *Service) Report(ctx context.Context) (ReportView, error) {
	snapshot, err := s.client.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch inventory for report", zap.Error(err))
		return ReportView{}, fmt.Errorf("load report: %w", err)
	}

	return ReportView{
		Series:         aggregation.ComputeReportSeries(snapshot),
		CategoryTotals: aggregation.AggregateByCategory(snapshot),
		FetchedAt:      s.now().UTC(),
	}, nil
}

// TakeReading computes metrics, series and a history record from one snapshot.
func (s *Service) TakeReading(ctx context.Context) (Reading, error) {
	snapshot, err := s.client.List(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("load snapshot: %w", err)
	}

	metrics := aggregation.ComputeMetrics(snapshot)

	lowNames := make([]string, 0, len(metrics.StockAlerts))
	for _, item := range metrics.StockAlerts {
		lowNames = append(lowNames, item.Name)
	}

	return Reading{
		Record: models.MetricsSnapshot{
			TakenAt:       s.now().UTC(),
			TotalItems:    metrics.TotalItems,
			LowStockItems: metrics.LowStockItems,
			TotalUnits:    aggregation.TotalUnits(snapshot),
			StockValue:    aggregation.StockValue(snapshot).StringFixed(2),
			LowStockNames: lowNames,
			ByCategory:    aggregation.AggregateByCategory(snapshot),
		},
		Metrics: metrics,
		Series:  aggregation.ComputeReportSeries(snapshot),
	}, nil
}
