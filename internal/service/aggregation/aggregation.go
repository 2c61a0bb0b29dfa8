// Package aggregation derives dashboard metrics and report series from an
// inventory snapshot. Every function here is pure and total: any snapshot,
// including an empty one, produces a result.
package aggregation

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockboard/internal/domain/models"
)

// ComputeMetrics derives the dashboard summary cards. PendingOrders and
// UpcomingDeliveries are left at zero.
func ComputeMetrics(snapshot models.Snapshot) models.DashboardMetrics {
	alerts := LowStock(snapshot)

	return models.DashboardMetrics{
		TotalItems:    len(snapshot),
		LowStockItems: len(alerts),
		RecentlyAdded: RecentlyAdded(snapshot, models.RecentlyAddedLimit),
		StockAlerts:   alerts,
	}
}

// LowStock returns the items below models.LowStockThreshold, in snapshot order.
func LowStock(snapshot models.Snapshot) []models.Item {
	low := make([]models.Item, 0)
	for _, item := range snapshot {
		if item.Quantity < models.LowStockThreshold {
			low = append(low, item)
		}
	}
	return low
}

// RecentlyAdded returns the last n items of the snapshot in their original order.
func RecentlyAdded(snapshot models.Snapshot, n int) []models.Item {
	if n <= 0 {
		return []models.Item{}
	}

	start := len(snapshot) - n
	if start < 0 {
		start = 0
	}

	recent := make([]models.Item, len(snapshot)-start)
	copy(recent, snapshot[start:])
	return recent
}

// ComputeReportSeries builds the bar and pie chart series. Both carry one
// point per item in snapshot order; ByCategory is not merged by category.
func ComputeReportSeries(snapshot models.Snapshot) models.ReportSeries {
	series := models.ReportSeries{
		ByItem:     make([]models.SeriesPoint, 0, len(snapshot)),
		ByCategory: make([]models.SeriesPoint, 0, len(snapshot)),
	}

	for _, item := range snapshot {
		value := float64(item.Quantity)
		series.ByItem = append(series.ByItem, models.SeriesPoint{Label: item.Name, Value: value})
		series.ByCategory = append(series.ByCategory, models.SeriesPoint{Label: item.Category, Value: value})
	}

	return series
}

// AggregateByCategory sums quantities per distinct category. Categories appear
// in the order they are first seen in the snapshot.
func AggregateByCategory(snapshot models.Snapshot) []models.SeriesPoint {
	totals := make([]models.SeriesPoint, 0)
	index := make(map[string]int)

	for _, item := range snapshot {
		pos, ok := index[item.Category]
		if !ok {
			pos = len(totals)
			index[item.Category] = pos
			totals = append(totals, models.SeriesPoint{Label: item.Category})
		}
		totals[pos].Value += float64(item.Quantity)
	}

	return totals
}

// TotalUnits sums the quantity on hand across the snapshot.
func TotalUnits(snapshot models.Snapshot) int {
	total := 0
	for _, item := range snapshot {
		total += item.Quantity
	}
	return total
}

// StockValue is the sum of quantity times price across the snapshot.
func StockValue(snapshot models.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, item := range snapshot {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
