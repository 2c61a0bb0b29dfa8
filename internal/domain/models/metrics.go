package models

const (
	// LowStockThreshold is the quantity below which an item needs restocking.
	LowStockThreshold = 10
	// RecentlyAddedLimit caps the recently added list on the dashboard.
	RecentlyAddedLimit = 5
)

// DashboardMetrics holds the summary cards rendered on the dashboard.
type DashboardMetrics struct {
	TotalItems    int    `json:"total_items"`
	LowStockItems int    `json:"low_stock_items"`
	RecentlyAdded []Item `json:"recently_added"`
	StockAlerts   []Item `json:"stock_alerts"`

	// PendingOrders and UpcomingDeliveries are not backed by any data source
	// yet; they are filled with placeholder values by the reporting service.
	PendingOrders      int `json:"pending_orders"`
	UpcomingDeliveries int `json:"upcoming_deliveries"`
}

// SeriesPoint is one labelled value of a chart or export.
type SeriesPoint struct {
	Label string  `bson:"label" json:"name"`
	Value float64 `bson:"value" json:"value"`
}

// ReportSeries holds the series behind the bar and pie charts.
type ReportSeries struct {
	ByItem     []SeriesPoint `json:"by_item"`
	ByCategory []SeriesPoint `json:"by_category"`
}
