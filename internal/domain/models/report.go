package models

import "time"

// MetricsSnapshot is a dashboard reading persisted for history in MongoDB.
type MetricsSnapshot struct {
	TakenAt       time.Time     `bson:"taken_at" json:"taken_at"`
	TotalItems    int           `bson:"total_items" json:"total_items"`
	LowStockItems int           `bson:"low_stock_items" json:"low_stock_items"`
	TotalUnits    int           `bson:"total_units" json:"total_units"`
	StockValue    string        `bson:"stock_value" json:"stock_value"`
	LowStockNames []string      `bson:"low_stock_names" json:"low_stock_names"`
	ByCategory    []SeriesPoint `bson:"by_category" json:"by_category"`
}
