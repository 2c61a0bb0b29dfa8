package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
)

// SheetWriter is the part of the Google Sheets repository used to publish reports.
type SheetWriter interface {
	ClearRange(ctx context.Context, sheetRange string) error
	WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// SheetPublisher mirrors the CSV export into a spreadsheet range.
type SheetPublisher struct {
	writer     SheetWriter
	sheetRange string
	logger     *zap.Logger
}

// NewSheetPublisher wires a publisher writing into sheetRange.
func NewSheetPublisher(writer SheetWriter, sheetRange string, logger *zap.Logger) *SheetPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetPublisher{writer: writer, sheetRange: sheetRange, logger: logger}
}

// Publish replaces the content of the configured range with a Name,Value
// table of the series.
func (p *SheetPublisher) Publish(ctx context.Context, series []models.SeriesPoint) error {
	if p == nil || p.writer == nil {
		return errors.New("sheet publisher is not configured")
	}

	if err := p.writer.ClearRange(ctx, p.sheetRange); err != nil {
		return fmt.Errorf("clear report range: %w", err)
	}

	rows := make([][]interface{}, 0, len(series)+1)
	rows = append(rows, []interface{}{CSVHeader[0], CSVHeader[1]})
	for _, point := range series {
		rows = append(rows, []interface{}{point.Label, point.Value})
	}

	if err := p.writer.WriteRows(ctx, p.sheetRange, rows); err != nil {
		return fmt.Errorf("write report rows: %w", err)
	}

	p.logger.Info("report published to sheet", zap.String("range", p.sheetRange), zap.Int("rows", len(series)))
	return nil
}
