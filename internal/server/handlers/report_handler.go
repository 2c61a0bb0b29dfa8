package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/internal/service/export"
	"github.com/mamadbah2/stockboard/internal/service/reporting"
)

// ReportService computes the report series.
type ReportService interface {
	Report(ctx context.Context) (reporting.ReportView, error)
}

// ReportPublisher pushes a series to a spreadsheet.
type ReportPublisher interface {
	Publish(ctx context.Context, series []models.SeriesPoint) error
}

// ReportHandler serves the reports screen and its exports.
type ReportHandler struct {
	svc       ReportService
	publisher ReportPublisher
	logger    *zap.Logger
}

// NewReportHandler constructs the handler. publisher may be nil.
func NewReportHandler(svc ReportService, publisher ReportPublisher, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, publisher: publisher, logger: logger}
}

// Show returns both chart series and the category totals.
func (h *ReportHandler) Show(c *gin.Context) {
	view, err := h.svc.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to compute report", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CSV downloads the selected series as report.csv.
func (h *ReportHandler) CSV(c *gin.Context) {
	kind, err := reporting.ParseSeriesKind(c.Query("series"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to compute report", err)
		return
	}

	data, err := export.ToCSV(view.Select(kind))
	if err != nil {
		h.logger.Error("failed to encode csv", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build csv"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename))
	c.Data(http.StatusOK, export.CSVContentType, data)
}

// Print renders the printable chart page.
func (h *ReportHandler) Print(c *gin.Context) {
	view, err := h.svc.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to compute report", err)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderPrintable(&buf, view.Series); err != nil {
		h.logger.Error("failed to render printable report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to render report"})
		return
	}

	c.Data(http.StatusOK, export.PrintableContentType, buf.Bytes())
}

// Publish writes the selected series to the configured spreadsheet.
func (h *ReportHandler) Publish(c *gin.Context) {
	if h.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sheet publishing is not configured"})
		return
	}

	kind, err := reporting.ParseSeriesKind(c.Query("series"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to compute report", err)
		return
	}

	series := view.Select(kind)
	if err := h.publisher.Publish(c.Request.Context(), series); err != nil {
		h.logger.Error("failed to publish report", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to publish report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"series": kind, "rows": len(series)})
}
