package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/internal/service/reporting"
)

// maxHistoryLimit bounds the history page size accepted from clients.
const maxHistoryLimit = 500

// DashboardService computes the dashboard view.
type DashboardService interface {
	Dashboard(ctx context.Context) (reporting.DashboardView, error)
}

// HistoryReader lists stored metrics readings, newest first.
type HistoryReader interface {
	ListMetricsSnapshots(ctx context.Context, limit int) ([]models.MetricsSnapshot, error)
}

// DashboardHandler serves the dashboard endpoints.
type DashboardHandler struct {
	svc     DashboardService
	history HistoryReader
	logger  *zap.Logger
}

// NewDashboardHandler constructs the handler. history may be nil when no
// storage is configured.
func NewDashboardHandler(svc DashboardService, history HistoryReader, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, history: history, logger: logger}
}

// Show returns the current dashboard metrics. When the backend is down but
// an earlier view exists, that view is served with stale set.
func (h *DashboardHandler) Show(c *gin.Context) {
	view, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		if view.Stale {
			h.logger.Warn("serving stale dashboard", zap.Error(err))
			c.JSON(http.StatusOK, view)
			return
		}
		respondError(c, h.logger, "failed to compute dashboard", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// History returns the stored readings.
func (h *DashboardHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics history is not configured"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be an integer between 1 and %d", maxHistoryLimit)})
			return
		}
		limit = n
	}

	snapshots, err := h.history.ListMetricsSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list metrics history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read metrics history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}
