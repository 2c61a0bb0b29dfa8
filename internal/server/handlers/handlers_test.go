package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/internal/service/reporting"
	"github.com/mamadbah2/stockboard/pkg/clients/inventory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Dashboard(ctx context.Context) (reporting.DashboardView, error) {
	args := m.Called(ctx)
	return args.Get(0).(reporting.DashboardView), args.Error(1)
}

// MockHistoryReader is a mock implementation of HistoryReader
type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) ListMetricsSnapshots(ctx context.Context, limit int) ([]models.MetricsSnapshot, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MetricsSnapshot), args.Error(1)
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Report(ctx context.Context) (reporting.ReportView, error) {
	args := m.Called(ctx)
	return args.Get(0).(reporting.ReportView), args.Error(1)
}

// MockPublisher is a mock implementation of ReportPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, series []models.SeriesPoint) error {
	return m.Called(ctx, series).Error(0)
}

func transportErr() error {
	return &inventory.TransportError{Op: "list", Err: errors.New("connection refused")}
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dashboardEngine(h *DashboardHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/dashboard", h.Show)
	r.GET("/api/dashboard/history", h.History)
	return r
}

func TestDashboardHandler_Show(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Dashboard", mock.Anything).Return(reporting.DashboardView{
		Metrics: models.DashboardMetrics{TotalItems: 2, LowStockItems: 1},
	}, nil).Once()

	w := perform(dashboardEngine(NewDashboardHandler(svc, nil, nil)), http.MethodGet, "/api/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	metrics := body["metrics"].(map[string]any)
	assert.EqualValues(t, 2, metrics["total_items"])
	assert.EqualValues(t, 1, metrics["low_stock_items"])
	assert.Equal(t, false, body["stale"])
}

func TestDashboardHandler_ShowStale(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Dashboard", mock.Anything).Return(reporting.DashboardView{Stale: true}, transportErr()).Once()

	w := perform(dashboardEngine(NewDashboardHandler(svc, nil, nil)), http.MethodGet, "/api/dashboard", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stale":true`)
}

func TestDashboardHandler_ShowBackendDown(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Dashboard", mock.Anything).Return(reporting.DashboardView{}, transportErr()).Once()

	w := perform(dashboardEngine(NewDashboardHandler(svc, nil, nil)), http.MethodGet, "/api/dashboard", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestDashboardHandler_History(t *testing.T) {
	history := new(MockHistoryReader)
	history.On("ListMetricsSnapshots", mock.Anything, 3).Return([]models.MetricsSnapshot{{TotalItems: 4}}, nil).Once()
	r := dashboardEngine(NewDashboardHandler(new(MockDashboardService), history, nil))

	w := perform(r, http.MethodGet, "/api/dashboard/history?limit=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_items":4`)

	w = perform(r, http.MethodGet, "/api/dashboard/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	history.AssertExpectations(t)
}

func TestDashboardHandler_HistoryRejectsOversizedLimit(t *testing.T) {
	history := new(MockHistoryReader)
	r := dashboardEngine(NewDashboardHandler(new(MockDashboardService), history, nil))

	for _, limit := range []string{"501", "2000000000", "99999999999999999999"} {
		w := perform(r, http.MethodGet, "/api/dashboard/history?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}

	history.On("ListMetricsSnapshots", mock.Anything, maxHistoryLimit).Return([]models.MetricsSnapshot{}, nil).Once()
	w := perform(r, http.MethodGet, "/api/dashboard/history?limit=500", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	history.AssertExpectations(t)
}

func TestDashboardHandler_HistoryNotConfigured(t *testing.T) {
	w := perform(dashboardEngine(NewDashboardHandler(new(MockDashboardService), nil, nil)), http.MethodGet, "/api/dashboard/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func sampleReport() reporting.ReportView {
	return reporting.ReportView{
		Series: models.ReportSeries{
			ByItem:     []models.SeriesPoint{{Label: "Widget", Value: 5}, {Label: "A, B", Value: 2}},
			ByCategory: []models.SeriesPoint{{Label: "Tools", Value: 5}, {Label: "Tools", Value: 2}},
		},
		CategoryTotals: []models.SeriesPoint{{Label: "Tools", Value: 7}},
	}
}

func reportEngine(h *ReportHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/reports", h.Show)
	r.GET("/api/reports/csv", h.CSV)
	r.GET("/api/reports/print", h.Print)
	r.POST("/api/reports/publish", h.Publish)
	return r
}

func TestReportHandler_CSV(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report", mock.Anything).Return(sampleReport(), nil)
	r := reportEngine(NewReportHandler(svc, nil, nil))

	w := perform(r, http.MethodGet, "/api/reports/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name,Value\nWidget,5\n\"A, B\",2\n", w.Body.String())

	w = perform(r, http.MethodGet, "/api/reports/csv?series=category_totals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Name,Value\nTools,7\n", w.Body.String())

	w = perform(r, http.MethodGet, "/api/reports/csv?series=weekly", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_ShowBackendDown(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report", mock.Anything).Return(reporting.ReportView{}, transportErr()).Once()

	w := perform(reportEngine(NewReportHandler(svc, nil, nil)), http.MethodGet, "/api/reports", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReportHandler_Print(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report", mock.Anything).Return(sampleReport(), nil).Once()

	w := perform(reportEngine(NewReportHandler(svc, nil, nil)), http.MethodGet, "/api/reports/print", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "window.print()")
	assert.Contains(t, w.Body.String(), "<svg")
}

func TestReportHandler_Publish(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report", mock.Anything).Return(sampleReport(), nil)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, sampleReport().Series.ByItem).Return(nil).Once()

	w := perform(reportEngine(NewReportHandler(svc, publisher, nil)), http.MethodPost, "/api/reports/publish", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows":2`)
	publisher.AssertExpectations(t)
}

func TestReportHandler_PublishFailure(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report", mock.Anything).Return(sampleReport(), nil)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("quota exceeded")).Once()

	w := perform(reportEngine(NewReportHandler(svc, publisher, nil)), http.MethodPost, "/api/reports/publish", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReportHandler_PublishNotConfigured(t *testing.T) {
	w := perform(reportEngine(NewReportHandler(new(MockReportService), nil, nil)), http.MethodPost, "/api/reports/publish", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
