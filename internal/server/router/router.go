package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/server/handlers"
	"github.com/mamadbah2/stockboard/internal/server/middleware"
)

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
	Editor    *handlers.EditorHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	dashboard := api.Group("/dashboard")
	dashboard.GET("", h.Dashboard.Show)
	dashboard.GET("/history", h.Dashboard.History)

	reports := api.Group("/reports")
	reports.GET("", h.Reports.Show)
	reports.GET("/csv", h.Reports.CSV)
	reports.GET("/print", h.Reports.Print)
	reports.POST("/publish", h.Reports.Publish)

	sessions := api.Group("/editor/sessions")
	sessions.POST("", h.Editor.Open)
	sessions.GET("/:sid", h.Editor.Show)
	sessions.DELETE("/:sid", h.Editor.Close)
	sessions.POST("/:sid/reload", h.Editor.Reload)
	sessions.GET("/:sid/items", h.Editor.Items)
	sessions.DELETE("/:sid/items/:id", h.Editor.DeleteItem)
	sessions.PUT("/:sid/draft", h.Editor.UpdateDraft)
	sessions.DELETE("/:sid/draft", h.Editor.ResetDraft)
	sessions.POST("/:sid/edit/:id", h.Editor.StartEdit)
	sessions.POST("/:sid/submit", h.Editor.Submit)
	sessions.PUT("/:sid/page", h.Editor.SetPage)
	sessions.PUT("/:sid/page-size", h.Editor.SetPageSize)
	sessions.GET("/:sid/events", h.Editor.Events)

	logger.Info("router initialized")

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
