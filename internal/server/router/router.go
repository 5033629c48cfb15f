package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/server/handlers"
)

// Handlers groups the HTTP handler adapters served by the engine.
type Handlers struct {
	Analytics *handlers.AnalyticsHandler
	Records   *handlers.RecordsHandler
	Reports   *handlers.ReportsHandler
}

// New wires the Gin engine with required routes and middlewares. Record
// and report routes are only mounted when their handler is present.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	if h.Analytics != nil {
		a := api.Group("/analytics")
		a.POST("/normalize", h.Analytics.Normalize)
		a.POST("/aggregate", h.Analytics.Aggregate)
		a.POST("/balance", h.Analytics.Balance)
		a.POST("/correlate", h.Analytics.Correlate)
		a.POST("/forecast", h.Analytics.Forecast)
	}
	if h.Records != nil {
		api.POST("/records/production", h.Records.CreateProduction)
		api.POST("/records/costs", h.Records.CreateCost)
	}
	if h.Reports != nil {
		api.GET("/reports", h.Reports.Report)
		api.GET("/reports/snapshots", h.Reports.Snapshots)
		api.GET("/prices", h.Reports.GetPrices)
		api.PUT("/prices", h.Reports.PutPrices)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
