package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/metrics"
)

// AnalyticsHandler exposes the stateless analytics operations over JSON.
// Every request carries its own records; nothing is read from storage.
type AnalyticsHandler struct {
	opts     analytics.Options
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAnalyticsHandler constructs the HTTP handler adapter.
func NewAnalyticsHandler(opts analytics.Options, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{opts: opts, validate: validator.New(), logger: logger}
}

type normalizeRequest struct {
	Kind  string       `json:"kind"`
	Table models.Table `json:"table"`
}

// Normalize maps a raw table onto the canonical production or cost schema.
func (h *AnalyticsHandler) Normalize(c *gin.Context) {
	var req normalizeRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	start := time.Now()

	switch req.Kind {
	case "", "production":
		c.JSON(http.StatusOK, gin.H{
			"table":   analytics.Normalize(req.Table),
			"records": analytics.ProductionRecords(req.Table),
		})
	case "costs":
		c.JSON(http.StatusOK, gin.H{
			"table":   analytics.NormalizeCosts(req.Table),
			"records": analytics.CostRecords(req.Table),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be production or costs"})
		return
	}
	metrics.ObserveAnalytics("normalize", "ok", start)
}

type aggregateRequest struct {
	Records []models.ProductionRecord `json:"records" validate:"dive"`
	Scope   models.Scope              `json:"scope"`
	GroupBy string                    `json:"group_by"`
	Sort    string                    `json:"sort"`
}

// Aggregate returns headline KPIs and an optional grouped breakdown.
func (h *AnalyticsHandler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if !h.bindRecords(c, &req) {
		return
	}

	groupBy, err := analytics.ParseGroupBy(req.GroupBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sortOrder, err := analytics.ParseSortOrder(req.Sort)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	records := analytics.Filter(req.Records, req.Scope)
	kpis := analytics.Aggregate(records, analytics.GroupSpec{By: groupBy, Sort: sortOrder})
	metrics.ObserveAnalytics("aggregate", "ok", start)

	c.JSON(http.StatusOK, kpis)
}

type balanceRequest struct {
	Production    []models.ProductionRecord `json:"production" validate:"dive"`
	Costs         []models.InputCostRecord  `json:"costs" validate:"dive"`
	Prices        models.PriceTable         `json:"prices" validate:"dive"`
	FixedCost     float64                   `json:"fixed_cost" validate:"gte=0"`
	DefaultPrices *models.GradePrices       `json:"default_prices"`
}

// Balance derives revenue, cost, profit and margin.
func (h *AnalyticsHandler) Balance(c *gin.Context) {
	var req balanceRequest
	if !h.bindRecords(c, &req) {
		return
	}

	opts := h.opts
	if req.DefaultPrices != nil {
		opts.DefaultPrices = *req.DefaultPrices
	}

	start := time.Now()
	balance := analytics.Balance(req.Production, req.Costs, req.Prices, req.FixedCost, opts)
	metrics.ObserveAnalytics("balance", "ok", start)

	c.JSON(http.StatusOK, balance)
}

type recordsRequest struct {
	Records  []models.ProductionRecord `json:"records" validate:"dive"`
	Strategy string                    `json:"strategy"`
}

// Correlate returns the climate correlation map.
func (h *AnalyticsHandler) Correlate(c *gin.Context) {
	var req recordsRequest
	if !h.bindRecords(c, &req) {
		return
	}

	start := time.Now()
	result := analytics.Correlate(req.Records)
	metrics.ObserveAnalytics("correlate", "ok", start)

	c.JSON(http.StatusOK, result)
}

// Forecast returns the tagged forecast result. Insufficient data and
// analysis errors are normal results and come back with status 200.
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	var req recordsRequest
	if !h.bindRecords(c, &req) {
		return
	}

	strategy, err := analytics.ParseStrategy(req.Strategy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	result := analytics.Forecast(req.Records, strategy, h.opts)
	metrics.ObserveAnalytics("forecast", string(result.Kind), start)

	if result.Kind == models.ForecastError {
		h.logger.Warn("forecast failed", zap.String("cause", result.Failure.Cause))
	}
	c.JSON(http.StatusOK, result)
}

// bindRecords binds the body and enforces the record constraints: box
// counts, costs and prices must not be negative.
func (h *AnalyticsHandler) bindRecords(c *gin.Context, dst any) bool {
	if !bindJSON(c, h.logger, dst) {
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func bindJSON(c *gin.Context, logger *zap.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Warn("invalid request payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
