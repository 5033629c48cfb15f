package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/service/reporting"
)

const queryDateLayout = "2006-01-02"

// ReportService composes reports over stored records and manages prices.
type ReportService interface {
	BuildReport(ctx context.Context, req reporting.Request) (models.AnalyticsReport, error)
	ListReports(ctx context.Context, limit int64) ([]models.AnalyticsReport, error)
	PriceConfig(ctx context.Context) (models.PriceConfig, error)
	SavePriceConfig(ctx context.Context, cfg models.PriceConfig) (models.PriceConfig, error)
}

// ReportsHandler serves reports and price configuration.
type ReportsHandler struct {
	svc      ReportService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(svc ReportService, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, validate: validator.New(), logger: logger}
}

// Report computes an analytics report over stored records. Query
// parameters: from, to (YYYY-MM-DD), location and crop (repeatable or
// comma-separated), strategy.
func (h *ReportsHandler) Report(c *gin.Context) {
	scope, err := scopeFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	strategy, err := analytics.ParseStrategy(c.Query("strategy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.BuildReport(c.Request.Context(), reporting.Request{Scope: scope, Strategy: strategy})
	if err != nil {
		h.logger.Error("failed building report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Snapshots lists stored weekly snapshots, newest first.
func (h *ReportsHandler) Snapshots(c *gin.Context) {
	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	reports, err := h.svc.ListReports(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed listing snapshots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list snapshots"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetPrices returns the active price configuration.
func (h *ReportsHandler) GetPrices(c *gin.Context) {
	cfg, err := h.svc.PriceConfig(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading prices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prices"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// PutPrices replaces the price configuration.
func (h *ReportsHandler) PutPrices(c *gin.Context) {
	var cfg models.PriceConfig
	if !bindJSON(c, h.logger, &cfg) {
		return
	}
	if err := h.validate.Struct(cfg); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.svc.SavePriceConfig(c.Request.Context(), cfg)
	if err != nil {
		h.logger.Error("failed saving prices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save prices"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func scopeFromQuery(c *gin.Context) (models.Scope, error) {
	var scope models.Scope
	var err error
	if scope.From, err = queryDate(c, "from"); err != nil {
		return scope, err
	}
	if scope.To, err = queryDate(c, "to"); err != nil {
		return scope, err
	}
	if !scope.From.IsZero() && !scope.To.IsZero() && scope.To.Before(scope.From) {
		return scope, fmt.Errorf("to must not be before from")
	}
	scope.Locations = queryList(c, "location")
	scope.Crops = queryList(c, "crop")
	return scope, nil
}

func queryDate(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be formatted as YYYY-MM-DD", key)
	}
	return t, nil
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
