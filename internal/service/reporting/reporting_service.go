package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/metrics"
	"github.com/mamadbah2/cropledger/internal/repository/mongodb"
)

const dateLayout = "2006-01-02"

// Source supplies scoped production and input-cost records.
type Source interface {
	ListProduction(ctx context.Context, scope models.Scope) ([]models.ProductionRecord, error)
	ListCosts(ctx context.Context, scope models.Scope) ([]models.InputCostRecord, error)
}

// Request selects what a report covers.
type Request struct {
	Scope    models.Scope
	Strategy analytics.Strategy
}

// Service composes analytics reports over stored records.
type Service struct {
	source    Source
	prices    mongodb.PriceStore
	reports   mongodb.ReportStore
	opts      analytics.Options
	fixedCost float64
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires a new reporting service instance. prices and reports
// may be nil: the configured defaults are used and snapshots are not stored.
func NewService(source Source, prices mongodb.PriceStore, reports mongodb.ReportStore, opts analytics.Options, fixedCost float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:    source,
		prices:    prices,
		reports:   reports,
		opts:      opts,
		fixedCost: fixedCost,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Options returns the analytics options the service computes with.
func (s *Service) Options() analytics.Options {
	return s.opts
}

// PriceConfig returns the stored pricing configuration, or the configured
// defaults when nothing has been stored yet.
func (s *Service) PriceConfig(ctx context.Context) (models.PriceConfig, error) {
	fallback := models.PriceConfig{
		Prices:    models.PriceTable{},
		Defaults:  s.opts.DefaultPrices,
		FixedCost: s.fixedCost,
	}
	if s.prices == nil {
		return fallback, nil
	}

	cfg, err := s.prices.GetPriceConfig(ctx)
	if errors.Is(err, mongodb.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return models.PriceConfig{}, err
	}
	if cfg.Prices == nil {
		cfg.Prices = models.PriceTable{}
	}
	return cfg, nil
}

// SavePriceConfig stores a new pricing configuration.
func (s *Service) SavePriceConfig(ctx context.Context, cfg models.PriceConfig) (models.PriceConfig, error) {
	if s.prices == nil {
		return models.PriceConfig{}, errors.New("price store is not configured")
	}
	cfg.UpdatedAt = s.now().UTC()
	if cfg.Prices == nil {
		cfg.Prices = models.PriceTable{}
	}
	if err := s.prices.SavePriceConfig(ctx, cfg); err != nil {
		return models.PriceConfig{}, err
	}
	s.logger.Info("price configuration updated", zap.Int("crops", len(cfg.Prices)), zap.Float64("fixed_cost", cfg.FixedCost))
	return cfg, nil
}

// BuildReport loads the records in scope and runs every analytics operation
// over them. The operations are independent and run concurrently.
func (s *Service) BuildReport(ctx context.Context, req Request) (models.AnalyticsReport, error) {
	production, err := s.source.ListProduction(ctx, req.Scope)
	if err != nil {
		return models.AnalyticsReport{}, fmt.Errorf("load production records: %w", err)
	}
	costs, err := s.source.ListCosts(ctx, req.Scope)
	if err != nil {
		return models.AnalyticsReport{}, fmt.Errorf("load input costs: %w", err)
	}
	production = analytics.Filter(production, req.Scope)
	costs = analytics.FilterCosts(costs, req.Scope)

	priceCfg, err := s.PriceConfig(ctx)
	if err != nil {
		return models.AnalyticsReport{}, fmt.Errorf("load price config: %w", err)
	}
	opts := s.opts
	if priceCfg.Defaults != (models.GradePrices{}) {
		opts.DefaultPrices = priceCfg.Defaults
	}

	report := models.AnalyticsReport{
		ID:        s.newID(),
		Scope:     req.Scope,
		CreatedAt: s.now().UTC(),
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		start := time.Now()
		report.KPIs = analytics.Aggregate(production, analytics.GroupSpec{})
		report.ByLocation = analytics.GroupRows(production, analytics.GroupSpec{By: analytics.GroupLocation, Sort: analytics.SortTotalDesc})
		report.ByCrop = analytics.GroupRows(production, analytics.GroupSpec{By: analytics.GroupCrop, Sort: analytics.SortTotalDesc})
		metrics.ObserveAnalytics("aggregate", "ok", start)
	})
	wg.Go(func() {
		start := time.Now()
		report.Balance = analytics.Balance(production, costs, priceCfg.Prices, priceCfg.FixedCost, opts)
		metrics.ObserveAnalytics("balance", "ok", start)
	})
	wg.Go(func() {
		start := time.Now()
		report.Correlations = analytics.Correlate(production)
		metrics.ObserveAnalytics("correlate", "ok", start)
	})
	wg.Go(func() {
		start := time.Now()
		report.Forecast = analytics.Forecast(production, req.Strategy, opts)
		metrics.ObserveAnalytics("forecast", string(report.Forecast.Kind), start)
	})
	wg.Wait()

	if report.Forecast.Kind == models.ForecastError {
		s.logger.Warn("forecast failed",
			zap.String("strategy", string(report.Forecast.Failure.Strategy)),
			zap.String("cause", report.Forecast.Failure.Cause),
		)
	}

	report.Summary = Summarize(report)
	s.logger.Info("analytics report built",
		zap.String("id", report.ID),
		zap.Int("production_records", len(production)),
		zap.Int("cost_records", len(costs)),
		zap.String("forecast", string(report.Forecast.Kind)),
	)
	return report, nil
}

// Snapshot builds a report over the week ending at now and stores it.
func (s *Service) Snapshot(ctx context.Context, now time.Time) (models.AnalyticsReport, error) {
	end := now.UTC()
	scope := models.Scope{From: end.AddDate(0, 0, -6), To: end}

	report, err := s.BuildReport(ctx, Request{Scope: scope, Strategy: analytics.StrategyAuto})
	if err != nil {
		return models.AnalyticsReport{}, err
	}
	if s.reports == nil {
		return report, nil
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		return models.AnalyticsReport{}, fmt.Errorf("store report snapshot: %w", err)
	}
	return report, nil
}

// ListReports returns stored snapshots, newest first.
func (s *Service) ListReports(ctx context.Context, limit int64) ([]models.AnalyticsReport, error) {
	if s.reports == nil {
		return []models.AnalyticsReport{}, nil
	}
	return s.reports.ListReports(ctx, limit)
}

// Summarize renders a short plain-text digest of a report.
func Summarize(r models.AnalyticsReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Production (%s): ", periodLabel(r.Scope))
	if r.KPIs.Records == 0 {
		b.WriteString("no records yet.")
		return b.String()
	}
	fmt.Fprintf(&b, "%d boxes across %d records, mean %.1f per record.", r.KPIs.Total, r.KPIs.Records, r.KPIs.Mean)
	if len(r.ByLocation) > 0 {
		top := r.ByLocation[0]
		fmt.Fprintf(&b, " Top location %s with %d boxes (%.1f%% grade 2).", top.Key, top.Total, top.PctGrade2)
	}

	fmt.Fprintf(&b, "\nRevenue %.2f, costs %.2f, profit %.2f", r.Balance.RevenueTotal, r.Balance.TotalCost, r.Balance.Profit)
	if r.Balance.RevenueTotal > 0 {
		fmt.Fprintf(&b, " (%.1f%% margin)", r.Balance.MarginPct)
	}
	b.WriteString(".")

	b.WriteString("\n")
	switch r.Forecast.Kind {
	case models.ForecastRegression:
		f := r.Forecast.Regression
		fmt.Fprintf(&b, "Forecast: %.0f boxes next month (R² %.2f), trend %s.", f.NextPeriodForecast, f.FitScore, f.Trend)
	case models.ForecastSimple:
		f := r.Forecast.Simple
		fmt.Fprintf(&b, "Forecast: %.0f boxes next month, monthly change %.1f%%, trend %s.", f.MonthlyForecast, f.MonthlyTrendPct, f.Trend)
	case models.ForecastInsufficientData:
		fmt.Fprintf(&b, "Forecast: %s.", r.Forecast.Insufficient.Message)
	case models.ForecastError:
		fmt.Fprintf(&b, "Forecast unavailable: %s.", r.Forecast.Failure.Cause)
	}
	return b.String()
}

func periodLabel(scope models.Scope) string {
	switch {
	case scope.From.IsZero() && scope.To.IsZero():
		return "all time"
	case scope.From.IsZero():
		return "until " + scope.To.Format(dateLayout)
	case scope.To.IsZero():
		return "since " + scope.From.Format(dateLayout)
	default:
		return scope.From.Format(dateLayout) + " to " + scope.To.Format(dateLayout)
	}
}
