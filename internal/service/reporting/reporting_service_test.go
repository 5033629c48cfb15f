package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/repository/mongodb"
)

type memorySource struct {
	production []models.ProductionRecord
	costs      []models.InputCostRecord
	err        error
}

func (m memorySource) ListProduction(context.Context, models.Scope) ([]models.ProductionRecord, error) {
	return m.production, m.err
}

func (m memorySource) ListCosts(context.Context, models.Scope) ([]models.InputCostRecord, error) {
	return m.costs, m.err
}

type memoryPrices struct {
	cfg   *models.PriceConfig
	saved []models.PriceConfig
}

func (m *memoryPrices) GetPriceConfig(context.Context) (models.PriceConfig, error) {
	if m.cfg == nil {
		return models.PriceConfig{}, mongodb.ErrNotFound
	}
	return *m.cfg, nil
}

func (m *memoryPrices) SavePriceConfig(_ context.Context, cfg models.PriceConfig) error {
	m.saved = append(m.saved, cfg)
	m.cfg = &cfg
	return nil
}

type memoryReports struct {
	saved []models.AnalyticsReport
}

func (m *memoryReports) SaveReport(_ context.Context, r models.AnalyticsReport) error {
	m.saved = append(m.saved, r)
	return nil
}

func (m *memoryReports) ListReports(context.Context, int64) ([]models.AnalyticsReport, error) {
	return m.saved, nil
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSource() memorySource {
	return memorySource{
		production: []models.ProductionRecord{
			{Date: day(time.January, 15), Location: "A", Crop: "Tomate", BoxesGrade1: 90, BoxesGrade2: 10},
			{Date: day(time.February, 15), Location: "B", Crop: "Alface", BoxesGrade1: 100, BoxesGrade2: 20},
			{Date: day(time.March, 15), Location: "a", Crop: "Tomate", BoxesGrade1: 80, BoxesGrade2: 10},
		},
		costs: []models.InputCostRecord{
			{Date: day(time.January, 10), Location: "A", Type: models.InputSeed, TotalCost: 150},
			{Date: day(time.February, 10), Location: "B", Type: models.InputLabor, TotalCost: 50},
		},
	}
}

func newTestService(src Source, prices mongodb.PriceStore, reports mongodb.ReportStore) *Service {
	opts := analytics.DefaultOptions()
	opts.MinSimpleRecords = 3
	svc := NewService(src, prices, reports, opts, 1000, nil)
	svc.now = func() time.Time { return time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "report-1" }
	return svc
}

func TestBuildReport(t *testing.T) {
	prices := &memoryPrices{cfg: &models.PriceConfig{
		Prices:    models.PriceTable{"Tomate": {Grade1: 20, Grade2: 10}},
		FixedCost: 100,
	}}
	svc := newTestService(sampleSource(), prices, nil)

	report, err := svc.BuildReport(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "report-1", report.ID)
	assert.Equal(t, 310, report.KPIs.Total)
	require.Len(t, report.ByLocation, 3)
	assert.Equal(t, "B", report.ByLocation[0].Key)
	require.Len(t, report.ByCrop, 2)
	assert.Equal(t, "Tomate", report.ByCrop[0].Key)

	// Tomate 170x20 + 20x10, Alface at defaults 100x10 + 20x5.
	assert.Equal(t, 3600.0+1100.0, report.Balance.RevenueTotal)
	assert.Equal(t, 300.0, report.Balance.TotalCost)

	require.Equal(t, models.ForecastSimple, report.Forecast.Kind)
	assert.InDelta(t, 3100.0, report.Forecast.Simple.MonthlyForecast, 1e-6)
	assert.Len(t, report.Correlations, 3)
	assert.Contains(t, report.Summary, "310 boxes across 3 records")
	assert.Contains(t, report.Summary, "Forecast: 3100 boxes next month")
}

func TestBuildReportAppliesScopeIgnoringCase(t *testing.T) {
	svc := newTestService(sampleSource(), nil, nil)

	report, err := svc.BuildReport(context.Background(), Request{Scope: models.Scope{Locations: []string{"A"}}})
	require.NoError(t, err)

	assert.Equal(t, 2, report.KPIs.Records)
	assert.Equal(t, 1150.0, report.Balance.TotalCost)
	assert.Equal(t, models.ForecastInsufficientData, report.Forecast.Kind)
	assert.Contains(t, report.Summary, "at least 3 dated records are required")
}

func TestBuildReportSourceError(t *testing.T) {
	svc := newTestService(memorySource{err: errors.New("offline")}, nil, nil)

	_, err := svc.BuildReport(context.Background(), Request{})
	assert.ErrorContains(t, err, "offline")
}

func TestPriceConfigFallsBackToDefaults(t *testing.T) {
	svc := newTestService(sampleSource(), &memoryPrices{}, nil)

	cfg, err := svc.PriceConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.GradePrices{Grade1: 10, Grade2: 5}, cfg.Defaults)
	assert.Equal(t, 1000.0, cfg.FixedCost)
	assert.NotNil(t, cfg.Prices)
}

func TestSavePriceConfig(t *testing.T) {
	prices := &memoryPrices{}
	svc := newTestService(sampleSource(), prices, nil)

	saved, err := svc.SavePriceConfig(context.Background(), models.PriceConfig{FixedCost: 50})
	require.NoError(t, err)

	assert.Equal(t, svc.now().UTC(), saved.UpdatedAt)
	require.Len(t, prices.saved, 1)

	_, err = newTestService(sampleSource(), nil, nil).SavePriceConfig(context.Background(), models.PriceConfig{})
	assert.Error(t, err)
}

func TestSnapshotStoresWeeklyReport(t *testing.T) {
	reports := &memoryReports{}
	svc := newTestService(sampleSource(), nil, reports)

	report, err := svc.Snapshot(context.Background(), time.Date(2024, time.March, 17, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, reports.saved, 1)
	assert.Equal(t, day(time.March, 11), report.Scope.From.Truncate(24*time.Hour))
	assert.Equal(t, 1, report.KPIs.Records)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(models.AnalyticsReport{})

	assert.Equal(t, "Production (all time): no records yet.", got)
}
