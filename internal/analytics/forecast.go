package analytics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/forest"
)

// ErrUnknownStrategy is returned when a forecast strategy name is not supported.
var ErrUnknownStrategy = errors.New("unknown forecast strategy")

var (
	errConstantTotal = errors.New("production total is constant; regression fit is undefined")
	errNoSplit       = errors.New("regression model found no informative split")
	errBadFitScore   = errors.New("regression fit score is not a finite number")
)

// Strategy selects a forecasting strategy. StrategyAuto picks by record count.
type Strategy string

const (
	StrategyAuto       Strategy = "auto"
	StrategyRegression Strategy = "regression"
	StrategySimple     Strategy = "simple"
)

// Regression feature names, in matrix column order.
const (
	FeatureMonth       = "month"
	FeatureDay         = "day"
	FeatureLocation    = "location"
	FeatureCrop        = "crop"
	FeatureTemperature = "temperature"
	FeatureHumidity    = "humidity"
)

var regressionFeatures = []string{
	FeatureMonth, FeatureDay, FeatureLocation, FeatureCrop, FeatureTemperature, FeatureHumidity,
}

// ParseStrategy validates a strategy name. The empty string means auto.
func ParseStrategy(value string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(value))); s {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyRegression, StrategySimple:
		return s, nil
	default:
		return StrategyAuto, fmt.Errorf("%w: %q", ErrUnknownStrategy, value)
	}
}

// Forecast estimates next-period production.
//
// Records without a date cannot be placed on the calendar and are dropped
// first; the thresholds in opts count the remaining records. Below the
// applicable threshold the result is the insufficient-data variant and no
// computation is attempted. Internal failures, including panics raised by
// the numeric code, come back as the error variant.
//
// A regression over a constant production total, or one whose forest finds
// no split, is an error result, never a flat forecast labelled stable.
func Forecast(records []models.ProductionRecord, strategy Strategy, opts Options) (result models.ForecastResult) {
	dated := make([]models.ProductionRecord, 0, len(records))
	for _, r := range records {
		if r.HasDate() {
			dated = append(dated, r)
		}
	}
	n := len(dated)

	kind, required := selectStrategy(n, strategy, opts)
	if kind == models.ForecastInsufficientData {
		return models.NewInsufficientResult(required, n,
			fmt.Sprintf("at least %d dated records are required, %d available", required, n))
	}

	defer func() {
		if r := recover(); r != nil {
			result = models.NewFailureResult(kind, fmt.Sprintf("panic: %v", r))
		}
	}()

	if kind == models.ForecastRegression {
		outcome, err := regress(dated, opts)
		if err != nil {
			return models.NewFailureResult(kind, err.Error())
		}
		return models.NewRegressionResult(outcome)
	}
	return models.NewSimpleResult(simpleForecast(dated, opts))
}

func selectStrategy(n int, strategy Strategy, opts Options) (models.ForecastKind, int) {
	regression := opts.RegressionEnabled && strategy != StrategySimple

	if regression && strategy == StrategyRegression {
		if n < opts.MinRegressionRecords {
			return models.ForecastInsufficientData, opts.MinRegressionRecords
		}
		return models.ForecastRegression, opts.MinRegressionRecords
	}
	if regression && n >= opts.MinRegressionRecords {
		return models.ForecastRegression, opts.MinRegressionRecords
	}
	if n >= opts.MinSimpleRecords {
		return models.ForecastSimple, opts.MinSimpleRecords
	}
	return models.ForecastInsufficientData, opts.MinSimpleRecords
}

// labelEncoder assigns codes to categories in sorted order.
type labelEncoder map[string]int

func newLabelEncoder(values []string) labelEncoder {
	distinct := slices.Clone(values)
	sort.Strings(distinct)
	distinct = slices.Compact(distinct)
	enc := make(labelEncoder, len(distinct))
	for i, v := range distinct {
		enc[v] = i
	}
	return enc
}

func regress(records []models.ProductionRecord, opts Options) (models.RegressionOutcome, error) {
	n := len(records)
	locations := make([]string, n)
	crops := make([]string, n)
	y := make([]float64, n)
	temps := make([]float64, n)
	hums := make([]float64, n)
	for i, r := range records {
		locations[i] = strings.TrimSpace(r.Location)
		crops[i] = strings.TrimSpace(r.Crop)
		y[i] = float64(r.Total())
		temps[i] = r.Temperature
		hums[i] = r.Humidity
	}
	if constant(y) {
		return models.RegressionOutcome{}, errConstantTotal
	}

	locEnc := newLabelEncoder(locations)
	cropEnc := newLabelEncoder(crops)

	X := make([][]float64, n)
	latest := records[0].Date
	for i, r := range records {
		X[i] = []float64{
			float64(r.Date.Month()),
			float64(r.Date.Day()),
			float64(locEnc[locations[i]]),
			float64(cropEnc[crops[i]]),
			r.Temperature,
			r.Humidity,
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}

	model, err := forest.Fit(X, y, opts.Forest)
	if err != nil {
		return models.RegressionOutcome{}, fmt.Errorf("fit regression model: %w", err)
	}

	importances := model.Importances()
	weights := make(map[string]float64, len(regressionFeatures))
	sum := 0.0
	for i, name := range regressionFeatures {
		weights[name] = importances[i]
		sum += importances[i]
	}
	if sum == 0 {
		return models.RegressionOutcome{}, errNoSplit
	}

	fit := stat.RSquaredFrom(model.PredictAll(X), y, nil)
	if math.IsNaN(fit) || math.IsInf(fit, 0) {
		return models.RegressionOutcome{}, errBadFitScore
	}

	nextMonth := int(latest.Month())%12 + 1
	crop := float64(modeCode(crops, cropEnc))
	meanTemp := stat.Mean(temps, nil)
	meanHum := stat.Mean(hums, nil)

	codes := make([]int, 0, len(locEnc))
	for _, code := range locEnc {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	forecast := 0.0
	for _, code := range codes {
		forecast += model.Predict([]float64{
			float64(nextMonth),
			float64(opts.forecastDay()),
			float64(code),
			crop,
			meanTemp,
			meanHum,
		})
	}

	baseline := stat.Mean(y, nil) * float64(len(codes)) * opts.growthFactor()
	trend := models.TrendStable
	if forecast > baseline {
		trend = models.TrendGrowth
	}

	return models.RegressionOutcome{
		NextPeriodForecast: forecast,
		FitScore:           fit,
		FeatureImportance:  weights,
		Trend:              trend,
		ForecastMonth:      nextMonth,
		Locations:          len(codes),
		TrainingRecords:    n,
	}, nil
}

// modeCode returns the code of the most frequent value; ties go to the
// smallest code.
func modeCode(values []string, enc labelEncoder) int {
	counts := make([]int, len(enc))
	for _, v := range values {
		counts[enc[v]]++
	}
	best := 0
	for code, c := range counts {
		if c > counts[best] {
			best = code
		}
	}
	return best
}

func simpleForecast(records []models.ProductionRecord, opts Options) models.SimpleOutcome {
	months := monthlyTotals(records)
	trendPct := meanPctChange(months)

	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b models.ProductionRecord) int {
		return a.Date.Compare(b.Date)
	})
	window := opts.movingWindow()
	if len(ordered) > window {
		ordered = ordered[len(ordered)-window:]
	}
	totals := make([]float64, len(ordered))
	for i, r := range ordered {
		totals[i] = float64(r.Total())
	}

	scale := opts.ForecastDayScale
	if scale <= 0 {
		scale = 30
	}
	monthly := 0.0
	if len(totals) > 0 {
		monthly = stat.Mean(totals, nil) * scale
	}

	trend := models.TrendStable
	switch {
	case trendPct > 0:
		trend = models.TrendGrowth
	case trendPct < 0:
		trend = models.TrendDecline
	}

	return models.SimpleOutcome{
		MonthlyTrendPct:     trendPct,
		ClimateCorrelations: Correlate(records),
		MonthlyForecast:     monthly,
		Trend:               trend,
		Months:              months,
	}
}

func monthlyTotals(records []models.ProductionRecord) []models.MonthTotal {
	totals := make(map[string]int)
	for _, r := range records {
		totals[monthKey(r.Date.Year(), int(r.Date.Month()))] += r.Total()
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.MonthTotal, len(keys))
	for i, k := range keys {
		out[i] = models.MonthTotal{Month: k, Total: totals[k]}
	}
	return out
}

// meanPctChange averages consecutive month-over-month changes. Pairs whose
// earlier month is 0 have no defined change and are skipped.
func meanPctChange(months []models.MonthTotal) float64 {
	var changes []float64
	for i := 1; i < len(months); i++ {
		prev := months[i-1].Total
		if prev == 0 {
			continue
		}
		changes = append(changes, float64(months[i].Total-prev)/float64(prev)*100)
	}
	if len(changes) == 0 {
		return 0
	}
	return stat.Mean(changes, nil)
}
