package models

// GroupRow is one line of a grouped production breakdown.
type GroupRow struct {
	Key         string  `bson:"key" json:"key"`
	Records     int     `bson:"records" json:"records"`
	BoxesGrade1 int     `bson:"boxes_grade1" json:"boxes_grade1"`
	BoxesGrade2 int     `bson:"boxes_grade2" json:"boxes_grade2"`
	Total       int     `bson:"total" json:"total"`
	PctGrade2   float64 `bson:"pct_grade2" json:"pct_grade2"`
}

// KPISet summarizes a filtered production record set.
type KPISet struct {
	Records int        `bson:"records" json:"records"`
	Total   int        `bson:"total" json:"total"`
	Mean    float64    `bson:"mean" json:"mean"`
	Max     int        `bson:"max" json:"max"`
	Min     int        `bson:"min" json:"min"`
	GroupBy string     `bson:"group_by,omitempty" json:"group_by,omitempty"`
	Groups  []GroupRow `bson:"groups" json:"groups"`
}

// CropRevenue is the revenue contribution of one crop.
type CropRevenue struct {
	Crop          string  `bson:"crop" json:"crop"`
	BoxesGrade1   int     `bson:"boxes_grade1" json:"boxes_grade1"`
	BoxesGrade2   int     `bson:"boxes_grade2" json:"boxes_grade2"`
	PriceGrade1   float64 `bson:"price_grade1" json:"price_grade1"`
	PriceGrade2   float64 `bson:"price_grade2" json:"price_grade2"`
	RevenueGrade1 float64 `bson:"revenue_grade1" json:"revenue_grade1"`
	RevenueGrade2 float64 `bson:"revenue_grade2" json:"revenue_grade2"`
	Revenue       float64 `bson:"revenue" json:"revenue"`
	DefaultPrice  bool    `bson:"default_price" json:"default_price"`
}

// CostLine is the input cost accumulated for one input category.
type CostLine struct {
	Type  InputType `bson:"type" json:"type"`
	Total float64   `bson:"total" json:"total"`
}

// FinancialBalance is derived from production, input costs and prices. It
// is never persisted as ground truth.
type FinancialBalance struct {
	RevenueGrade1 float64       `bson:"revenue_grade1" json:"revenue_grade1"`
	RevenueGrade2 float64       `bson:"revenue_grade2" json:"revenue_grade2"`
	RevenueTotal  float64       `bson:"revenue_total" json:"revenue_total"`
	InputCost     float64       `bson:"input_cost" json:"input_cost"`
	FixedCost     float64       `bson:"fixed_cost" json:"fixed_cost"`
	TotalCost     float64       `bson:"total_cost" json:"total_cost"`
	Profit        float64       `bson:"profit" json:"profit"`
	MarginPct     float64       `bson:"margin_pct" json:"margin_pct"`
	Crops         []CropRevenue `bson:"crops" json:"crops"`
	CostsByType   []CostLine    `bson:"costs_by_type" json:"costs_by_type"`
}

// Covariate names a climate factor correlated against production.
type Covariate string

const (
	CovariateTemperature Covariate = "temperature"
	CovariateHumidity    Covariate = "humidity"
	CovariateRainfall    Covariate = "rainfall"
)

// Covariates lists climate factors in reporting order.
var Covariates = []Covariate{CovariateTemperature, CovariateHumidity, CovariateRainfall}

// Correlation is a Pearson coefficient. When Defined is false, Value is
// meaningless and Reason explains why the coefficient does not exist.
type Correlation struct {
	Value   float64 `bson:"value" json:"value"`
	Defined bool    `bson:"defined" json:"defined"`
	Reason  string  `bson:"reason,omitempty" json:"reason,omitempty"`
}

// CorrelationMap holds one coefficient per covariate.
type CorrelationMap map[Covariate]Correlation

// TrendLabel is a categorical summary of a trend signal.
type TrendLabel string

const (
	TrendGrowth  TrendLabel = "growth"
	TrendStable  TrendLabel = "stable"
	TrendDecline TrendLabel = "decline"
)

// ForecastKind tags which variant of ForecastResult is populated.
type ForecastKind string

const (
	ForecastRegression       ForecastKind = "regression"
	ForecastSimple           ForecastKind = "simple"
	ForecastInsufficientData ForecastKind = "insufficient_data"
	ForecastError            ForecastKind = "error"
)

// RegressionOutcome is produced by the ensemble regression strategy.
type RegressionOutcome struct {
	NextPeriodForecast float64            `bson:"next_period_forecast" json:"next_period_forecast"`
	FitScore           float64            `bson:"fit_score" json:"fit_score"`
	FeatureImportance  map[string]float64 `bson:"feature_importance" json:"feature_importance"`
	Trend              TrendLabel         `bson:"trend" json:"trend"`
	ForecastMonth      int                `bson:"forecast_month" json:"forecast_month"`
	Locations          int                `bson:"locations" json:"locations"`
	TrainingRecords    int                `bson:"training_records" json:"training_records"`
}

// MonthTotal is the production total of one calendar month.
type MonthTotal struct {
	Month string `bson:"month" json:"month"`
	Total int    `bson:"total" json:"total"`
}

// SimpleOutcome is produced by the moving-average strategy.
type SimpleOutcome struct {
	MonthlyTrendPct     float64        `bson:"monthly_trend_pct" json:"monthly_trend_pct"`
	ClimateCorrelations CorrelationMap `bson:"climate_correlations" json:"climate_correlations"`
	MonthlyForecast     float64        `bson:"monthly_forecast" json:"monthly_forecast"`
	Trend               TrendLabel     `bson:"trend" json:"trend"`
	Months              []MonthTotal   `bson:"months" json:"months"`
}

// InsufficientData signals that too few records were available.
type InsufficientData struct {
	Required  int    `bson:"required" json:"required"`
	Available int    `bson:"available" json:"available"`
	Message   string `bson:"message" json:"message"`
}

// AnalysisFailure carries the cause of an internal computation failure.
type AnalysisFailure struct {
	Strategy ForecastKind `bson:"strategy" json:"strategy"`
	Cause    string       `bson:"cause" json:"cause"`
}

// ForecastResult is a tagged variant: exactly one of the pointer fields is
// set, matching Kind.
type ForecastResult struct {
	Kind         ForecastKind       `bson:"kind" json:"kind"`
	Regression   *RegressionOutcome `bson:"regression,omitempty" json:"regression,omitempty"`
	Simple       *SimpleOutcome     `bson:"simple,omitempty" json:"simple,omitempty"`
	Insufficient *InsufficientData  `bson:"insufficient,omitempty" json:"insufficient,omitempty"`
	Failure      *AnalysisFailure   `bson:"failure,omitempty" json:"failure,omitempty"`
}

// NewRegressionResult wraps a regression outcome.
func NewRegressionResult(o RegressionOutcome) ForecastResult {
	return ForecastResult{Kind: ForecastRegression, Regression: &o}
}

// NewSimpleResult wraps a moving-average outcome.
func NewSimpleResult(o SimpleOutcome) ForecastResult {
	return ForecastResult{Kind: ForecastSimple, Simple: &o}
}

// NewInsufficientResult builds the insufficient-data signal.
func NewInsufficientResult(required, available int, message string) ForecastResult {
	return ForecastResult{
		Kind:         ForecastInsufficientData,
		Insufficient: &InsufficientData{Required: required, Available: available, Message: message},
	}
}

// NewFailureResult builds an analysis-error result.
func NewFailureResult(strategy ForecastKind, cause string) ForecastResult {
	return ForecastResult{
		Kind:    ForecastError,
		Failure: &AnalysisFailure{Strategy: strategy, Cause: cause},
	}
}
