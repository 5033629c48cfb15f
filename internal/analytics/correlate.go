package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Reasons attached to undefined correlations.
const (
	ReasonTooFewRecords   = "fewer than 2 records"
	ReasonConstantFactor  = "covariate is constant across records"
	ReasonConstantTotal   = "production total is constant across records"
	ReasonNonFiniteResult = "coefficient is not a finite number"
)

// Correlate computes the Pearson coefficient between the derived total and
// each climate covariate. A coefficient that does not exist (too few
// records, or zero variance on either side) is reported with Defined set to
// false and a reason; it is never folded into a numeric 0.
func Correlate(records []models.ProductionRecord) models.CorrelationMap {
	totals := make([]float64, len(records))
	for i, r := range records {
		totals[i] = float64(r.Total())
	}

	out := make(models.CorrelationMap, len(models.Covariates))
	for _, cov := range models.Covariates {
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = covariate(r, cov)
		}
		out[cov] = pearson(totals, values)
	}
	return out
}

func covariate(r models.ProductionRecord, c models.Covariate) float64 {
	switch c {
	case models.CovariateTemperature:
		return r.Temperature
	case models.CovariateHumidity:
		return r.Humidity
	case models.CovariateRainfall:
		return r.Rainfall
	default:
		return 0
	}
}

func pearson(totals, values []float64) models.Correlation {
	switch {
	case len(totals) < 2:
		return models.Correlation{Reason: ReasonTooFewRecords}
	case constant(values):
		return models.Correlation{Reason: ReasonConstantFactor}
	case constant(totals):
		return models.Correlation{Reason: ReasonConstantTotal}
	}

	r := stat.Correlation(totals, values, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return models.Correlation{Reason: ReasonNonFiniteResult}
	}
	return models.Correlation{Value: r, Defined: true}
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
