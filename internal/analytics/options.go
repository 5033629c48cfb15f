// Package analytics derives KPIs, financial balance, climate correlation and
// production forecasts from normalized production and input-cost records.
//
// Every function in this package is a pure computation over its arguments:
// nothing here mutates inputs, keeps package state, or performs I/O, so the
// operations may run concurrently over independently owned record sets.
// Configuration arrives only through Options.
package analytics

import (
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/forest"
)

// Options carries the policy constants used by the analytics operations.
type Options struct {
	DefaultPrices models.GradePrices

	MinSimpleRecords     int
	MinRegressionRecords int
	RegressionEnabled    bool

	// ForecastDayScale turns the trailing per-record average into a
	// monthly projection.
	ForecastDayScale    float64
	MovingAverageWindow int

	// ForecastDayOfMonth is the day used in synthetic regression rows.
	ForecastDayOfMonth int
	// GrowthBaselineFactor scales mean(total) x locations before the
	// regression forecast is compared against it.
	GrowthBaselineFactor float64

	Forest forest.Params
}

// DefaultOptions returns the stock policy constants.
func DefaultOptions() Options {
	return Options{
		DefaultPrices:        models.GradePrices{Grade1: 10.0, Grade2: 5.0},
		MinSimpleRecords:     5,
		MinRegressionRecords: 10,
		RegressionEnabled:    true,
		ForecastDayScale:     30,
		MovingAverageWindow:  3,
		ForecastDayOfMonth:   15,
		GrowthBaselineFactor: 1.0,
		Forest:               forest.DefaultParams(),
	}
}

func (o Options) movingWindow() int {
	if o.MovingAverageWindow <= 0 {
		return 3
	}
	return o.MovingAverageWindow
}

func (o Options) forecastDay() int {
	if o.ForecastDayOfMonth < 1 || o.ForecastDayOfMonth > 28 {
		return 15
	}
	return o.ForecastDayOfMonth
}

func (o Options) growthFactor() float64 {
	if o.GrowthBaselineFactor <= 0 {
		return 1.0
	}
	return o.GrowthBaselineFactor
}
