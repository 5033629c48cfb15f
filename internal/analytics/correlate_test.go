package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

func climateHarvest(total int, temp, humidity, rain float64) models.ProductionRecord {
	r := harvest(day(2024, time.April, 1), "A", "Tomate", total, 0)
	r.Temperature, r.Humidity, r.Rainfall = temp, humidity, rain
	return r
}

func TestCorrelate(t *testing.T) {
	records := []models.ProductionRecord{
		climateHarvest(10, 20, 80, 5),
		climateHarvest(20, 22, 70, 5),
		climateHarvest(30, 24, 60, 5),
	}

	got := Correlate(records)

	assert.True(t, got[models.CovariateTemperature].Defined)
	assert.InDelta(t, 1.0, got[models.CovariateTemperature].Value, 1e-9)
	assert.True(t, got[models.CovariateHumidity].Defined)
	assert.InDelta(t, -1.0, got[models.CovariateHumidity].Value, 1e-9)

	rain := got[models.CovariateRainfall]
	assert.False(t, rain.Defined)
	assert.Equal(t, ReasonConstantFactor, rain.Reason)
}

func TestCorrelateDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		records []models.ProductionRecord
		reason  string
	}{
		{"no records", nil, ReasonTooFewRecords},
		{"single record", []models.ProductionRecord{climateHarvest(5, 20, 50, 1)}, ReasonTooFewRecords},
		{"constant total", []models.ProductionRecord{climateHarvest(5, 20, 50, 1), climateHarvest(5, 25, 55, 2)}, ReasonConstantTotal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correlate(tt.records)
			assert.Len(t, got, len(models.Covariates))
			for _, c := range got {
				assert.False(t, c.Defined)
				assert.Equal(t, tt.reason, c.Reason)
				assert.Equal(t, 0.0, c.Value)
			}
		})
	}
}
