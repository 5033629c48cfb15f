package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/importer"
)

func writeWorkbooks(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	production := filepath.Join(dir, "colheitas.xlsx")
	file, err := os.Create(production)
	require.NoError(t, err)
	require.NoError(t, importer.WriteProduction(file, []models.ProductionRecord{
		{Date: day(time.January, 10), Location: "A", Crop: "Tomate", BoxesGrade1: 90, BoxesGrade2: 10},
		{Date: day(time.February, 10), Location: "B", Crop: "Alface", BoxesGrade1: 40, BoxesGrade2: 20},
		{Date: day(time.March, 10), Location: "A", Crop: "Tomate", BoxesGrade1: 50},
	}))
	require.NoError(t, file.Close())

	costs := filepath.Join(dir, "insumos.xlsx")
	file, err = os.Create(costs)
	require.NoError(t, err)
	require.NoError(t, importer.WriteCosts(file, []models.InputCostRecord{
		{Date: day(time.January, 5), Location: "A", Type: models.InputSeed, TotalCost: 100},
	}))
	require.NoError(t, file.Close())

	return production, costs
}

func TestAnalyzeJSON(t *testing.T) {
	production, costs := writeWorkbooks(t)
	var out bytes.Buffer

	err := runAnalyze(context.Background(), &analyzeFlags{
		productionPath: production,
		costsPath:      costs,
		strategy:       "auto",
		groupBy:        "month",
		sort:           "key",
		logLevel:       "error",
	}, &out)
	require.NoError(t, err)

	var doc analysisOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, 210, doc.Report.KPIs.Total)
	assert.Equal(t, 100.0+1000.0, doc.Report.Balance.TotalCost)
	assert.Equal(t, models.ForecastInsufficientData, doc.Report.Forecast.Kind)
	require.NotNil(t, doc.Aggregate)
	require.Len(t, doc.Aggregate.Groups, 3)
	assert.Equal(t, "2024-01", doc.Aggregate.Groups[0].Key)
}

func TestAnalyzeTextWithScopeAndExport(t *testing.T) {
	production, _ := writeWorkbooks(t)
	export := filepath.Join(t.TempDir(), "filtered.xlsx")
	var out bytes.Buffer

	err := runAnalyze(context.Background(), &analyzeFlags{
		productionPath: production,
		from:           "2024-01-01",
		to:             "2024-01-31",
		locations:      []string{"a"},
		text:           true,
		exportPath:     export,
		logLevel:       "error",
	}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Production (2024-01-01 to 2024-01-31): 100 boxes across 1 records")

	table, err := importer.ReadFile(export, "")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestAnalyzeRejectsBadFlags(t *testing.T) {
	production, _ := writeWorkbooks(t)
	cases := map[string]*analyzeFlags{
		"bad date":       {productionPath: production, from: "10/01/2024"},
		"inverted range": {productionPath: production, from: "2024-02-01", to: "2024-01-01"},
		"bad strategy":   {productionPath: production, strategy: "neural"},
		"bad group":      {productionPath: production, groupBy: "season"},
		"missing file":   {productionPath: filepath.Join(t.TempDir(), "none.xlsx")},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			f.logLevel = "error"
			err := runAnalyze(context.Background(), f, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}
