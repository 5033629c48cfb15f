package importer

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
)

func createHarvestWorkbook(t *testing.T, sheetName string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheetName))

	rows := [][]interface{}{
		{"Data", "Estufa", "Produto", "Caixas", "Caixas de Segunda", "Temperatura"},
		{45292, "A", "Tomate", 12, 2, 24.5},
		{"15/01/2024", "B", "Alface", "8", "0", "22,0"},
		{"", "", "", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "colheitas.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFileFirstSheet(t *testing.T) {
	path := createHarvestWorkbook(t, "Planilha1")

	table, err := ReadFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Data", "Estufa", "Produto", "Caixas", "Caixas de Segunda", "Temperatura"}, table.Columns)
	require.Len(t, table.Rows, 2)

	records := analytics.ProductionRecords(table)
	require.Len(t, records, 2)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, "A", records[0].Location)
	assert.Equal(t, 14, records[0].Total())
	assert.InDelta(t, 24.5, records[0].Temperature, 1e-9)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), records[1].Date)
	assert.InDelta(t, 22.0, records[1].Temperature, 1e-9)
}

func TestReadFileNamedSheet(t *testing.T) {
	path := createHarvestWorkbook(t, "Colheitas")

	table, err := ReadFile(path, "Colheitas")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	_, err = ReadFile(path, "Missing")
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	assert.Error(t, err)
}

func TestWriteProductionRoundTrip(t *testing.T) {
	records := []models.ProductionRecord{
		{Date: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), Location: "A", Crop: "Tomate", BoxesGrade1: 10, BoxesGrade2: 1, Temperature: 25.5, Humidity: 70, Rainfall: 1.2, Note: "ok"},
		{Location: "B", Crop: "Alface", BoxesGrade1: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProduction(&buf, records))

	table, err := Read(&buf, ProductionSheet)
	require.NoError(t, err)

	assert.Equal(t, records, analytics.ProductionRecords(table))
}

func TestWriteCostsRoundTrip(t *testing.T) {
	records := []models.InputCostRecord{
		{Date: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), Location: "A", Type: models.InputSeed, Quantity: 3, Unit: "pct", UnitCost: 4.5, TotalCost: 13.5, Supplier: "Casa Agro"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCosts(&buf, records))

	table, err := Read(&buf, "")
	require.NoError(t, err)

	assert.Equal(t, records, analytics.CostRecords(table))
}
