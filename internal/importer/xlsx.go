// Package importer moves record sets in and out of xlsx workbooks.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Default sheet names used by exported workbooks.
const (
	ProductionSheet = "Colheitas"
	CostsSheet      = "Insumos"
)

// ErrNoSheets is returned for workbooks without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

var (
	productionColumns = []string{
		analytics.ColDate, analytics.ColLocation, analytics.ColCrop,
		analytics.ColBoxesGrade1, analytics.ColBoxesGrade2,
		analytics.ColTemperature, analytics.ColHumidity, analytics.ColRainfall,
		analytics.ColNote,
	}
	costColumns = []string{
		analytics.ColDate, analytics.ColLocation, analytics.ColCrop,
		analytics.ColType, analytics.ColQuantity, analytics.ColUnit,
		analytics.ColUnitCost, analytics.ColTotalCost,
		analytics.ColSupplier, analytics.ColLot, analytics.ColNote,
	}
)

// ReadFile opens path and reads sheet into a raw table. An empty sheet name
// selects the first worksheet.
func ReadFile(path, sheet string) (models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.Table{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

// Read is ReadFile over an already open stream.
func Read(r io.Reader, sheet string) (models.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (models.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return models.Table{}, ErrNoSheets
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.Table{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return tableFromRows(rows), nil
}

func tableFromRows(rows [][]string) models.Table {
	table := models.Table{Columns: []string{}, Rows: []models.Row{}}
	if len(rows) == 0 {
		return table
	}

	for i, cell := range rows[0] {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		table.Columns = append(table.Columns, name)
	}

	for _, line := range rows[1:] {
		row := make(models.Row, len(table.Columns))
		empty := true
		for i, cell := range line {
			if i >= len(table.Columns) {
				break
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			row[table.Columns[i]] = cell
		}
		if !empty {
			table.Rows = append(table.Rows, row)
		}
	}
	return table
}

// WriteProduction writes records as a single-sheet workbook with canonical
// column headers, so the file reads back through Normalize unchanged.
func WriteProduction(w io.Writer, records []models.ProductionRecord) error {
	lines := make([][]interface{}, len(records))
	for i, r := range records {
		lines[i] = []interface{}{
			formatDate(r.HasDate(), r.Date.Format("2006-01-02")),
			r.Location, r.Crop, r.BoxesGrade1, r.BoxesGrade2,
			r.Temperature, r.Humidity, r.Rainfall, r.Note,
		}
	}
	return write(w, ProductionSheet, productionColumns, lines)
}

// WriteCosts writes input-cost records the same way as WriteProduction.
func WriteCosts(w io.Writer, records []models.InputCostRecord) error {
	lines := make([][]interface{}, len(records))
	for i, r := range records {
		lines[i] = []interface{}{
			formatDate(r.HasDate(), r.Date.Format("2006-01-02")),
			r.Location, r.Crop, string(r.Type), r.Quantity, r.Unit,
			r.UnitCost, r.TotalCost, r.Supplier, r.Lot, r.Note,
		}
	}
	return write(w, CostsSheet, costColumns, lines)
}

func formatDate(ok bool, value string) string {
	if !ok {
		return ""
	}
	return value
}

func write(w io.Writer, sheet string, header []string, lines [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
