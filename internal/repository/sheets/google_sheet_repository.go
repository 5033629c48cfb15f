package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/cropledger/internal/config"
	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// ReadTable reads sheetRange and treats its first row as the header.
func ReadTable(ctx context.Context, repo Repository, sheetRange string) (models.Table, error) {
	values, err := repo.ReadRange(ctx, sheetRange)
	if err != nil {
		return models.Table{}, err
	}
	return TableFromValues(values), nil
}

// TableFromValues converts a header-first value grid into a raw table.
// Blank header cells get positional names; fully empty rows are dropped.
// Short rows leave their trailing columns unset.
func TableFromValues(values [][]interface{}) models.Table {
	if len(values) == 0 {
		return models.Table{Columns: []string{}, Rows: []models.Row{}}
	}

	header := values[0]
	columns := make([]string, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(fmt.Sprint(cell))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		columns[i] = name
	}

	rows := make([]models.Row, 0, len(values)-1)
	for _, line := range values[1:] {
		row := make(models.Row, len(columns))
		empty := true
		for i, cell := range line {
			if i >= len(columns) {
				break
			}
			if s, ok := cell.(string); !ok || strings.TrimSpace(s) != "" {
				empty = false
			}
			row[columns[i]] = cell
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return models.Table{Columns: columns, Rows: rows}
}

// Header rows written when a sheet is created empty.
var (
	ProductionHeader = []interface{}{"Data", "Local", "Produto", "Caixas", "Caixas de Segunda", "Temperatura", "Umidade", "Chuva", "Observação"}
	CostHeader       = []interface{}{"Data", "Local", "Produto", "Tipo", "Quantidade", "Unidade", "Custo Unitário", "Custo Total", "Fornecedor", "Lote", "Observação"}
)

// ProductionRow renders a record in ProductionHeader order.
func ProductionRow(r models.ProductionRecord) []interface{} {
	date := ""
	if r.HasDate() {
		date = r.Date.Format("02/01/2006")
	}
	return []interface{}{
		date, r.Location, r.Crop, r.BoxesGrade1, r.BoxesGrade2,
		r.Temperature, r.Humidity, r.Rainfall, r.Note,
	}
}

// CostRow renders an input-cost record in CostHeader order.
func CostRow(r models.InputCostRecord) []interface{} {
	date := ""
	if r.HasDate() {
		date = r.Date.Format("02/01/2006")
	}
	return []interface{}{
		date, r.Location, r.Crop, string(r.Type), r.Quantity, r.Unit,
		r.UnitCost, r.TotalCost, r.Supplier, r.Lot, r.Note,
	}
}
