package sheets

import (
	"context"
	"fmt"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// RecordSource reads production and input-cost records from two sheet
// ranges. Rows are normalized on every read, so hand-edited sheets with
// Portuguese headers work as-is.
type RecordSource struct {
	repo            Repository
	productionRange string
	costsRange      string
}

// NewRecordSource builds a record source over repo.
func NewRecordSource(repo Repository, productionRange, costsRange string) *RecordSource {
	return &RecordSource{repo: repo, productionRange: productionRange, costsRange: costsRange}
}

// ListProduction returns the production records inside scope.
func (s *RecordSource) ListProduction(ctx context.Context, scope models.Scope) ([]models.ProductionRecord, error) {
	table, err := ReadTable(ctx, s.repo, s.productionRange)
	if err != nil {
		return nil, fmt.Errorf("load production range: %w", err)
	}
	return analytics.Filter(analytics.ProductionRecords(table), scope), nil
}

// ListCosts returns the input-cost records inside scope.
func (s *RecordSource) ListCosts(ctx context.Context, scope models.Scope) ([]models.InputCostRecord, error) {
	table, err := ReadTable(ctx, s.repo, s.costsRange)
	if err != nil {
		return nil, fmt.Errorf("load costs range: %w", err)
	}
	return analytics.FilterCosts(analytics.CostRecords(table), scope), nil
}
