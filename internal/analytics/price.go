package analytics

import (
	"strings"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// PriceResolver looks up per-crop grade prices, falling back to defaults.
type PriceResolver struct {
	table    models.PriceTable
	folded   map[string]models.GradePrices
	defaults models.GradePrices
}

// NewPriceResolver builds a resolver over table. The table is only read.
func NewPriceResolver(table models.PriceTable, defaults models.GradePrices) PriceResolver {
	folded := make(map[string]models.GradePrices, len(table))
	origin := make(map[string]string, len(table))
	for crop, prices := range table {
		key := foldCrop(crop)
		if key == "" {
			continue
		}
		// Colliding spellings resolve to the smallest key for determinism.
		if prev, exists := origin[key]; !exists || crop < prev {
			folded[key] = prices
			origin[key] = crop
		}
	}
	return PriceResolver{table: table, folded: folded, defaults: defaults}
}

// PriceFor returns the unit price of crop at grade. Empty or unknown crops
// resolve to the default price; this never fails.
func (r PriceResolver) PriceFor(crop string, grade models.Grade) float64 {
	prices, _ := r.Lookup(crop)
	return prices.For(grade)
}

// Lookup returns both grade prices for crop and whether they came from the
// table rather than the defaults. An exact key match wins over a
// case-insensitive one.
func (r PriceResolver) Lookup(crop string) (models.GradePrices, bool) {
	trimmed := strings.TrimSpace(crop)
	if trimmed == "" {
		return r.defaults, false
	}
	if prices, ok := r.table[trimmed]; ok {
		return prices, true
	}
	if prices, ok := r.folded[foldCrop(trimmed)]; ok {
		return prices, true
	}
	return r.defaults, false
}

func foldCrop(crop string) string {
	return strings.ToLower(strings.TrimSpace(crop))
}
