package analytics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Balance derives revenue, cost, profit and margin for a scoped period.
//
// Revenue is priced per crop: production is partitioned by crop first and
// each partition is priced through a PriceResolver built from prices and
// opts.DefaultPrices. Input cost is the sum of total_cost over costs, which
// the caller has already scoped to the same period. Money is accumulated
// in decimal so the result does not depend on record order; profit is
// computed from the reported revenue and cost so that
// Profit == RevenueTotal - TotalCost holds exactly. MarginPct is 0 when
// there is no revenue.
func Balance(
	production []models.ProductionRecord,
	costs []models.InputCostRecord,
	prices models.PriceTable,
	fixedCost float64,
	opts Options,
) models.FinancialBalance {
	resolver := NewPriceResolver(prices, opts.DefaultPrices)

	crops := revenueByCrop(production, resolver)
	revenue1, revenue2 := decimal.Zero, decimal.Zero
	for _, c := range crops {
		revenue1 = revenue1.Add(decimal.NewFromFloat(c.RevenueGrade1))
		revenue2 = revenue2.Add(decimal.NewFromFloat(c.RevenueGrade2))
	}

	lines, inputCost := costsByType(costs)
	fixed := decimal.NewFromFloat(fixedCost)

	b := models.FinancialBalance{
		RevenueGrade1: revenue1.InexactFloat64(),
		RevenueGrade2: revenue2.InexactFloat64(),
		RevenueTotal:  revenue1.Add(revenue2).InexactFloat64(),
		InputCost:     inputCost.InexactFloat64(),
		FixedCost:     fixedCost,
		TotalCost:     inputCost.Add(fixed).InexactFloat64(),
		Crops:         crops,
		CostsByType:   lines,
	}
	b.Profit = b.RevenueTotal - b.TotalCost
	if b.RevenueTotal > 0 {
		b.MarginPct = b.Profit / b.RevenueTotal * 100
	}
	return b
}

func revenueByCrop(production []models.ProductionRecord, resolver PriceResolver) []models.CropRevenue {
	index := make(map[string]int)
	crops := []models.CropRevenue{}
	for _, r := range production {
		crop := strings.TrimSpace(r.Crop)
		i, ok := index[crop]
		if !ok {
			i = len(crops)
			index[crop] = i
			crops = append(crops, models.CropRevenue{Crop: crop})
		}
		crops[i].BoxesGrade1 += r.BoxesGrade1
		crops[i].BoxesGrade2 += r.BoxesGrade2
	}

	for i := range crops {
		c := &crops[i]
		p, found := resolver.Lookup(c.Crop)
		rev1 := decimal.NewFromInt(int64(c.BoxesGrade1)).Mul(decimal.NewFromFloat(p.Grade1))
		rev2 := decimal.NewFromInt(int64(c.BoxesGrade2)).Mul(decimal.NewFromFloat(p.Grade2))

		c.PriceGrade1 = p.Grade1
		c.PriceGrade2 = p.Grade2
		c.RevenueGrade1 = rev1.InexactFloat64()
		c.RevenueGrade2 = rev2.InexactFloat64()
		c.Revenue = rev1.Add(rev2).InexactFloat64()
		c.DefaultPrice = !found
	}
	return crops
}

func costsByType(costs []models.InputCostRecord) ([]models.CostLine, decimal.Decimal) {
	totals := make(map[models.InputType]decimal.Decimal)
	sum := decimal.Zero
	for _, c := range costs {
		t := c.Type
		if t == "" {
			t = models.InputOther
		}
		amount := decimal.NewFromFloat(c.TotalCost)
		totals[t] = totals[t].Add(amount)
		sum = sum.Add(amount)
	}

	lines := []models.CostLine{}
	for _, t := range models.InputTypes {
		if total, ok := totals[t]; ok {
			lines = append(lines, models.CostLine{Type: t, Total: total.InexactFloat64()})
			delete(totals, t)
		}
	}
	// Categories outside the known set, e.g. from hand-built records.
	for _, c := range costs {
		if total, ok := totals[c.Type]; ok {
			lines = append(lines, models.CostLine{Type: c.Type, Total: total.InexactFloat64()})
			delete(totals, c.Type)
		}
	}
	return lines, sum
}
