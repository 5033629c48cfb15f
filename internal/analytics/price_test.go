package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

func TestPriceResolver(t *testing.T) {
	table := models.PriceTable{
		"Tomate": {Grade1: 40, Grade2: 20},
		"alface": {Grade1: 12, Grade2: 6},
	}
	r := NewPriceResolver(table, models.GradePrices{Grade1: 30, Grade2: 15})

	tests := []struct {
		name  string
		crop  string
		grade models.Grade
		want  float64
	}{
		{"exact grade1", "Tomate", models.Grade1, 40},
		{"exact grade2", "Tomate", models.Grade2, 20},
		{"case-insensitive", "ALFACE", models.Grade1, 12},
		{"trimmed", "  Tomate ", models.Grade2, 20},
		{"unknown crop", "Kale", models.Grade1, 30},
		{"empty crop", "", models.Grade2, 15},
		{"blank crop", "   ", models.Grade1, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.PriceFor(tt.crop, tt.grade))
		})
	}
}

func TestPriceResolverLookupReportsDefaults(t *testing.T) {
	r := NewPriceResolver(models.PriceTable{"Tomate": {Grade1: 40, Grade2: 20}}, models.GradePrices{Grade1: 10, Grade2: 5})

	_, found := r.Lookup("tomate")
	assert.True(t, found)

	prices, found := r.Lookup("Pepino")
	assert.False(t, found)
	assert.Equal(t, models.GradePrices{Grade1: 10, Grade2: 5}, prices)
}

func TestPriceResolverNilTable(t *testing.T) {
	r := NewPriceResolver(nil, models.GradePrices{Grade1: 10, Grade2: 5})

	assert.Equal(t, 5.0, r.PriceFor("Tomate", models.Grade2))
}

func TestPriceResolverCaseCollision(t *testing.T) {
	table := models.PriceTable{
		"tomate": {Grade1: 1},
		"Tomate": {Grade1: 2},
	}
	r := NewPriceResolver(table, models.GradePrices{})

	assert.Equal(t, 1.0, r.PriceFor("tomate", models.Grade1))
	assert.Equal(t, 2.0, r.PriceFor("Tomate", models.Grade1))
	// "Tomate" sorts before "tomate".
	assert.Equal(t, 2.0, r.PriceFor("TOMATE", models.Grade1))
}
