package models

import "time"

// Grade identifies the quality classification of harvested boxes.
type Grade int

const (
	Grade1 Grade = 1
	Grade2 Grade = 2
)

// GradePrices holds the unit box price for both grades of one crop.
type GradePrices struct {
	Grade1 float64 `bson:"price_grade1" json:"price_grade1" validate:"gte=0"`
	Grade2 float64 `bson:"price_grade2" json:"price_grade2" validate:"gte=0"`
}

// For returns the price for the requested grade.
func (p GradePrices) For(grade Grade) float64 {
	if grade == Grade2 {
		return p.Grade2
	}
	return p.Grade1
}

// PriceTable maps crop names to grade prices. Crops without an entry
// resolve to the configured defaults.
type PriceTable map[string]GradePrices

// PriceConfig is the persisted pricing configuration.
type PriceConfig struct {
	Prices    PriceTable  `bson:"prices" json:"prices" validate:"dive"`
	Defaults  GradePrices `bson:"defaults" json:"defaults"`
	FixedCost float64     `bson:"fixed_cost" json:"fixed_cost" validate:"gte=0"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}
