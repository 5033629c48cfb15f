package models

import (
	"strings"
	"time"
)

// ProductionRecord captures one harvest entry for a location and crop.
type ProductionRecord struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	Date        time.Time `bson:"date" json:"date"`
	Location    string    `bson:"location" json:"location"`
	Crop        string    `bson:"crop" json:"crop"`
	BoxesGrade1 int       `bson:"boxes_grade1" json:"boxes_grade1" validate:"gte=0"`
	BoxesGrade2 int       `bson:"boxes_grade2" json:"boxes_grade2" validate:"gte=0"`
	Temperature float64   `bson:"temperature" json:"temperature"`
	Humidity    float64   `bson:"humidity" json:"humidity" validate:"gte=0,lte=100"`
	Rainfall    float64   `bson:"rainfall" json:"rainfall" validate:"gte=0"`
	Note        string    `bson:"note,omitempty" json:"note,omitempty"`
}

// Total is the combined box count of both grades. It is always derived.
func (r ProductionRecord) Total() int {
	return r.BoxesGrade1 + r.BoxesGrade2
}

// HasDate reports whether the record carries a usable calendar date.
// Records without one stay in plain listings but are skipped by any
// date-filtered or date-bucketed computation.
func (r ProductionRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// InputType enumerates input cost categories.
type InputType string

const (
	InputSeed       InputType = "seed"
	InputFertilizer InputType = "fertilizer"
	InputPesticide  InputType = "pesticide"
	InputLabor      InputType = "labor"
	InputEquipment  InputType = "equipment"
	InputOther      InputType = "other"
)

// InputTypes lists input categories in reporting order.
var InputTypes = []InputType{InputSeed, InputFertilizer, InputPesticide, InputLabor, InputEquipment, InputOther}

var inputTypeAliases = map[string]InputType{
	"seed":         InputSeed,
	"semente":      InputSeed,
	"sementes":     InputSeed,
	"fertilizer":   InputFertilizer,
	"fertilizante": InputFertilizer,
	"adubo":        InputFertilizer,
	"pesticide":    InputPesticide,
	"defensivo":    InputPesticide,
	"agrotoxico":   InputPesticide,
	"agrotóxico":   InputPesticide,
	"labor":        InputLabor,
	"mão de obra":  InputLabor,
	"mao de obra":  InputLabor,
	"equipment":    InputEquipment,
	"equipamento":  InputEquipment,
	"other":        InputOther,
	"outros":       InputOther,
	"outro":        InputOther,
}

// ParseInputType maps free-form category labels onto InputType.
// Unknown labels resolve to InputOther.
func ParseInputType(value string) InputType {
	normalized := strings.TrimSpace(strings.ToLower(value))
	if t, ok := inputTypeAliases[normalized]; ok {
		return t
	}
	return InputOther
}

// InputCostRecord captures a purchase or consumption of production inputs.
type InputCostRecord struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Date      time.Time `bson:"date" json:"date"`
	Location  string    `bson:"location" json:"location"`
	Crop      string    `bson:"crop" json:"crop"`
	Type      InputType `bson:"type" json:"type"`
	Quantity  float64   `bson:"quantity" json:"quantity" validate:"gte=0"`
	Unit      string    `bson:"unit" json:"unit"`
	UnitCost  float64   `bson:"unit_cost" json:"unit_cost" validate:"gte=0"`
	TotalCost float64   `bson:"total_cost" json:"total_cost" validate:"gte=0"`
	Supplier  string    `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Lot       string    `bson:"lot,omitempty" json:"lot,omitempty"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

// ResolveTotal fills TotalCost from Quantity x UnitCost when it is unset and
// both factors are positive. An explicit TotalCost is never recomputed.
func (r InputCostRecord) ResolveTotal() InputCostRecord {
	if r.TotalCost == 0 && r.Quantity > 0 && r.UnitCost > 0 {
		r.TotalCost = r.Quantity * r.UnitCost
	}
	return r
}

// HasDate reports whether the cost record carries a usable calendar date.
func (r InputCostRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// ClimateReading is a point-in-time weather observation merged into new records.
type ClimateReading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Rainfall    float64   `json:"rainfall"`
	ObservedAt  time.Time `json:"observed_at"`
	City        string    `json:"city"`
}

// Scope narrows a record set by date range, location and crop.
// Zero dates are unbounded; empty lists match everything.
type Scope struct {
	From      time.Time `bson:"from,omitempty" json:"from,omitempty"`
	To        time.Time `bson:"to,omitempty" json:"to,omitempty"`
	Locations []string  `bson:"locations,omitempty" json:"locations,omitempty"`
	Crops     []string  `bson:"crops,omitempty" json:"crops,omitempty"`
}

// Dated reports whether the scope carries at least one date bound.
func (s Scope) Dated() bool {
	return !s.From.IsZero() || !s.To.IsZero()
}
