package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Canonical production columns.
const (
	ColDate        = "date"
	ColLocation    = "location"
	ColCrop        = "crop"
	ColBoxesGrade1 = "boxes_grade1"
	ColBoxesGrade2 = "boxes_grade2"
	ColTemperature = "temperature"
	ColHumidity    = "humidity"
	ColRainfall    = "rainfall"
	ColNote        = "note"
)

// Canonical input-cost columns not shared with production.
const (
	ColType      = "type"
	ColQuantity  = "quantity"
	ColUnit      = "unit"
	ColUnitCost  = "unit_cost"
	ColTotalCost = "total_cost"
	ColSupplier  = "supplier"
	ColLot       = "lot"
)

type columnKind int

const (
	kindText columnKind = iota
	kindCount
	kindFloat
	kindDate
)

type column struct {
	name string
	kind columnKind
}

type schema struct {
	columns []column
	aliases map[string]string
}

var productionSchema = schema{
	columns: []column{
		{ColDate, kindDate},
		{ColLocation, kindText},
		{ColCrop, kindText},
		{ColBoxesGrade1, kindCount},
		{ColBoxesGrade2, kindCount},
		{ColTemperature, kindFloat},
		{ColHumidity, kindFloat},
		{ColRainfall, kindFloat},
		{ColNote, kindText},
	},
	aliases: map[string]string{
		"data": ColDate,
		"dia":  ColDate,

		"local":      ColLocation,
		"estufa":     ColLocation,
		"área":       ColLocation,
		"area":       ColLocation,
		"talhão":     ColLocation,
		"talhao":     ColLocation,
		"greenhouse": ColLocation,
		"field":      ColLocation,

		"produto": ColCrop,
		"cultura": ColCrop,
		"product": ColCrop,

		"caixas":      ColBoxesGrade1,
		"caixas (1ª)": ColBoxesGrade1,
		"produção":    ColBoxesGrade1,
		"producao":    ColBoxesGrade1,
		"primeira":    ColBoxesGrade1,
		"qtd":         ColBoxesGrade1,
		"quantidade":  ColBoxesGrade1,
		"boxes":       ColBoxesGrade1,
		"grade1":      ColBoxesGrade1,

		"caixas de segunda": ColBoxesGrade2,
		"caixas (2ª)":       ColBoxesGrade2,
		"segunda":           ColBoxesGrade2,
		"grade2":            ColBoxesGrade2,

		"temperatura": ColTemperature,
		"temp":        ColTemperature,

		"umidade": ColHumidity,

		"chuva":         ColRainfall,
		"rain":          ColRainfall,
		"precipitação":  ColRainfall,
		"precipitacao":  ColRainfall,
		"precipitation": ColRainfall,

		"observação": ColNote,
		"observacao": ColNote,
		"obs":        ColNote,
		"nota":       ColNote,
		"notes":      ColNote,
	},
}

var costSchema = schema{
	columns: []column{
		{ColDate, kindDate},
		{ColLocation, kindText},
		{ColCrop, kindText},
		{ColType, kindText},
		{ColQuantity, kindFloat},
		{ColUnit, kindText},
		{ColUnitCost, kindFloat},
		{ColTotalCost, kindFloat},
		{ColSupplier, kindText},
		{ColLot, kindText},
		{ColNote, kindText},
	},
	aliases: map[string]string{
		"data": ColDate,

		"local":          ColLocation,
		"local aplicado": ColLocation,
		"estufa":         ColLocation,

		"produto": ColCrop,
		"cultura": ColCrop,

		"tipo":           ColType,
		"tipo de insumo": ColType,
		"category":       ColType,
		"quantidade":     ColQuantity,
		"qtd":            ColQuantity,
		"unidade":        ColUnit,
		"custo unitário": ColUnitCost,
		"custo unitario": ColUnitCost,
		"preço unitário": ColUnitCost,
		"preco unitario": ColUnitCost,
		"custo":          ColTotalCost,
		"custo (r$)":     ColTotalCost,
		"custo total":    ColTotalCost,
		"valor":          ColTotalCost,
		"total":          ColTotalCost,
		"fornecedor":     ColSupplier,
		"lote":           ColLot,
		"descricao":      ColNote,
		"descrição":      ColNote,
		"description":    ColNote,
		"observação":     ColNote,
		"obs":            ColNote,
	},
}

// Normalize maps a raw production table onto the canonical schema.
//
// Known alias columns are renamed, unknown columns pass through untouched,
// missing canonical columns are created (numeric ones as zero, text ones as
// empty strings) and every canonical cell is coerced to its type. Dates that
// cannot be parsed become the zero time. When several columns resolve to the
// same canonical name, a column already carrying the canonical name wins,
// then the leftmost alias; the others keep their original names.
//
// Normalize is idempotent and does not modify its argument.
func Normalize(t models.Table) models.Table {
	return productionSchema.apply(t)
}

// NormalizeCosts maps a raw input-cost table onto the canonical cost schema
// with the same rules as Normalize.
func NormalizeCosts(t models.Table) models.Table {
	return costSchema.apply(t)
}

// ProductionRecords normalizes t and converts every row into a record.
func ProductionRecords(t models.Table) []models.ProductionRecord {
	n := Normalize(t)
	out := make([]models.ProductionRecord, 0, len(n.Rows))
	for _, row := range n.Rows {
		out = append(out, models.ProductionRecord{
			Date:        row[ColDate].(time.Time),
			Location:    row[ColLocation].(string),
			Crop:        row[ColCrop].(string),
			BoxesGrade1: row[ColBoxesGrade1].(int),
			BoxesGrade2: row[ColBoxesGrade2].(int),
			Temperature: row[ColTemperature].(float64),
			Humidity:    row[ColHumidity].(float64),
			Rainfall:    row[ColRainfall].(float64),
			Note:        row[ColNote].(string),
		})
	}
	return out
}

// CostRecords normalizes t as an input-cost table and converts every row,
// resolving total_cost from quantity and unit cost where it is unset.
func CostRecords(t models.Table) []models.InputCostRecord {
	n := NormalizeCosts(t)
	out := make([]models.InputCostRecord, 0, len(n.Rows))
	for _, row := range n.Rows {
		rec := models.InputCostRecord{
			Date:      row[ColDate].(time.Time),
			Location:  row[ColLocation].(string),
			Crop:      row[ColCrop].(string),
			Type:      models.ParseInputType(row[ColType].(string)),
			Quantity:  nonNegative(row[ColQuantity].(float64)),
			Unit:      row[ColUnit].(string),
			UnitCost:  nonNegative(row[ColUnitCost].(float64)),
			TotalCost: nonNegative(row[ColTotalCost].(float64)),
			Supplier:  row[ColSupplier].(string),
			Lot:       row[ColLot].(string),
			Note:      row[ColNote].(string),
		}
		out = append(out, rec.ResolveTotal())
	}
	return out
}

func (s schema) apply(t models.Table) models.Table {
	kinds := make(map[string]columnKind, len(s.columns))
	for _, c := range s.columns {
		kinds[c.name] = c.kind
	}

	columns := t.Columns
	if len(columns) == 0 {
		columns = inferColumns(t.Rows)
	}

	// Canonical names claim their slot before any alias does.
	rename := make(map[string]string, len(columns))
	claimed := make(map[string]bool, len(s.columns))
	for _, c := range columns {
		if _, ok := kinds[c]; ok && !claimed[c] {
			rename[c] = c
			claimed[c] = true
		}
	}
	for _, c := range columns {
		if _, done := rename[c]; done {
			continue
		}
		key := aliasKey(c)
		target, ok := s.aliases[key]
		if !ok {
			if _, canonical := kinds[key]; canonical {
				target, ok = key, true
			}
		}
		if ok && !claimed[target] {
			rename[c] = target
			claimed[target] = true
			continue
		}
		rename[c] = c
	}

	out := models.Table{Columns: make([]string, 0, len(columns)+len(s.columns))}
	seen := make(map[string]bool, len(columns)+len(s.columns))
	for _, c := range columns {
		if name := rename[c]; !seen[name] {
			out.Columns = append(out.Columns, name)
			seen[name] = true
		}
	}
	for _, c := range s.columns {
		if !seen[c.name] {
			out.Columns = append(out.Columns, c.name)
			seen[c.name] = true
		}
	}

	out.Rows = make([]models.Row, len(t.Rows))
	for i, row := range t.Rows {
		normalized := make(models.Row, len(out.Columns))
		for key, value := range row {
			target, ok := rename[key]
			if !ok {
				// Undeclared keys never shadow a renamed canonical column.
				if claimed[key] {
					continue
				}
				target = key
			}
			normalized[target] = value
		}
		for _, c := range s.columns {
			normalized[c.name] = coerce(normalized[c.name], c.kind)
		}
		out.Rows[i] = normalized
	}
	return out
}

// inferColumns collects row keys in sorted order for tables submitted
// without a header list.
func inferColumns(rows []models.Row) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

func aliasKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func coerce(value any, kind columnKind) any {
	switch kind {
	case kindDate:
		return toDate(value)
	case kindCount:
		return toCount(value)
	case kindFloat:
		return toFloat(value)
	default:
		return toText(value)
	}
}

// Slash dates are read day-first. Month-first only matches when the
// day-first reading is impossible.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
}

// Excel serial day numbers accepted as dates: 1900-01-01 to 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

func toDate(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return time.Time{}
		}
		return *v
	case string:
		return parseDate(v)
	case float64:
		return excelSerial(v)
	case int:
		return excelSerial(float64(v))
	case int64:
		return excelSerial(float64(v))
	default:
		return time.Time{}
	}
}

func parseDate(value string) time.Time {
	str := strings.TrimSpace(value)
	if str == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t
		}
	}
	if len(str) > 10 {
		if t, err := time.Parse(dateLayouts[0], str[:10]); err == nil {
			return t
		}
	}
	if serial, err := strconv.ParseFloat(str, 64); err == nil {
		return excelSerial(serial)
	}
	return time.Time{}
}

func excelSerial(serial float64) time.Time {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toCount(value any) int {
	var f float64
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0
		}
		return v
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		f = parseNumber(v)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(math.Round(f))
}

func toFloat(value any) float64 {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case string:
		f = parseNumber(v)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(dateLayouts[0])
	default:
		return ""
	}
}

// parseNumber accepts both decimal points and decimal commas, with an
// optional thousands separator of the other kind. Garbage parses as 0.
func parseNumber(value string) float64 {
	str := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if str == "" {
		return 0
	}
	comma, dot := strings.LastIndex(str, ","), strings.LastIndex(str, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		str = strings.ReplaceAll(str, ".", "")
		str = strings.Replace(str, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		str = strings.ReplaceAll(str, ",", "")
	case comma >= 0:
		str = strings.Replace(str, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return f
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
