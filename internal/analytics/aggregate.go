package analytics

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// ErrUnknownGroupBy is returned when a grouping dimension is not supported.
var ErrUnknownGroupBy = errors.New("unknown group-by dimension")

// ErrUnknownSortOrder is returned when a group sort mode is not supported.
var ErrUnknownSortOrder = errors.New("unknown sort order")

// GroupBy selects the dimension of a grouped breakdown.
type GroupBy string

const (
	GroupNone     GroupBy = ""
	GroupLocation GroupBy = "location"
	GroupCrop     GroupBy = "crop"
	GroupWeek     GroupBy = "week"
	GroupMonth    GroupBy = "month"
)

// SortOrder selects how group rows are ordered. The zero value keeps
// first-seen order.
type SortOrder string

const (
	SortFirstSeen     SortOrder = ""
	SortKey           SortOrder = "key"
	SortTotalDesc     SortOrder = "total_desc"
	SortTotalAsc      SortOrder = "total_asc"
	SortPctGrade2Desc SortOrder = "pct_grade2_desc"
)

// GroupSpec is the optional grouping of an aggregation.
type GroupSpec struct {
	By   GroupBy   `json:"by"`
	Sort SortOrder `json:"sort"`
}

// ParseGroupBy validates a grouping dimension name.
func ParseGroupBy(value string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(value))); g {
	case GroupNone, GroupLocation, GroupCrop, GroupWeek, GroupMonth:
		return g, nil
	default:
		return GroupNone, fmt.Errorf("%w: %q", ErrUnknownGroupBy, value)
	}
}

// ParseSortOrder validates a sort mode name.
func ParseSortOrder(value string) (SortOrder, error) {
	switch s := SortOrder(strings.ToLower(strings.TrimSpace(value))); s {
	case SortFirstSeen, SortKey, SortTotalDesc, SortTotalAsc, SortPctGrade2Desc:
		return s, nil
	default:
		return SortFirstSeen, fmt.Errorf("%w: %q", ErrUnknownSortOrder, value)
	}
}

// Aggregate computes record count, total, mean, max and min of the derived
// total over all records, and, when spec.By is set, one row per distinct
// group key. Time-bucket groupings skip records without a date; the headline
// KPIs never do. An empty input yields zero KPIs and an empty group table.
func Aggregate(records []models.ProductionRecord, spec GroupSpec) models.KPISet {
	kpis := models.KPISet{
		Records: len(records),
		GroupBy: string(spec.By),
		Groups:  []models.GroupRow{},
	}

	for i, r := range records {
		total := r.Total()
		kpis.Total += total
		if i == 0 || total > kpis.Max {
			kpis.Max = total
		}
		if i == 0 || total < kpis.Min {
			kpis.Min = total
		}
	}
	if len(records) > 0 {
		kpis.Mean = float64(kpis.Total) / float64(len(records))
	}

	if spec.By != GroupNone {
		kpis.Groups = GroupRows(records, spec)
	}
	return kpis
}

// GroupRows builds the grouped breakdown of records for spec.
func GroupRows(records []models.ProductionRecord, spec GroupSpec) []models.GroupRow {
	index := make(map[string]int)
	rows := []models.GroupRow{}

	for _, r := range records {
		key, ok := groupKey(r, spec.By)
		if !ok {
			continue
		}
		i, exists := index[key]
		if !exists {
			i = len(rows)
			index[key] = i
			rows = append(rows, models.GroupRow{Key: key})
		}
		rows[i].Records++
		rows[i].BoxesGrade1 += r.BoxesGrade1
		rows[i].BoxesGrade2 += r.BoxesGrade2
	}

	for i := range rows {
		rows[i].Total = rows[i].BoxesGrade1 + rows[i].BoxesGrade2
		rows[i].PctGrade2 = PctGrade2(rows[i].BoxesGrade1, rows[i].BoxesGrade2)
	}

	sortGroups(rows, spec.Sort)
	return rows
}

// PctGrade2 is the share of second-grade boxes, or 0 when nothing was boxed.
func PctGrade2(grade1, grade2 int) float64 {
	denominator := grade1 + grade2
	if denominator == 0 {
		return 0
	}
	return float64(grade2) / float64(denominator) * 100
}

func groupKey(r models.ProductionRecord, by GroupBy) (string, bool) {
	switch by {
	case GroupLocation:
		return r.Location, true
	case GroupCrop:
		return r.Crop, true
	case GroupWeek:
		if !r.HasDate() {
			return "", false
		}
		year, week := r.Date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), true
	case GroupMonth:
		if !r.HasDate() {
			return "", false
		}
		return monthKey(r.Date.Year(), int(r.Date.Month())), true
	default:
		return "", false
	}
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func sortGroups(rows []models.GroupRow, order SortOrder) {
	var primary func(a, b models.GroupRow) int
	switch order {
	case SortKey:
		primary = func(a, b models.GroupRow) int { return 0 }
	case SortTotalDesc:
		primary = func(a, b models.GroupRow) int { return b.Total - a.Total }
	case SortTotalAsc:
		primary = func(a, b models.GroupRow) int { return a.Total - b.Total }
	case SortPctGrade2Desc:
		primary = func(a, b models.GroupRow) int {
			switch {
			case a.PctGrade2 > b.PctGrade2:
				return -1
			case a.PctGrade2 < b.PctGrade2:
				return 1
			}
			return 0
		}
	default:
		return
	}

	slices.SortStableFunc(rows, func(a, b models.GroupRow) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}
