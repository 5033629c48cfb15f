package analytics

import (
	"strings"
	"time"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Filter returns the production records inside scope. Date bounds are
// inclusive calendar days; records without a date are dropped as soon as
// either bound is set. Location and crop matching ignores case.
func Filter(records []models.ProductionRecord, scope models.Scope) []models.ProductionRecord {
	m := newMatcher(scope)
	out := make([]models.ProductionRecord, 0, len(records))
	for _, r := range records {
		if m.match(r.Date, r.Location, r.Crop) {
			out = append(out, r)
		}
	}
	return out
}

// FilterCosts applies scope to input-cost records with the same rules as
// Filter. Cost records with an empty crop are kept under a crop filter,
// since inputs are often booked against a location only.
func FilterCosts(records []models.InputCostRecord, scope models.Scope) []models.InputCostRecord {
	m := newMatcher(scope)
	m.allowEmptyCrop = true
	out := make([]models.InputCostRecord, 0, len(records))
	for _, r := range records {
		if m.match(r.Date, r.Location, r.Crop) {
			out = append(out, r)
		}
	}
	return out
}

type matcher struct {
	from, to       time.Time
	dated          bool
	locations      map[string]bool
	crops          map[string]bool
	allowEmptyCrop bool
}

func newMatcher(scope models.Scope) matcher {
	return matcher{
		from:      calendarDay(scope.From),
		to:        calendarDay(scope.To),
		dated:     scope.Dated(),
		locations: toLowerSet(scope.Locations),
		crops:     toLowerSet(scope.Crops),
	}
}

func (m matcher) match(date time.Time, location, crop string) bool {
	if m.dated {
		if date.IsZero() {
			return false
		}
		day := calendarDay(date)
		if !m.from.IsZero() && day.Before(m.from) {
			return false
		}
		if !m.to.IsZero() && day.After(m.to) {
			return false
		}
	}
	if len(m.locations) > 0 && !m.locations[strings.ToLower(strings.TrimSpace(location))] {
		return false
	}
	if len(m.crops) > 0 {
		key := strings.ToLower(strings.TrimSpace(crop))
		if !(m.allowEmptyCrop && key == "") && !m.crops[key] {
			return false
		}
	}
	return true
}

func calendarDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if key := strings.ToLower(strings.TrimSpace(item)); key != "" {
			set[key] = true
		}
	}
	return set
}
