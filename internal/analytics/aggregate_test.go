package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func harvest(date time.Time, location, crop string, g1, g2 int) models.ProductionRecord {
	return models.ProductionRecord{Date: date, Location: location, Crop: crop, BoxesGrade1: g1, BoxesGrade2: g2}
}

func sampleHarvests() []models.ProductionRecord {
	return []models.ProductionRecord{
		harvest(day(2024, time.January, 3), "B", "Tomate", 10, 2),
		harvest(day(2024, time.January, 10), "A", "Alface", 5, 5),
		harvest(day(2024, time.February, 1), "B", "Tomate", 8, 0),
		harvest(time.Time{}, "A", "Tomate", 4, 1),
	}
}

func TestAggregateKPIs(t *testing.T) {
	kpis := Aggregate(sampleHarvests(), GroupSpec{})

	assert.Equal(t, 4, kpis.Records)
	assert.Equal(t, 35, kpis.Total)
	assert.InDelta(t, 8.75, kpis.Mean, 1e-9)
	assert.Equal(t, 12, kpis.Max)
	assert.Equal(t, 5, kpis.Min)
	assert.NotNil(t, kpis.Groups)
	assert.Empty(t, kpis.Groups)
}

func TestAggregateEmpty(t *testing.T) {
	kpis := Aggregate(nil, GroupSpec{By: GroupLocation})

	assert.Equal(t, 0, kpis.Records)
	assert.Equal(t, 0, kpis.Total)
	assert.Equal(t, 0.0, kpis.Mean)
	assert.NotNil(t, kpis.Groups)
	assert.Empty(t, kpis.Groups)
}

func TestAggregateGroupByLocationFirstSeen(t *testing.T) {
	kpis := Aggregate(sampleHarvests(), GroupSpec{By: GroupLocation})

	require.Len(t, kpis.Groups, 2)
	assert.Equal(t, "B", kpis.Groups[0].Key)
	assert.Equal(t, 20, kpis.Groups[0].Total)
	assert.Equal(t, 2, kpis.Groups[0].Records)
	assert.Equal(t, "A", kpis.Groups[1].Key)
	assert.Equal(t, 15, kpis.Groups[1].Total)

	sum := 0
	for _, g := range kpis.Groups {
		sum += g.Total
		assert.GreaterOrEqual(t, g.PctGrade2, 0.0)
		assert.LessOrEqual(t, g.PctGrade2, 100.0)
	}
	assert.Equal(t, kpis.Total, sum)
}

func TestAggregateGroupByMonthSkipsUndated(t *testing.T) {
	kpis := Aggregate(sampleHarvests(), GroupSpec{By: GroupMonth, Sort: SortKey})

	require.Len(t, kpis.Groups, 2)
	assert.Equal(t, "2024-01", kpis.Groups[0].Key)
	assert.Equal(t, 22, kpis.Groups[0].Total)
	assert.Equal(t, "2024-02", kpis.Groups[1].Key)
	assert.Equal(t, 35, kpis.Total, "headline KPIs keep undated records")
}

func TestAggregateGroupByWeek(t *testing.T) {
	kpis := Aggregate(sampleHarvests(), GroupSpec{By: GroupWeek})

	require.Len(t, kpis.Groups, 3)
	assert.Equal(t, "2024-W01", kpis.Groups[0].Key)
	assert.Equal(t, "2024-W02", kpis.Groups[1].Key)
	assert.Equal(t, "2024-W05", kpis.Groups[2].Key)
}

func TestAggregateSortTies(t *testing.T) {
	records := []models.ProductionRecord{
		harvest(day(2024, time.March, 1), "C", "x", 5, 0),
		harvest(day(2024, time.March, 1), "A", "x", 5, 0),
		harvest(day(2024, time.March, 1), "B", "x", 9, 1),
	}

	desc := Aggregate(records, GroupSpec{By: GroupLocation, Sort: SortTotalDesc})
	assert.Equal(t, []string{"B", "A", "C"}, groupKeys(desc.Groups))

	asc := Aggregate(records, GroupSpec{By: GroupLocation, Sort: SortTotalAsc})
	assert.Equal(t, []string{"A", "C", "B"}, groupKeys(asc.Groups))

	pct := Aggregate(records, GroupSpec{By: GroupLocation, Sort: SortPctGrade2Desc})
	assert.Equal(t, []string{"B", "A", "C"}, groupKeys(pct.Groups))
}

func groupKeys(rows []models.GroupRow) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func TestPctGrade2(t *testing.T) {
	assert.Equal(t, 0.0, PctGrade2(0, 0))
	assert.Equal(t, 25.0, PctGrade2(3, 1))
	assert.Equal(t, 100.0, PctGrade2(0, 4))
}

func TestParseGroupByAndSort(t *testing.T) {
	g, err := ParseGroupBy(" Crop ")
	require.NoError(t, err)
	assert.Equal(t, GroupCrop, g)

	_, err = ParseGroupBy("season")
	assert.ErrorIs(t, err, ErrUnknownGroupBy)

	s, err := ParseSortOrder("TOTAL_DESC")
	require.NoError(t, err)
	assert.Equal(t, SortTotalDesc, s)

	_, err = ParseSortOrder("random")
	assert.ErrorIs(t, err, ErrUnknownSortOrder)
}
