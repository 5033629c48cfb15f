package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

type memoryStore struct {
	production []models.ProductionRecord
	costs      []models.InputCostRecord
	err        error
}

func (m *memoryStore) SaveProduction(_ context.Context, r models.ProductionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.production = append(m.production, r)
	return nil
}

func (m *memoryStore) SaveCost(_ context.Context, r models.InputCostRecord) error {
	if m.err != nil {
		return m.err
	}
	m.costs = append(m.costs, r)
	return nil
}

func (m *memoryStore) ListProduction(context.Context, models.Scope) ([]models.ProductionRecord, error) {
	return m.production, m.err
}

func (m *memoryStore) ListCosts(context.Context, models.Scope) ([]models.InputCostRecord, error) {
	return m.costs, m.err
}

type stubWeather struct {
	reading models.ClimateReading
	err     error
	calls   int
}

func (s *stubWeather) Current(context.Context, string) (models.ClimateReading, error) {
	s.calls++
	return s.reading, s.err
}

type recordingSheet struct {
	ranges []string
	err    error
}

func (r *recordingSheet) WriteRow(_ context.Context, sheetRange string, _ []interface{}) error {
	r.ranges = append(r.ranges, sheetRange)
	return r.err
}

func (r *recordingSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	return nil, nil
}

func newTestService(store *memoryStore, w *stubWeather, sheet *recordingSheet) *Service {
	var mirror *SheetMirror
	if sheet != nil {
		mirror = &SheetMirror{Repo: sheet, ProductionRange: "Colheitas!A:I", CostsRange: "Insumos!A:K"}
	}
	var svc *Service
	if w != nil {
		svc = NewService(store, w, mirror, nil)
	} else {
		svc = NewService(store, nil, mirror, nil)
	}
	svc.now = func() time.Time { return time.Date(2024, time.June, 3, 17, 45, 0, 0, time.UTC) }
	svc.newID = func() string { return "rec-1" }
	return svc
}

func ptr(v float64) *float64 { return &v }

func TestCaptureProductionFillsClimate(t *testing.T) {
	store := &memoryStore{}
	w := &stubWeather{reading: models.ClimateReading{Temperature: 26, Humidity: 65, Rainfall: 2}}
	svc := newTestService(store, w, nil)

	rec, err := svc.CaptureProduction(context.Background(), ProductionInput{
		Location:    " Estufa 1 ",
		Crop:        "Tomate",
		BoxesGrade1: 10,
		BoxesGrade2: 2,
		Humidity:    ptr(80),
	})
	require.NoError(t, err)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "Estufa 1", rec.Location)
	assert.Equal(t, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.Equal(t, 26.0, rec.Temperature)
	assert.Equal(t, 80.0, rec.Humidity, "caller values win")
	assert.Equal(t, 2.0, rec.Rainfall)
	assert.Equal(t, 1, w.calls)
	require.Len(t, store.production, 1)
}

func TestCaptureProductionSkipsWeatherWhenComplete(t *testing.T) {
	w := &stubWeather{}
	svc := newTestService(&memoryStore{}, w, nil)

	_, err := svc.CaptureProduction(context.Background(), ProductionInput{
		Location: "A", Crop: "Alface",
		Temperature: ptr(20), Humidity: ptr(50), Rainfall: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, w.calls)
}

func TestCaptureProductionWeatherFailureIsTolerated(t *testing.T) {
	w := &stubWeather{err: errors.New("timeout")}
	svc := newTestService(&memoryStore{}, w, nil)

	rec, err := svc.CaptureProduction(context.Background(), ProductionInput{Location: "A", Crop: "Alface", BoxesGrade1: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.Temperature)
}

func TestCaptureProductionValidation(t *testing.T) {
	svc := newTestService(&memoryStore{}, nil, nil)

	tests := []struct {
		name string
		in   ProductionInput
	}{
		{"missing location", ProductionInput{Crop: "Tomate"}},
		{"blank crop", ProductionInput{Location: "A", Crop: "  "}},
		{"negative boxes", ProductionInput{Location: "A", Crop: "Tomate", BoxesGrade2: -1}},
		{"humidity above 100", ProductionInput{Location: "A", Crop: "Tomate", Humidity: ptr(120)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CaptureProduction(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestCaptureProductionMirrorsToSheet(t *testing.T) {
	sheet := &recordingSheet{err: errors.New("quota exceeded")}
	store := &memoryStore{}
	svc := newTestService(store, nil, sheet)

	_, err := svc.CaptureProduction(context.Background(), ProductionInput{Location: "A", Crop: "Tomate"})
	require.NoError(t, err, "mirror failures do not fail the capture")
	assert.Equal(t, []string{"Colheitas!A:I"}, sheet.ranges)
	assert.Len(t, store.production, 1)
}

func TestCaptureProductionStoreError(t *testing.T) {
	svc := newTestService(&memoryStore{err: errors.New("down")}, nil, nil)

	_, err := svc.CaptureProduction(context.Background(), ProductionInput{Location: "A", Crop: "Tomate"})
	assert.EqualError(t, err, "down")
}

func TestCaptureCost(t *testing.T) {
	store := &memoryStore{}
	sheet := &recordingSheet{}
	svc := newTestService(store, nil, sheet)

	rec, err := svc.CaptureCost(context.Background(), models.InputCostRecord{
		Location: "A",
		Type:     "Fertilizante",
		Quantity: 3,
		UnitCost: 12.5,
	})
	require.NoError(t, err)

	assert.Equal(t, models.InputFertilizer, rec.Type)
	assert.Equal(t, 37.5, rec.TotalCost)
	assert.Equal(t, "rec-1", rec.ID)
	assert.False(t, rec.Date.IsZero())
	assert.Equal(t, []string{"Insumos!A:K"}, sheet.ranges)
	require.Len(t, store.costs, 1)
}

func TestCaptureCostRejectsNegative(t *testing.T) {
	svc := newTestService(&memoryStore{}, nil, nil)

	_, err := svc.CaptureCost(context.Background(), models.InputCostRecord{Type: models.InputSeed, TotalCost: -3})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
