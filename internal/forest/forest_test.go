package forest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepData() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		noise := float64(i % 3)
		X = append(X, []float64{float64(i), noise})
		if i < 20 {
			y = append(y, 10)
		} else {
			y = append(y, 50)
		}
	}
	return X, y
}

func TestFitLearnsStepFunction(t *testing.T) {
	X, y := stepData()

	f, err := Fit(X, y, DefaultParams())
	require.NoError(t, err)

	assert.InDelta(t, 10, f.Predict([]float64{3, 0}), 5)
	assert.InDelta(t, 50, f.Predict([]float64{35, 1}), 5)
	assert.Equal(t, 2, f.Features())
}

func TestImportancesNormalized(t *testing.T) {
	X, y := stepData()

	f, err := Fit(X, y, DefaultParams())
	require.NoError(t, err)

	imp := f.Importances()
	require.Len(t, imp, 2)

	var total float64
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, imp[0], imp[1])
}

func TestFitIsDeterministic(t *testing.T) {
	X, y := stepData()
	params := DefaultParams()
	params.Trees = 25

	a, err := Fit(X, y, params)
	require.NoError(t, err)
	b, err := Fit(X, y, params)
	require.NoError(t, err)

	assert.Equal(t, a.PredictAll(X), b.PredictAll(X))
	assert.Equal(t, a.Importances(), b.Importances())
}

func TestConstantTargetHasNoImportance(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{7, 7, 7, 7}

	f, err := Fit(X, y, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, []float64{0}, f.Importances())
	assert.InDelta(t, 7, f.Predict([]float64{10}), 1e-9)
}

func TestFitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
		want error
	}{
		{"empty", nil, nil, ErrEmptyTrainingSet},
		{"length mismatch", [][]float64{{1}, {2}}, []float64{1}, ErrShapeMismatch},
		{"ragged rows", [][]float64{{1, 2}, {2}}, []float64{1, 2}, ErrShapeMismatch},
		{"nan feature", [][]float64{{math.NaN()}, {2}}, []float64{1, 2}, ErrNonFinite},
		{"inf target", [][]float64{{1}, {2}}, []float64{1, math.Inf(1)}, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.X, tt.y, DefaultParams())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMaxDepthLimitsTree(t *testing.T) {
	X, y := stepData()
	params := DefaultParams()
	params.Trees = 5
	params.MaxDepth = 1

	f, err := Fit(X, y, params)
	require.NoError(t, err)

	for _, tr := range f.trees {
		assert.LessOrEqual(t, len(tr.nodes), 3)
	}
}
