// Package forest implements a bagged ensemble of regression trees.
//
// Trees are grown on bootstrap samples with variance-reduction splits over
// every feature. Each tree draws from its own PCG stream derived from the
// configured seed and the tree index, so fitting is deterministic even
// though trees are grown concurrently.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyTrainingSet is returned when no samples are supplied.
	ErrEmptyTrainingSet = errors.New("forest: empty training set")
	// ErrShapeMismatch is returned when rows and targets disagree in size.
	ErrShapeMismatch = errors.New("forest: feature matrix and target shape mismatch")
	// ErrNonFinite is returned when a feature or target is NaN or infinite.
	ErrNonFinite = errors.New("forest: non-finite value in training data")
)

// Params controls ensemble growth.
type Params struct {
	Trees           int
	Seed            uint64
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxDepth        int // 0 grows trees until leaves are pure
	Workers         int // 0 uses GOMAXPROCS
}

// DefaultParams mirrors a 100-tree forest seeded with 42.
func DefaultParams() Params {
	return Params{
		Trees:           100,
		Seed:            42,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

func (p Params) withDefaults() Params {
	if p.Trees <= 0 {
		p.Trees = 100
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}
	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	return p
}

// Forest is a fitted regression ensemble.
type Forest struct {
	trees       []*tree
	features    int
	importances []float64
}

// Fit grows the ensemble on X (rows of equal width) predicting y.
func Fit(X [][]float64, y []float64, params Params) (*Forest, error) {
	if len(X) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(X), len(y))
	}

	width := len(X[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrShapeMismatch)
	}
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d", ErrNonFinite, i)
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("%w: target %d", ErrNonFinite, i)
		}
	}

	params = params.withDefaults()
	trees := make([]*tree, params.Trees)

	// Growing a tree cannot fail; the group only bounds the workers.
	var g errgroup.Group
	g.SetLimit(params.Workers)
	for t := range trees {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(params.Seed, uint64(t)))
			sample := make([]int, len(X))
			for i := range sample {
				sample[i] = rng.IntN(len(X))
			}
			trees[t] = grow(X, y, sample, width, params)
			return nil
		})
	}
	_ = g.Wait()

	return &Forest{
		trees:       trees,
		features:    width,
		importances: aggregateImportances(trees, width),
	}, nil
}

// Predict averages the tree estimates for one feature row.
func (f *Forest) Predict(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}

// PredictAll predicts every row of X.
func (f *Forest) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = f.Predict(row)
	}
	return out
}

// Importances returns the mean impurity decrease per feature, normalized
// to sum to 1. All values are zero when no tree managed a single split.
func (f *Forest) Importances() []float64 {
	return append([]float64(nil), f.importances...)
}

// Features is the width of the training rows.
func (f *Forest) Features() int {
	return f.features
}

func aggregateImportances(trees []*tree, width int) []float64 {
	out := make([]float64, width)
	for _, t := range trees {
		var total float64
		for _, v := range t.importance {
			total += v
		}
		if total <= 0 {
			continue
		}
		for i, v := range t.importance {
			out[i] += v / total
		}
	}

	var total float64
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}
