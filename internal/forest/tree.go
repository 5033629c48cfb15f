package forest

import "sort"

const minImprovement = 1e-12

type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      int
	right     int
}

type tree struct {
	nodes      []node
	importance []float64
}

func grow(X [][]float64, y []float64, sample []int, width int, params Params) *tree {
	t := &tree{importance: make([]float64, width)}
	t.split(X, y, sample, 0, params)
	return t
}

func (t *tree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.value
		}
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// split appends the subtree for idx and returns its node index.
func (t *tree) split(X [][]float64, y []float64, idx []int, depth int, params Params) int {
	self := len(t.nodes)
	t.nodes = append(t.nodes, node{})

	sum, sumSq := moments(y, idx)
	n := float64(len(idx))
	mean := sum / n
	parentSSE := sumSq - sum*sum/n

	if len(idx) < params.MinSamplesSplit || (params.MaxDepth > 0 && depth >= params.MaxDepth) || parentSSE <= minImprovement {
		t.nodes[self] = node{leaf: true, value: mean}
		return self
	}

	best := findSplit(X, y, idx, params.MinSamplesLeaf)
	if !best.ok || parentSSE-best.sse <= minImprovement {
		t.nodes[self] = node{leaf: true, value: mean}
		return self
	}

	t.importance[best.feature] += parentSSE - best.sse

	var left, right []int
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := t.split(X, y, left, depth+1, params)
	r := t.split(X, y, right, depth+1, params)
	t.nodes[self] = node{feature: best.feature, threshold: best.threshold, left: l, right: r}
	return self
}

type candidate struct {
	ok        bool
	feature   int
	threshold float64
	sse       float64
}

// findSplit scans every feature for the threshold minimizing the summed
// squared error of both children. Ties keep the earliest feature.
func findSplit(X [][]float64, y []float64, idx []int, minLeaf int) candidate {
	var best candidate
	sorted := make([]int, len(idx))
	n := len(idx)

	for f := range X[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		totalSum, totalSq := moments(y, sorted)
		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			v := y[sorted[k-1]]
			leftSum += v
			leftSq += v * v

			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := X[sorted[k-1]][f], X[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl, nr := float64(k), float64(n-k)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if !best.ok || sse < best.sse-minImprovement {
				best = candidate{ok: true, feature: f, threshold: lo + (hi-lo)/2, sse: sse}
			}
		}
	}
	return best
}

func moments(y []float64, idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}
