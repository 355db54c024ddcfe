package forecasting

import (
	"math"
	"sort"
)

// regressor is a fitted model mapping a feature row to a value
type regressor interface {
	predict(x []float64) float64
}

type treeParams struct {
	maxDepth        int // 0 = unlimited
	minSamplesSplit int
	minSamplesLeaf  int
}

type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) isLeaf() bool {
	return n.left == nil
}

// regressionTree is a CART tree minimizing squared error
type regressionTree struct {
	params treeParams
	root   *treeNode
}

func fitRegressionTree(X [][]float64, y []float64, idx []int, params treeParams) *regressionTree {
	if params.minSamplesSplit < 2 {
		params.minSamplesSplit = 2
	}
	if params.minSamplesLeaf < 1 {
		params.minSamplesLeaf = 1
	}
	t := &regressionTree{params: params}
	t.root = t.grow(X, y, idx, 0)
	return t
}

func (t *regressionTree) predict(x []float64) float64 {
	n := t.root
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func (t *regressionTree) grow(X [][]float64, y []float64, idx []int, depth int) *treeNode {
	leaf := &treeNode{value: meanAt(y, idx)}

	n := len(idx)
	if n < t.params.minSamplesSplit || n < 2*t.params.minSamplesLeaf {
		return leaf
	}
	if t.params.maxDepth > 0 && depth >= t.params.maxDepth {
		return leaf
	}

	feature, threshold, ok := t.bestSplit(X, y, idx)
	if !ok {
		return leaf
	}

	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		value:     leaf.value,
		left:      t.grow(X, y, left, depth+1),
		right:     t.grow(X, y, right, depth+1),
	}
}

// bestSplit scans every feature for the threshold with the lowest summed
// squared error of the two children
func (t *regressionTree) bestSplit(X [][]float64, y []float64, idx []int) (int, float64, bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	parentSSE := totalSq - total*total/float64(n)
	if parentSSE <= 1e-12 {
		return 0, 0, false
	}

	bestSSE := parentSSE
	bestFeature, bestThreshold := -1, 0.0
	minLeaf := t.params.minSamplesLeaf

	sorted := make([]int, n)
	for f := 0; f < len(X[idx[0]]); f++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			v := y[sorted[k-1]]
			leftSum += v
			leftSq += v * v

			lo, hi := X[sorted[k-1]][f], X[sorted[k]][f]
			if lo == hi || k < minLeaf || n-k < minLeaf {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(k)) +
				(rightSq - rightSum*rightSum/float64(n-k))
			if sse < bestSSE-1e-12 {
				bestSSE = sse
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}

	if bestFeature < 0 || math.IsNaN(bestSSE) {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
