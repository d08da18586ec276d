package forecasting

import (
	"math"
	"slices"
)

type treeNode struct {
	feature     int
	threshold   float64
	left, right int
	value       float64
}

func (n treeNode) leaf() bool { return n.left < 0 }

// regressionTree is a CART tree grown on squared error.
type regressionTree struct {
	maxDepth int
	minSplit int
	nodes    []treeNode
}

func (t *regressionTree) fit(X [][]float64, y []float64, idx []int) {
	t.nodes = t.nodes[:0]
	t.grow(X, y, idx, 0)
}

func (t *regressionTree) grow(X [][]float64, y []float64, idx []int, depth int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{left: -1, right: -1, value: meanAt(y, idx)})

	if depth >= t.maxDepth || len(idx) < t.minSplit || pure(y, idx) {
		return id
	}
	feature, threshold, ok := bestSplit(X, y, idx)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return id
	}
	l := t.grow(X, y, left, depth+1)
	r := t.grow(X, y, right, depth+1)
	t.nodes[id].feature = feature
	t.nodes[id].threshold = threshold
	t.nodes[id].left = l
	t.nodes[id].right = r
	return id
}

func (t *regressionTree) predict(row []float64) float64 {
	n := t.nodes[0]
	for !n.leaf() {
		if row[n.feature] <= n.threshold {
			n = t.nodes[n.left]
		} else {
			n = t.nodes[n.right]
		}
	}
	return n.value
}

// bestSplit scans every feature for the threshold with the lowest summed squared error.
func bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	best := math.Inf(1)
	sorted := make([]int, len(idx))
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(idx))

	for f := range X[idx[0]] {
		copy(sorted, idx)
		slices.SortStableFunc(sorted, func(a, b int) int {
			switch {
			case X[a][f] < X[b][f]:
				return -1
			case X[a][f] > X[b][f]:
				return 1
			default:
				return 0
			}
		})

		var leftSum, leftSq float64
		for k := 1; k < len(sorted); k++ {
			v := y[sorted[k-1]]
			leftSum += v
			leftSq += v * v
			lo, hi := X[sorted[k-1]][f], X[sorted[k]][f]
			if lo == hi {
				continue
			}
			nl := float64(k)
			nr := n - nl
			rightSum := total - leftSum
			sse := (leftSq - leftSum*leftSum/nl) + (totalSq - leftSq - rightSum*rightSum/nr)
			if sse < best {
				best = sse
				feature = f
				threshold = lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func meanAt(y []float64, idx []int) float64 {
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func pure(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
