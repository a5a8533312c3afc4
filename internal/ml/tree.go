package ml

import (
	"sort"
)

const (
	maxTreeDepth = 12
	minLeafRows  = 2
)

// treeBuilder fits a single CART regression tree over a row subset and
// accumulates per-feature impurity reduction for importance reporting.
type treeBuilder struct {
	x          [][]float64
	y          []float64
	importance []float64
}

func (b *treeBuilder) build(idx []int, depth int) *Node {
	mean := b.meanAt(idx)
	parentSSE := b.sseAt(idx, mean)

	if depth >= maxTreeDepth || len(idx) < 2*minLeafRows || parentSSE == 0 {
		return &Node{Leaf: true, Value: mean}
	}

	feature, threshold, gain, ok := b.bestSplit(idx, parentSSE)
	if !ok {
		return &Node{Leaf: true, Value: mean}
	}
	b.importance[feature] += gain

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans every feature for the threshold with the largest sum of
// squared error reduction, using sorted prefix sums per feature.
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (feature int, threshold, gain float64, ok bool) {
	n := len(idx)
	sorted := make([]int, n)
	prefix := make([]float64, n+1)
	prefixSq := make([]float64, n+1)

	for f := 0; f < len(b.x[idx[0]]); f++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		for i, row := range sorted {
			v := b.y[row]
			prefix[i+1] = prefix[i] + v
			prefixSq[i+1] = prefixSq[i] + v*v
		}
		total, totalSq := prefix[n], prefixSq[n]

		for k := minLeafRows; k <= n-minLeafRows; k++ {
			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl, nr := float64(k), float64(n-k)
			sseLeft := prefixSq[k] - prefix[k]*prefix[k]/nl
			sseRight := (totalSq - prefixSq[k]) - (total-prefix[k])*(total-prefix[k])/nr

			if g := parentSSE - sseLeft - sseRight; g > gain {
				feature, threshold, gain, ok = f, (lo+hi)/2, g, true
			}
		}
	}
	return feature, threshold, gain, ok
}

func (b *treeBuilder) meanAt(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

func (b *treeBuilder) sseAt(idx []int, mean float64) float64 {
	var sse float64
	for _, i := range idx {
		d := b.y[i] - mean
		sse += d * d
	}
	return sse
}
