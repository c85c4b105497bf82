package model

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// DecisionTree is a CART-style binary classifier splitting on numeric
// thresholds.
type DecisionTree struct {
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string // "gini" or "entropy"
	MaxFeatures     int    // 0 means all features per split
	Seed            int64

	root *treeNode
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	n      int
	posFra float64 // fraction of class-1 samples at this node
}

// TreeOption configures a DecisionTree.
type TreeOption func(*DecisionTree)

func WithMaxDepth(d int) TreeOption        { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) TreeOption  { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }
func WithCriterion(c string) TreeOption    { return func(t *DecisionTree) { t.Criterion = c } }
func WithMaxFeatures(k int) TreeOption     { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithTreeSeed(seed int64) TreeOption   { return func(t *DecisionTree) { t.Seed = seed } }

// NewDecisionTree returns a tree with CART defaults.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		Seed:            1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *DecisionTree) Name() string { return "decision_tree" }

// Fit grows the tree on all samples.
func (t *DecisionTree) Fit(X [][]float64, y []int) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(X, y, idx)
}

// FitIndices grows the tree on the samples named by idx, which lets the
// random forest train on bootstrap index slices without copying rows.
func (t *DecisionTree) FitIndices(X [][]float64, y []int, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return errors.New("tree: no training samples")
	}
	if len(X) != len(y) {
		return errors.New("tree: X and y length mismatch")
	}
	if t.Criterion != "gini" && t.Criterion != "entropy" {
		return errors.New("tree: criterion must be gini or entropy")
	}
	rng := rand.New(rand.NewSource(t.Seed))
	t.root = t.grow(X, y, idx, 0, rng)
	return nil
}

// Predict returns the majority label of the leaf each row falls into.
func (t *DecisionTree) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, x := range X {
		if t.predictProbaOne(x) >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

// PredictProba returns each row's leaf class-1 fraction.
func (t *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = t.predictProbaOne(x)
	}
	return out
}

func (t *DecisionTree) predictProbaOne(x []float64) float64 {
	node := t.root
	if node == nil {
		return 0.5
	}
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.posFra
}

func (t *DecisionTree) grow(X [][]float64, y []int, idx []int, depth int, rng *rand.Rand) *treeNode {
	pos := 0
	for _, i := range idx {
		pos += y[i]
	}
	node := &treeNode{n: len(idx), posFra: float64(pos) / float64(len(idx))}

	pure := pos == 0 || pos == len(idx)
	if pure || len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.leaf = true
		return node
	}

	feature, threshold, left, right, ok := t.bestSplit(X, y, idx, rng)
	if !ok {
		node.leaf = true
		return node
	}
	node.feature = feature
	node.threshold = threshold
	node.left = t.grow(X, y, left, depth+1, rng)
	node.right = t.grow(X, y, right, depth+1, rng)
	return node
}

type valueIndex struct {
	v float64
	i int
}

func (t *DecisionTree) bestSplit(X [][]float64, y []int, idx []int, rng *rand.Rand) (feature int, threshold float64, left, right []int, ok bool) {
	p := len(X[0])
	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		rng.Shuffle(p, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:t.MaxFeatures]
	}

	parent := t.impurity(classCounts(y, idx))
	bestGain := 0.0

	for _, f := range features {
		vals := make([]valueIndex, len(idx))
		for k, i := range idx {
			vals[k] = valueIndex{X[i][f], i}
		}
		sort.Slice(vals, func(a, b int) bool { return vals[a].v < vals[b].v })

		// Scan split points between distinct values, tracking left-side
		// counts incrementally.
		leftCounts := [2]int{}
		total := classCounts(y, idx)
		for s := 1; s < len(vals); s++ {
			leftCounts[y[vals[s-1].i]]++
			if vals[s].v == vals[s-1].v {
				continue
			}
			if s < t.MinSamplesLeaf || len(vals)-s < t.MinSamplesLeaf {
				continue
			}
			rightCounts := [2]int{total[0] - leftCounts[0], total[1] - leftCounts[1]}
			weighted := (float64(s)*t.impurity(leftCounts) +
				float64(len(vals)-s)*t.impurity(rightCounts)) / float64(len(vals))
			gain := parent - weighted
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (vals[s-1].v + vals[s].v) / 2
				left = left[:0]
				right = right[:0]
				for k := 0; k < len(vals); k++ {
					if k < s {
						left = append(left, vals[k].i)
					} else {
						right = append(right, vals[k].i)
					}
				}
				ok = true
			}
		}
	}
	return feature, threshold, left, right, ok
}

func classCounts(y []int, idx []int) [2]int {
	var counts [2]int
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func (t *DecisionTree) impurity(counts [2]int) float64 {
	n := float64(counts[0] + counts[1])
	if n == 0 {
		return 0
	}
	if t.Criterion == "entropy" {
		res := 0.0
		for _, c := range counts {
			if c == 0 {
				continue
			}
			p := float64(c) / n
			res -= p * math.Log2(p)
		}
		return res
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}
