package model

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// RandomForest bags decision trees over bootstrap samples and predicts by
// majority vote.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 means sqrt(p), chosen at fit time
	Bootstrap       bool
	Seed            int64

	trees []*DecisionTree
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

func WithNEstimators(n int) ForestOption { return func(f *RandomForest) { f.NEstimators = n } }
func WithForestMaxDepth(d int) ForestOption {
	return func(f *RandomForest) { f.MaxDepth = d }
}
func WithForestMinSamplesSplit(n int) ForestOption {
	return func(f *RandomForest) { f.MinSamplesSplit = n }
}
func WithBootstrap(b bool) ForestOption    { return func(f *RandomForest) { f.Bootstrap = b } }
func WithForestSeed(seed int64) ForestOption { return func(f *RandomForest) { f.Seed = seed } }

// NewRandomForest returns a forest with common defaults.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	f := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		Seed:            1,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *RandomForest) Name() string { return "random_forest" }

// Fit trains each tree in its own goroutine. Tree i derives its seed from
// the forest seed plus i, so results are reproducible regardless of
// scheduling order.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("forest: no training samples")
	}
	if len(X) != len(y) {
		return errors.New("forest: X and y length mismatch")
	}
	if f.NEstimators <= 0 {
		return fmt.Errorf("forest: n_estimators must be positive, got %d", f.NEstimators)
	}

	maxFeatures := f.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = isqrt(len(X[0]))
	}

	n := len(X)
	f.trees = make([]*DecisionTree, f.NEstimators)
	errs := make([]error, f.NEstimators)
	var wg sync.WaitGroup
	for i := 0; i < f.NEstimators; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(f.Seed + int64(i)))

			idx := make([]int, n)
			for j := range idx {
				if f.Bootstrap {
					idx[j] = rng.Intn(n)
				} else {
					idx[j] = j
				}
			}

			tree := NewDecisionTree(
				WithMaxDepth(f.MaxDepth),
				WithMinSamplesSplit(f.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithTreeSeed(f.Seed+int64(i)),
			)
			if err := tree.FitIndices(X, y, idx); err != nil {
				errs[i] = err
				return
			}
			f.trees[i] = tree
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Predict returns the majority vote over all trees, ties going to class 1.
func (f *RandomForest) Predict(X [][]float64) []int {
	proba := f.PredictProba(X)
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

// PredictProba returns the fraction of trees voting for class 1. An
// unfitted forest has no trees to vote and returns nil.
func (f *RandomForest) PredictProba(X [][]float64) []float64 {
	if len(f.trees) == 0 {
		return nil
	}
	votes := make([]int, len(X))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, tree := range f.trees {
		wg.Add(1)
		go func(t *DecisionTree) {
			defer wg.Done()
			preds := t.Predict(X)
			mu.Lock()
			for i, p := range preds {
				votes[i] += p
			}
			mu.Unlock()
		}(tree)
	}
	wg.Wait()

	out := make([]float64, len(X))
	for i, v := range votes {
		out[i] = float64(v) / float64(len(f.trees))
	}
	return out
}

func isqrt(n int) int {
	r := 1
	for r*r < n {
		r++
	}
	return r
}
