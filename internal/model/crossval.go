package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// StratifiedKFold assigns samples to k folds so each fold keeps the class
// proportions of y, to within one sample per class. The returned slice
// holds the test indices of each fold.
func StratifiedKFold(y []int, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", k)
	}
	if k > len(y) {
		return nil, fmt.Errorf("cannot make %d folds from %d samples", k, len(y))
	}

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	for _, label := range []int{0, 1} {
		members := byClass[label]
		order := rng.Perm(len(members))
		for i, o := range order {
			folds[i%k] = append(folds[i%k], members[o])
		}
	}
	return folds, nil
}

// CVResult holds per-fold scores from cross-validation.
type CVResult struct {
	Scores []float64
}

// Mean returns the average fold score.
func (r CVResult) Mean() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range r.Scores {
		s += v
	}
	return s / float64(len(r.Scores))
}

// Std returns the standard deviation of the fold scores.
func (r CVResult) Std() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	m := r.Mean()
	v := 0.0
	for _, s := range r.Scores {
		d := s - m
		v += d * d
	}
	return math.Sqrt(v / float64(len(r.Scores)))
}

// CrossValidate scores a model family over stratified folds. The factory
// returns a fresh untrained classifier per fold so no state leaks between
// folds.
func CrossValidate(factory func() Classifier, X [][]float64, y []int, k int, seed int64) (CVResult, error) {
	folds, err := StratifiedKFold(y, k, seed)
	if err != nil {
		return CVResult{}, err
	}

	result := CVResult{Scores: make([]float64, 0, k)}
	for f, testIdx := range folds {
		inTest := make(map[int]bool, len(testIdx))
		for _, i := range testIdx {
			inTest[i] = true
		}

		var XTrain, XTest [][]float64
		var yTrain, yTest []int
		for i := range X {
			if inTest[i] {
				XTest = append(XTest, X[i])
				yTest = append(yTest, y[i])
			} else {
				XTrain = append(XTrain, X[i])
				yTrain = append(yTrain, y[i])
			}
		}

		clf := factory()
		if err := clf.Fit(XTrain, yTrain); err != nil {
			return CVResult{}, fmt.Errorf("fold %d: %w", f, err)
		}
		result.Scores = append(result.Scores, Accuracy(yTest, clf.Predict(XTest)))
	}
	return result, nil
}

// ForestGrid is the random forest hyperparameter grid searched by Tune.
type ForestGrid struct {
	NEstimators     []int
	MaxDepth        []int
	MinSamplesSplit []int
}

// DefaultForestGrid mirrors the ranges commonly swept for small tabular
// datasets.
func DefaultForestGrid() ForestGrid {
	return ForestGrid{
		NEstimators:     []int{50, 100, 200},
		MaxDepth:        []int{0, 5, 10},
		MinSamplesSplit: []int{2, 5, 10},
	}
}

// ForestParams is one point in the grid.
type ForestParams struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
}

// GridResult reports the winning parameters of a grid search.
type GridResult struct {
	Best      ForestParams
	BestScore float64
	Evaluated int
}

// GridSearchForest cross-validates every grid point and returns the
// parameters with the highest mean accuracy. Grid order is fixed, so ties
// resolve to the earliest point and the search is deterministic.
func GridSearchForest(grid ForestGrid, X [][]float64, y []int, k int, seed int64) (GridResult, error) {
	if len(grid.NEstimators) == 0 || len(grid.MaxDepth) == 0 || len(grid.MinSamplesSplit) == 0 {
		return GridResult{}, errors.New("grid search needs at least one value per parameter")
	}

	res := GridResult{BestScore: -1}
	for _, n := range grid.NEstimators {
		for _, depth := range grid.MaxDepth {
			for _, split := range grid.MinSamplesSplit {
				params := ForestParams{NEstimators: n, MaxDepth: depth, MinSamplesSplit: split}
				cv, err := CrossValidate(func() Classifier {
					return NewRandomForest(
						WithNEstimators(params.NEstimators),
						WithForestMaxDepth(params.MaxDepth),
						WithForestMinSamplesSplit(params.MinSamplesSplit),
						WithForestSeed(seed),
					)
				}, X, y, k, seed)
				if err != nil {
					return GridResult{}, err
				}
				res.Evaluated++
				if cv.Mean() > res.BestScore {
					res.BestScore = cv.Mean()
					res.Best = params
				}
			}
		}
	}
	return res, nil
}
