package model

import (
	"errors"
	"runtime"
	"sort"
	"sync"
)

// KNN classifies by majority vote among the k nearest training samples
// under squared euclidean distance. Fit only stores the data.
type KNN struct {
	K int

	x [][]float64
	y []int
}

// NewKNN returns a k-nearest-neighbors classifier.
func NewKNN(k int) *KNN { return &KNN{K: k} }

func (m *KNN) Name() string { return "knn" }

func (m *KNN) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("knn: no training samples")
	}
	if len(X) != len(y) {
		return errors.New("knn: X and y length mismatch")
	}
	if m.K <= 0 || m.K > len(X) {
		return errors.New("knn: k must be in [1, len(training set)]")
	}
	m.x = X
	m.y = y
	return nil
}

// Predict scores rows in parallel, one worker per CPU.
func (m *KNN) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	workers := runtime.GOMAXPROCS(0)
	perWorker := (len(X) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := min(start+perWorker, len(X))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.predictOne(X[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

func (m *KNN) predictOne(x []float64) int {
	type neighbor struct {
		d     float64
		label int
	}
	// Keep a small sorted buffer of the nearest k seen so far.
	nbrs := make([]neighbor, 0, m.K)
	for j, xj := range m.x {
		d := euclidSquared(x, xj)
		if len(nbrs) < m.K {
			nbrs = append(nbrs, neighbor{d, m.y[j]})
		} else if d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = neighbor{d, m.y[j]}
		} else {
			continue
		}
		sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
	}

	pos := 0
	for _, nb := range nbrs {
		pos += nb.label
	}
	if 2*pos >= len(nbrs) {
		return 1
	}
	return 0
}

func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
