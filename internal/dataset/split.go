package dataset

import (
	"fmt"
	"math/rand"
)

// Split is a train/test partition of a dataset.
type Split struct {
	XTrain, XTest [][]float64
	YTrain, YTest []int
}

// TrainTestSplit shuffles and partitions the dataset, putting roughly
// testRatio of the samples into the test set.
func TrainTestSplit(d *Dataset, testRatio float64, seed int64) (*Split, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, fmt.Errorf("test ratio must be in (0, 1), got %g", testRatio)
	}
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(d.Len())
	nTest := int(float64(d.Len()) * testRatio)

	s := &Split{}
	for i, idx := range indices {
		if i < nTest {
			s.XTest = append(s.XTest, d.X[idx])
			s.YTest = append(s.YTest, d.Y[idx])
		} else {
			s.XTrain = append(s.XTrain, d.X[idx])
			s.YTrain = append(s.YTrain, d.Y[idx])
		}
	}
	return s, nil
}

// StratifiedSplit partitions the dataset so each class keeps its proportion
// in both subsets, to within one sample per class. With imbalanced labels a
// plain shuffle can leave a test set with almost no positives; splitting each
// class separately avoids that.
func StratifiedSplit(d *Dataset, testRatio float64, seed int64) (*Split, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, fmt.Errorf("test ratio must be in (0, 1), got %g", testRatio)
	}
	byClass := map[int][]int{}
	for i, y := range d.Y {
		byClass[y] = append(byClass[y], i)
	}

	rng := rand.New(rand.NewSource(seed))
	s := &Split{}
	for _, label := range []int{0, 1} {
		members := byClass[label]
		order := rng.Perm(len(members))
		nTest := int(float64(len(members)) * testRatio)
		for i, o := range order {
			idx := members[o]
			if i < nTest {
				s.XTest = append(s.XTest, d.X[idx])
				s.YTest = append(s.YTest, d.Y[idx])
			} else {
				s.XTrain = append(s.XTrain, d.X[idx])
				s.YTrain = append(s.YTrain, d.Y[idx])
			}
		}
	}

	// Interleave classes so downstream mini-batch training does not see one
	// long run of a single label.
	shuffle(rng, s.XTrain, s.YTrain)
	shuffle(rng, s.XTest, s.YTest)
	return s, nil
}

func shuffle(rng *rand.Rand, X [][]float64, Y []int) {
	rng.Shuffle(len(Y), func(i, j int) {
		X[i], X[j] = X[j], X[i]
		Y[i], Y[j] = Y[j], Y[i]
	})
}
