package model

import (
	"math"
	"math/rand"
	"testing"
)

// twoClusters builds a separable binary dataset: class 0 around (-2, -2),
// class 1 around (2, 2). Imbalanced like a defect dataset.
func twoClusters(n int, positiveShare float64, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	nPos := int(float64(n) * positiveShare)
	X := make([][]float64, 0, n)
	y := make([]int, 0, n)
	for i := 0; i < n; i++ {
		center, label := -2.0, 0
		if i < nPos {
			center, label = 2.0, 1
		}
		X = append(X, []float64{
			center + rng.NormFloat64()*0.5,
			center + rng.NormFloat64()*0.5,
		})
		y = append(y, label)
	}
	rng.Shuffle(n, func(a, b int) {
		X[a], X[b] = X[b], X[a]
		y[a], y[b] = y[b], y[a]
	})
	return X, y
}

func requireBeatsMajority(t *testing.T, name string, clf Classifier, X [][]float64, y []int) {
	t.Helper()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("%s: Fit failed: %v", name, err)
	}
	acc := Accuracy(y, clf.Predict(X))
	// Majority share in the synthetic set is 0.8; a fitted model on well
	// separated clusters must do clearly better.
	if acc < 0.9 {
		t.Errorf("%s: train accuracy %.3f, want >= 0.9", name, acc)
	}
}

func TestClassifiersSeparateClusters(t *testing.T) {
	X, y := twoClusters(300, 0.2, 7)

	requireBeatsMajority(t, "tree", NewDecisionTree(WithMaxDepth(5), WithTreeSeed(42)), X, y)
	requireBeatsMajority(t, "forest", NewRandomForest(WithNEstimators(20), WithForestSeed(42)), X, y)
	requireBeatsMajority(t, "logistic", NewLogisticRegression(), X, y)
	requireBeatsMajority(t, "svc", NewLinearSVC(), X, y)
	requireBeatsMajority(t, "knn", NewKNN(5), X, y)
}

func TestDecisionTreeDeterministicUnderSeed(t *testing.T) {
	X, y := twoClusters(200, 0.3, 11)
	a := NewDecisionTree(WithMaxDepth(4), WithMaxFeatures(1), WithTreeSeed(9))
	b := NewDecisionTree(WithMaxDepth(4), WithMaxFeatures(1), WithTreeSeed(9))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pa, pb := a.Predict(X), b.Predict(X)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("same seed diverged at sample %d", i)
		}
	}
}

func TestDecisionTreeRejectsBadInput(t *testing.T) {
	tree := NewDecisionTree()
	if err := tree.Fit(nil, nil); err == nil {
		t.Error("expected error for empty training set")
	}
	if err := tree.Fit([][]float64{{1}}, []int{0, 1}); err == nil {
		t.Error("expected error for length mismatch")
	}
	bad := NewDecisionTree(WithCriterion("chi2"))
	if err := bad.Fit([][]float64{{1}, {2}}, []int{0, 1}); err == nil {
		t.Error("expected error for unknown criterion")
	}
}

func TestRandomForestDeterministicUnderSeed(t *testing.T) {
	X, y := twoClusters(200, 0.25, 3)
	a := NewRandomForest(WithNEstimators(15), WithForestSeed(99))
	b := NewRandomForest(WithNEstimators(15), WithForestSeed(99))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pa, pb := a.PredictProba(X), b.PredictProba(X)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("same forest seed diverged at sample %d: %g vs %g", i, pa[i], pb[i])
		}
	}
}

func TestRandomForestUnfittedReturnsNil(t *testing.T) {
	f := NewRandomForest()
	X := [][]float64{{1, 2}, {3, 4}}
	if got := f.PredictProba(X); got != nil {
		t.Errorf("unfitted PredictProba = %v, want nil", got)
	}
	if got := f.Predict(X); len(got) != 0 {
		t.Errorf("unfitted Predict = %v, want empty", got)
	}
}

func TestLogisticRegressionProbabilities(t *testing.T) {
	X, y := twoClusters(300, 0.2, 5)
	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	proba := m.PredictProba(X)
	for i, p := range proba {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range at sample %d: %g", i, p)
		}
	}
	// A deep positive point should score near 1, a deep negative near 0.
	hi := m.PredictProba([][]float64{{3, 3}})[0]
	lo := m.PredictProba([][]float64{{-3, -3}})[0]
	if hi < 0.9 || lo > 0.1 {
		t.Errorf("expected confident extremes, got %.3f and %.3f", hi, lo)
	}
}

func TestKNNRejectsBadK(t *testing.T) {
	X := [][]float64{{1}, {2}}
	y := []int{0, 1}
	if err := NewKNN(0).Fit(X, y); err == nil {
		t.Error("expected error for k=0")
	}
	if err := NewKNN(3).Fit(X, y); err == nil {
		t.Error("expected error for k larger than training set")
	}
}

func TestMetrics(t *testing.T) {
	yTrue := []int{1, 1, 1, 0, 0, 0, 0, 0}
	yPred := []int{1, 1, 0, 1, 0, 0, 0, 0}

	cm := Confusion(yTrue, yPred)
	if cm.TP != 2 || cm.FP != 1 || cm.FN != 1 || cm.TN != 4 {
		t.Fatalf("unexpected confusion matrix: %+v", cm)
	}
	if got := Accuracy(yTrue, yPred); got != 0.75 {
		t.Errorf("accuracy = %g, want 0.75", got)
	}
	if got := Precision(yTrue, yPred); got != 2.0/3.0 {
		t.Errorf("precision = %g, want 2/3", got)
	}
	if got := Recall(yTrue, yPred); got != 2.0/3.0 {
		t.Errorf("recall = %g, want 2/3", got)
	}
	if got := F1(yTrue, yPred); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("f1 = %g, want 2/3", got)
	}
}

func TestMetricsDegenerate(t *testing.T) {
	// No positive predictions and no positive labels.
	yTrue := []int{0, 0}
	yPred := []int{0, 0}
	if Precision(yTrue, yPred) != 0 || Recall(yTrue, yPred) != 0 || F1(yTrue, yPred) != 0 {
		t.Error("expected zero precision/recall/f1 without positives")
	}
}

func TestStratifiedKFoldProportions(t *testing.T) {
	_, y := twoClusters(400, 0.16, 21)
	folds, err := StratifiedKFold(y, 5, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(folds) != 5 {
		t.Fatalf("expected 5 folds, got %d", len(folds))
	}
	seen := map[int]bool{}
	for f, fold := range folds {
		pos := 0
		for _, i := range fold {
			if seen[i] {
				t.Fatalf("sample %d assigned to two folds", i)
			}
			seen[i] = true
			pos += y[i]
		}
		// 64 positives over 5 folds: 12 or 13 each.
		if pos < 12 || pos > 13 {
			t.Errorf("fold %d has %d positives, want 12 or 13", f, pos)
		}
	}
	if len(seen) != len(y) {
		t.Errorf("folds cover %d of %d samples", len(seen), len(y))
	}
}

func TestStratifiedKFoldRejectsBadK(t *testing.T) {
	y := []int{0, 1, 0, 1}
	if _, err := StratifiedKFold(y, 1, 1); err == nil {
		t.Error("expected error for k=1")
	}
	if _, err := StratifiedKFold(y, 5, 1); err == nil {
		t.Error("expected error for k > samples")
	}
}

func TestCrossValidate(t *testing.T) {
	X, y := twoClusters(200, 0.25, 13)
	res, err := CrossValidate(func() Classifier {
		return NewDecisionTree(WithMaxDepth(4), WithTreeSeed(1))
	}, X, y, 5, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Scores) != 5 {
		t.Fatalf("expected 5 fold scores, got %d", len(res.Scores))
	}
	if res.Mean() < 0.9 {
		t.Errorf("mean CV accuracy %.3f, want >= 0.9 on separable data", res.Mean())
	}
	if res.Std() < 0 || res.Std() > 0.5 {
		t.Errorf("implausible std: %g", res.Std())
	}
}

func TestGridSearchForest(t *testing.T) {
	X, y := twoClusters(120, 0.25, 17)
	grid := ForestGrid{
		NEstimators:     []int{5, 10},
		MaxDepth:        []int{3},
		MinSamplesSplit: []int{2, 5},
	}
	res, err := GridSearchForest(grid, X, y, 3, 42)
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluated != 4 {
		t.Errorf("evaluated %d grid points, want 4", res.Evaluated)
	}
	if res.BestScore < 0.9 {
		t.Errorf("best score %.3f, want >= 0.9 on separable data", res.BestScore)
	}
	if res.Best.NEstimators == 0 {
		t.Error("best params not recorded")
	}

	again, err := GridSearchForest(grid, X, y, 3, 42)
	if err != nil {
		t.Fatal(err)
	}
	if again.Best != res.Best || again.BestScore != res.BestScore {
		t.Error("grid search is not deterministic under a fixed seed")
	}
}

func TestGridSearchForestEmptyGrid(t *testing.T) {
	if _, err := GridSearchForest(ForestGrid{}, nil, nil, 3, 1); err == nil {
		t.Error("expected error for empty grid")
	}
}
