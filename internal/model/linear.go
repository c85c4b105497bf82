package model

import (
	"errors"
	"math"
	"math/rand"
)

// LogisticRegression is a binary classifier trained with mini-batch
// gradient descent on the cross-entropy loss.
type LogisticRegression struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
	L2           float64
	Seed         int64

	W []float64
	B float64
}

// NewLogisticRegression returns a model with typical defaults.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		Epochs:       200,
		BatchSize:    32,
		Seed:         1,
	}
}

func (m *LogisticRegression) Name() string { return "logistic_regression" }

// Fit trains with shuffled mini-batches. Weights start at small seeded
// random values so runs reproduce exactly.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("logistic: no training samples")
	}
	if len(X) != len(y) {
		return errors.New("logistic: X and y length mismatch")
	}

	rng := rand.New(rand.NewSource(m.Seed))
	p := len(X[0])
	m.W = make([]float64, p)
	for j := range m.W {
		m.W[j] = rng.NormFloat64() * 0.01
	}
	m.B = 0

	batch := m.BatchSize
	if batch <= 0 || batch > len(X) {
		batch = len(X)
	}

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	for ep := 0; ep < m.Epochs; ep++ {
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		for start := 0; start < len(order); start += batch {
			end := min(start+batch, len(order))
			m.step(X, y, order[start:end])
		}
	}
	return nil
}

func (m *LogisticRegression) step(X [][]float64, y []int, idx []int) {
	gW := make([]float64, len(m.W))
	gB := 0.0
	for _, i := range idx {
		d := sigmoid(m.score(X[i])) - float64(y[i])
		for j, v := range X[i] {
			gW[j] += d * v
		}
		gB += d
	}
	scale := m.LearningRate / float64(len(idx))
	for j := range m.W {
		m.W[j] -= scale*gW[j] + m.LearningRate*m.L2*m.W[j]
	}
	m.B -= scale * gB
}

// PredictProba returns the sigmoid of each row's linear score.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = sigmoid(m.score(x))
	}
	return out
}

// Predict thresholds PredictProba at 0.5.
func (m *LogisticRegression) Predict(X [][]float64) []int {
	proba := m.PredictProba(X)
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (m *LogisticRegression) score(x []float64) float64 {
	s := m.B
	for j, v := range x {
		s += m.W[j] * v
	}
	return s
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

// LinearSVC is a linear support vector classifier trained with stochastic
// sub-gradient descent on the L2-regularized hinge loss.
type LinearSVC struct {
	LearningRate float64
	Epochs       int
	Lambda       float64
	Seed         int64

	W []float64
	B float64
}

// NewLinearSVC returns a model with typical defaults.
func NewLinearSVC() *LinearSVC {
	return &LinearSVC{
		LearningRate: 0.01,
		Epochs:       300,
		Lambda:       0.0001,
		Seed:         1,
	}
}

func (m *LinearSVC) Name() string { return "linear_svc" }

// Fit trains on labels mapped to -1/+1 internally.
func (m *LinearSVC) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("svc: no training samples")
	}
	if len(X) != len(y) {
		return errors.New("svc: X and y length mismatch")
	}

	rng := rand.New(rand.NewSource(m.Seed))
	m.W = make([]float64, len(X[0]))
	m.B = 0

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	for ep := 0; ep < m.Epochs; ep++ {
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		for _, i := range order {
			yi := float64(2*y[i] - 1)
			margin := yi * m.score(X[i])
			for j := range m.W {
				g := m.Lambda * m.W[j]
				if margin < 1 {
					g -= yi * X[i][j]
				}
				m.W[j] -= m.LearningRate * g
			}
			if margin < 1 {
				m.B += m.LearningRate * yi
			}
		}
	}
	return nil
}

// Predict maps the sign of the decision function back to 0/1.
func (m *LinearSVC) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, x := range X {
		if m.score(x) >= 0 {
			out[i] = 1
		}
	}
	return out
}

func (m *LinearSVC) score(x []float64) float64 {
	s := m.B
	for j, v := range x {
		s += m.W[j] * v
	}
	return s
}
