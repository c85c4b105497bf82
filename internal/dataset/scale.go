package dataset

import "math"

// StandardScaler standardizes each feature column to zero mean and unit
// variance using statistics learned from the training set.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fit learns per-column mean and standard deviation from X.
func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	rows, cols := len(X), len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			s.Mean[j] += X[i][j]
		}
		s.Mean[j] /= float64(rows)
		v := 0.0
		for i := 0; i < rows; i++ {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}
		s.Std[j] = math.Sqrt(v / float64(rows))
	}
}

// Transform returns a standardized copy of X. Zero-variance columns map to
// zero instead of dividing by zero.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if len(s.Mean) == 0 {
		return X
	}
	out := make([][]float64, len(X))
	for i := range X {
		row := make([]float64, len(X[i]))
		for j := range X[i] {
			if s.Std[j] != 0 {
				row[j] = (X[i][j] - s.Mean[j]) / s.Std[j]
			}
		}
		out[i] = row
	}
	return out
}

// FitTransform fits on X and returns its standardized copy.
func (s *StandardScaler) FitTransform(X [][]float64) [][]float64 {
	s.Fit(X)
	return s.Transform(X)
}
