// Package model implements the classifiers trained by the defect pipeline:
// a CART decision tree, a bagged random forest, logistic regression, a
// linear SVM, and k-nearest neighbors. All classifiers share the binary
// label convention 0/1 and train deterministically under a fixed seed.
package model

// Classifier is the interface every model family implements.
type Classifier interface {
	// Fit trains on the feature matrix X and binary labels y.
	Fit(X [][]float64, y []int) error

	// Predict returns one 0/1 label per row of X.
	Predict(X [][]float64) []int

	// Name identifies the model family in reports.
	Name() string
}

// ProbabilityClassifier is implemented by models that can score class 1
// membership as a probability.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(X [][]float64) []float64
}
