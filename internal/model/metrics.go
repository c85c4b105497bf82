package model

// ConfusionMatrix holds binary classification outcome counts.
type ConfusionMatrix struct {
	TP, FP, TN, FN int
}

// Confusion tallies yPred against yTrue with class 1 as positive.
func Confusion(yTrue, yPred []int) ConfusionMatrix {
	var cm ConfusionMatrix
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			cm.TP++
		case yTrue[i] == 0 && yPred[i] == 1:
			cm.FP++
		case yTrue[i] == 1 && yPred[i] == 0:
			cm.FN++
		default:
			cm.TN++
		}
	}
	return cm
}

// Accuracy is the fraction of correct predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// Precision is TP / (TP + FP), zero when nothing was predicted positive.
func Precision(yTrue, yPred []int) float64 {
	cm := Confusion(yTrue, yPred)
	if cm.TP+cm.FP == 0 {
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FP)
}

// Recall is TP / (TP + FN), zero when no positives exist.
func Recall(yTrue, yPred []int) float64 {
	cm := Confusion(yTrue, yPred)
	if cm.TP+cm.FN == 0 {
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

// F1 is the harmonic mean of precision and recall.
func F1(yTrue, yPred []int) float64 {
	p := Precision(yTrue, yPred)
	r := Recall(yTrue, yPred)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
