package pipeline

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a wiki-ready page.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Defect Classification Report\n\n")
	fmt.Fprintf(&b, "Dataset: `%s` | Seed: %d | Elapsed: %s\n\n", r.DataPath, r.Seed, r.Elapsed.Round(1e6))

	fmt.Fprintf(&b, "## Dataset\n\n")
	fmt.Fprintf(&b, "%d samples (%d train / %d test), %d features. ",
		r.Summary.Samples, r.TrainSize, r.TestSize, len(r.Summary.Columns))
	fmt.Fprintf(&b, "Class balance %d:%d (%.1f%% defective).\n\n",
		r.Summary.Negative, r.Summary.Positive, 100*r.Summary.PositiveShare())

	fmt.Fprintf(&b, "| Column | Mean | Std | Min | Max |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, c := range r.Summary.Columns {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f |\n", c.Name, c.Mean, c.Std, c.Min, c.Max)
	}

	fmt.Fprintf(&b, "\n## Models\n\n")
	fmt.Fprintf(&b, "| Model | Train Acc | Test Acc | Precision | Recall | F1 | CV Acc |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|\n")
	for _, m := range r.Models {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f ± %.4f |\n",
			m.Name, m.TrainAcc, m.TestAcc, m.Precision, m.Recall, m.F1, m.CVMean, m.CVStd)
	}

	best := r.Best()
	fmt.Fprintf(&b, "\nBest on held-out data: **%s** (%.4f accuracy).\n", best.Name, best.TestAcc)
	fmt.Fprintf(&b, "\nConfusion matrix (%s): TP=%d FP=%d FN=%d TN=%d\n",
		best.Name, best.Confusion.TP, best.Confusion.FP, best.Confusion.FN, best.Confusion.TN)

	fmt.Fprintf(&b, "\n## Random Forest Grid Search\n\n")
	fmt.Fprintf(&b, "Evaluated %d parameter combinations.\n\n", r.Grid.Evaluated)
	fmt.Fprintf(&b, "Best: n_estimators=%d, max_depth=%d, min_samples_split=%d (CV accuracy %.4f)\n",
		r.Grid.Best.NEstimators, r.Grid.Best.MaxDepth, r.Grid.Best.MinSamplesSplit, r.Grid.BestScore)

	return b.String()
}
