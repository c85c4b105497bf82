package dataset

import (
	"fmt"
	"math"
	"strings"
)

// ColumnSummary holds descriptive statistics for one feature column.
type ColumnSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// Summary describes a dataset: per-column statistics plus class balance.
type Summary struct {
	Samples  int
	Columns  []ColumnSummary
	Negative int
	Positive int
}

// Summarize computes descriptive statistics over every feature column.
func Summarize(d *Dataset) Summary {
	s := Summary{Samples: d.Len()}
	s.Negative, s.Positive = d.ClassCounts()

	for j, name := range d.Features {
		col := ColumnSummary{Name: name, Count: d.Len(), Min: math.Inf(1), Max: math.Inf(-1)}
		for i := range d.X {
			v := d.X[i][j]
			col.Mean += v
			col.Min = math.Min(col.Min, v)
			col.Max = math.Max(col.Max, v)
		}
		col.Mean /= float64(d.Len())
		for i := range d.X {
			dv := d.X[i][j] - col.Mean
			col.Std += dv * dv
		}
		col.Std = math.Sqrt(col.Std / float64(d.Len()))
		s.Columns = append(s.Columns, col)
	}
	return s
}

// PositiveShare returns the fraction of samples labeled 1.
func (s Summary) PositiveShare() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.Positive) / float64(s.Samples)
}

// String renders the summary as a fixed-width table.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d samples, %d features, class balance %d:%d (%.1f%% positive)\n",
		s.Samples, len(s.Columns), s.Negative, s.Positive, 100*s.PositiveShare())
	fmt.Fprintf(&b, "%-24s %8s %10s %10s %10s %10s\n", "column", "count", "mean", "std", "min", "max")
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "%-24s %8d %10.4f %10.4f %10.4f %10.4f\n",
			c.Name, c.Count, c.Mean, c.Std, c.Min, c.Max)
	}
	return b.String()
}
