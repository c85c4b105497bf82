package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defects.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "Temp,Pressure,DefectStatus\n1.5,2.0,1\n3.0,4.5,0\n2.5,1.0,1\n")

	ds, err := LoadCSV(path, "DefectStatus")
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", ds.Len())
	}
	if len(ds.Features) != 2 || ds.Features[0] != "Temp" || ds.Features[1] != "Pressure" {
		t.Errorf("unexpected features: %v", ds.Features)
	}
	if ds.X[1][0] != 3.0 || ds.X[1][1] != 4.5 {
		t.Errorf("unexpected second row: %v", ds.X[1])
	}
	if ds.Y[0] != 1 || ds.Y[1] != 0 || ds.Y[2] != 1 {
		t.Errorf("unexpected labels: %v", ds.Y)
	}
}

func TestLoadCSVSkipsBadRows(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"A,B,DefectStatus",
		"1,2,1",
		"x,2,1",  // non-numeric feature
		"1,2,2",  // label outside {0,1}
		"1,2",    // short row
		"3,4,0",
	}, "\n"))

	ds, err := LoadCSV(path, "DefectStatus")
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("expected 2 usable samples, got %d", ds.Len())
	}
	if ds.Skipped != 3 {
		t.Errorf("expected 3 skipped rows, got %d", ds.Skipped)
	}
}

func TestLoadCSVRecoversFromQuoteError(t *testing.T) {
	// A malformed quote in one row must not swallow the rows after it.
	path := writeCSV(t, strings.Join([]string{
		"A,B,DefectStatus",
		"1,2,1",
		`3,4",0`,
		"5,6,0",
		"7,8,1",
	}, "\n"))

	ds, err := LoadCSV(path, "DefectStatus")
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("expected 3 usable samples, got %d", ds.Len())
	}
	if ds.Skipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", ds.Skipped)
	}
	if ds.Y[0] != 1 || ds.Y[1] != 0 || ds.Y[2] != 1 {
		t.Errorf("unexpected labels after recovery: %v", ds.Y)
	}
}

func TestLoadCSVMissingLabelColumn(t *testing.T) {
	path := writeCSV(t, "A,B\n1,2\n")
	if _, err := LoadCSV(path, "DefectStatus"); err == nil {
		t.Error("expected error for missing label column")
	}
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	path := writeCSV(t, "A,B,DefectStatus\n")
	if _, err := LoadCSV(path, "DefectStatus"); err == nil {
		t.Error("expected error for dataset with no rows")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), "DefectStatus"); err == nil {
		t.Error("expected error for missing file")
	}
}

func syntheticImbalanced(n int, positiveShare float64) *Dataset {
	ds := &Dataset{Features: []string{"f0", "f1"}}
	nPos := int(float64(n) * positiveShare)
	for i := 0; i < n; i++ {
		label := 0
		if i < nPos {
			label = 1
		}
		ds.X = append(ds.X, []float64{float64(i), float64(i % 7)})
		ds.Y = append(ds.Y, label)
	}
	return ds
}

func TestStratifiedSplitPreservesProportions(t *testing.T) {
	// 84/16 imbalance, mirroring a typical defect dataset.
	ds := syntheticImbalanced(500, 0.16)

	for _, seed := range []int64{1, 42, 1337} {
		s, err := StratifiedSplit(ds, 0.2, seed)
		if err != nil {
			t.Fatalf("StratifiedSplit failed: %v", err)
		}
		if len(s.YTrain)+len(s.YTest) != ds.Len() {
			t.Fatalf("seed %d: split lost samples: %d + %d != %d",
				seed, len(s.YTrain), len(s.YTest), ds.Len())
		}

		countPos := func(ys []int) int {
			n := 0
			for _, y := range ys {
				n += y
			}
			return n
		}
		// Each class's share in each subset must match the full dataset to
		// within one sample per class.
		wantTestPos := 0.2 * 80
		if got := countPos(s.YTest); math.Abs(float64(got)-wantTestPos) > 1 {
			t.Errorf("seed %d: test positives = %d, want ~%.0f", seed, got, wantTestPos)
		}
		wantTrainPos := 0.8 * 80
		if got := countPos(s.YTrain); math.Abs(float64(got)-wantTrainPos) > 1 {
			t.Errorf("seed %d: train positives = %d, want ~%.0f", seed, got, wantTrainPos)
		}
	}
}

func TestStratifiedSplitDeterministicUnderSeed(t *testing.T) {
	ds := syntheticImbalanced(100, 0.3)
	a, err := StratifiedSplit(ds, 0.25, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := StratifiedSplit(ds, 0.25, 42)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.YTest {
		if a.YTest[i] != b.YTest[i] || a.XTest[i][0] != b.XTest[i][0] {
			t.Fatalf("same seed produced different splits at index %d", i)
		}
	}
}

func TestSplitRejectsBadRatio(t *testing.T) {
	ds := syntheticImbalanced(10, 0.5)
	for _, ratio := range []float64{0, 1, -0.2, 1.5} {
		if _, err := TrainTestSplit(ds, ratio, 1); err == nil {
			t.Errorf("TrainTestSplit accepted ratio %g", ratio)
		}
		if _, err := StratifiedSplit(ds, ratio, 1); err == nil {
			t.Errorf("StratifiedSplit accepted ratio %g", ratio)
		}
	}
}

func TestSummarize(t *testing.T) {
	ds := &Dataset{
		Features: []string{"a", "b"},
		X:        [][]float64{{1, 10}, {2, 20}, {3, 30}},
		Y:        []int{0, 0, 1},
	}
	s := Summarize(ds)
	if s.Samples != 3 || s.Negative != 2 || s.Positive != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	a := s.Columns[0]
	if a.Mean != 2 || a.Min != 1 || a.Max != 3 {
		t.Errorf("unexpected column a stats: %+v", a)
	}
	if math.Abs(a.Std-math.Sqrt(2.0/3.0)) > 1e-9 {
		t.Errorf("unexpected std: %g", a.Std)
	}
	if math.Abs(s.PositiveShare()-1.0/3.0) > 1e-9 {
		t.Errorf("unexpected positive share: %g", s.PositiveShare())
	}
	if !strings.Contains(s.String(), "class balance 2:1") {
		t.Errorf("summary string missing class balance: %s", s.String())
	}
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 5, 7}, {3, 5, 11}}
	sc := NewStandardScaler()
	out := sc.FitTransform(X)

	// First column standardizes to -1, +1.
	if out[0][0] != -1 || out[1][0] != 1 {
		t.Errorf("unexpected column 0: %v %v", out[0][0], out[1][0])
	}
	// Zero-variance column maps to zero.
	if out[0][1] != 0 || out[1][1] != 0 {
		t.Errorf("zero-variance column not zeroed: %v %v", out[0][1], out[1][1])
	}

	// Transform of fresh data reuses training statistics.
	fresh := sc.Transform([][]float64{{2, 5, 9}})
	if fresh[0][0] != 0 || fresh[0][2] != 0 {
		t.Errorf("unexpected transform of held-out row: %v", fresh[0])
	}
}
