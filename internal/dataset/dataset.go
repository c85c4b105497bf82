package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"defectscope/internal/logging"
)

// Dataset holds a numeric feature matrix with a binary label column, loaded
// from a CSV file with a header row.
type Dataset struct {
	// Features are the header names of the feature columns, in file order.
	Features []string

	// X is one row per sample, one column per feature.
	X [][]float64

	// Y holds the binary labels, 0 or 1.
	Y []int

	// Skipped counts rows dropped during loading.
	Skipped int
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Y) }

// LoadCSV reads path and splits it into features and the named label column.
// Rows with unparseable cells or labels outside {0, 1} are skipped with a
// warning rather than failing the whole load.
func LoadCSV(path, labelColumn string) (*Dataset, error) {
	log := logging.Get(logging.CategoryDataset)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	// Ragged rows are skipped below instead of aborting the read.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	labelIdx := -1
	features := make([]string, 0, len(header)-1)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == labelColumn {
			labelIdx = i
			continue
		}
		features = append(features, name)
	}
	if labelIdx == -1 {
		return nil, fmt.Errorf("label column %q not found in %s (columns: %s)",
			labelColumn, path, strings.Join(header, ", "))
	}

	ds := &Dataset{Features: features}
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// One malformed cell must not discard the rest of the file.
			log.Warn("skipping line %d: %v", line, err)
			ds.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(rec) != len(header) {
			log.Warn("skipping line %d: expected %d columns, got %d", line, len(header), len(rec))
			ds.Skipped++
			continue
		}

		x := make([]float64, 0, len(features))
		label := -1
		valid := true
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				log.Warn("skipping line %d: column %q is not numeric: %q", line, header[i], cell)
				valid = false
				break
			}
			if i == labelIdx {
				label = int(v)
				if float64(label) != v || (label != 0 && label != 1) {
					log.Warn("skipping line %d: label %q is not 0 or 1", line, cell)
					valid = false
					break
				}
			} else {
				x = append(x, v)
			}
		}
		if !valid {
			ds.Skipped++
			continue
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, label)
	}

	if len(ds.Y) == 0 {
		return nil, fmt.Errorf("no usable rows in %s", path)
	}
	log.Info("loaded %d samples (%d features, %d skipped) from %s",
		ds.Len(), len(ds.Features), ds.Skipped, path)
	return ds, nil
}

// ClassCounts returns the number of samples per label.
func (d *Dataset) ClassCounts() (neg, pos int) {
	for _, y := range d.Y {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}
