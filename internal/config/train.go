package config

import "fmt"

// TrainConfig configures the modeling pipeline.
type TrainConfig struct {
	// DataPath points at the delimited dataset.
	DataPath string `yaml:"data_path,omitempty"`

	// LabelColumn names the binary outcome column.
	LabelColumn string `yaml:"label_column"`

	// TestRatio is the held-out share of the stratified split.
	TestRatio float64 `yaml:"test_ratio"`

	// CVFolds is the number of stratified cross-validation folds.
	CVFolds int `yaml:"cv_folds"`

	// Seed drives every random choice in the pipeline.
	Seed int64 `yaml:"seed"`
}

// DefaultTrainConfig mirrors the notebook's setup: 80/20 stratified split,
// 5-fold cross-validation.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		LabelColumn: "DefectStatus",
		TestRatio:   0.2,
		CVFolds:     5,
		Seed:        42,
	}
}

// Validate checks the pipeline settings.
func (t *TrainConfig) Validate() error {
	if t.LabelColumn == "" {
		return fmt.Errorf("train label_column must not be empty")
	}
	if t.TestRatio <= 0 || t.TestRatio >= 1 {
		return fmt.Errorf("train test_ratio must be in (0,1), got %v", t.TestRatio)
	}
	if t.CVFolds < 2 {
		return fmt.Errorf("train cv_folds must be at least 2, got %d", t.CVFolds)
	}
	return nil
}
