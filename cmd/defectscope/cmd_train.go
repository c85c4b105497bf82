package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"defectscope/internal/pipeline"
)

var (
	trainData   string
	trainLabel  string
	trainSeed   int64
	trainReport string
)

// trainCmd runs the full modeling pipeline on a CSV dataset
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and evaluate defect classifiers on a CSV dataset",
	Long: `Loads a delimited dataset with a binary label column, performs a
stratified train/test split, standardizes features, fits a random forest,
logistic regression, linear SVM and KNN, cross-validates each, and
grid-searches the random forest. The report is printed as Markdown or
written to a file with --report.

Example:
  defectscope train --data defects.csv --label DefectStatus --seed 42`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	tc := cfg.Train
	if trainData != "" {
		tc.DataPath = trainData
	}
	if trainLabel != "" {
		tc.LabelColumn = trainLabel
	}
	if cmd.Flags().Changed("seed") {
		tc.Seed = trainSeed
	}
	if tc.DataPath == "" {
		return fmt.Errorf("no dataset given: pass --data or set train.data_path in %s", configPath())
	}
	if err := tc.Validate(); err != nil {
		return err
	}

	logger.Info("Starting training run",
		zap.String("data", tc.DataPath),
		zap.Int64("seed", tc.Seed))

	report, err := pipeline.Run(tc)
	if err != nil {
		return err
	}

	md := report.Markdown()
	if trainReport == "" {
		fmt.Println(md)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(trainReport), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(trainReport, []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report written to %s (best model: %s, test accuracy %.4f)\n",
		trainReport, report.Best().Name, report.Best().TestAcc)
	return nil
}

func init() {
	trainCmd.Flags().StringVar(&trainData, "data", "", "Path to the CSV dataset")
	trainCmd.Flags().StringVar(&trainLabel, "label", "", "Label column name (default from config)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "Random seed for split, training and CV")
	trainCmd.Flags().StringVar(&trainReport, "report", "", "Write the Markdown report to this file instead of stdout")
}
