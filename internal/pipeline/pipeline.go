// Package pipeline runs the full defect-classification workflow: load the
// dataset, summarize it, scale, split, fit every model family, cross-validate
// them, and grid-search the random forest.
package pipeline

import (
	"fmt"
	"time"

	"defectscope/internal/config"
	"defectscope/internal/dataset"
	"defectscope/internal/logging"
	"defectscope/internal/model"
)

// ModelReport holds the held-out metrics of one model family.
type ModelReport struct {
	Name      string
	TrainAcc  float64
	TestAcc   float64
	Precision float64
	Recall    float64
	F1        float64
	Confusion model.ConfusionMatrix
	CVMean    float64
	CVStd     float64
}

// Report is the outcome of a full pipeline run.
type Report struct {
	DataPath  string
	Seed      int64
	Summary   dataset.Summary
	TrainSize int
	TestSize  int
	Models    []ModelReport
	Grid      model.GridResult
	Elapsed   time.Duration
}

// Run executes the workflow described by cfg. All randomness derives from
// cfg.Seed, so two runs over the same file produce the same report.
func Run(cfg config.TrainConfig) (*Report, error) {
	log := logging.Get(logging.CategoryModel)
	start := time.Now()

	ds, err := dataset.LoadCSV(cfg.DataPath, cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	summary := dataset.Summarize(ds)
	log.Info("dataset: %d samples, %.1f%% positive", summary.Samples, 100*summary.PositiveShare())

	split, err := dataset.StratifiedSplit(ds, cfg.TestRatio, cfg.Seed)
	if err != nil {
		return nil, err
	}

	scaler := dataset.NewStandardScaler()
	XTrain := scaler.FitTransform(split.XTrain)
	XTest := scaler.Transform(split.XTest)

	report := &Report{
		DataPath:  cfg.DataPath,
		Seed:      cfg.Seed,
		Summary:   summary,
		TrainSize: len(split.YTrain),
		TestSize:  len(split.YTest),
	}

	families := []struct {
		name    string
		factory func() model.Classifier
	}{
		{"random_forest", func() model.Classifier {
			return model.NewRandomForest(model.WithNEstimators(100), model.WithForestSeed(cfg.Seed))
		}},
		{"logistic_regression", func() model.Classifier {
			m := model.NewLogisticRegression()
			m.Seed = cfg.Seed
			return m
		}},
		{"linear_svc", func() model.Classifier {
			m := model.NewLinearSVC()
			m.Seed = cfg.Seed
			return m
		}},
		{"knn", func() model.Classifier {
			return model.NewKNN(5)
		}},
	}

	for _, fam := range families {
		mr, err := evaluate(fam.name, fam.factory, XTrain, split.YTrain, XTest, split.YTest, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", fam.name, err)
		}
		report.Models = append(report.Models, mr)
		log.Info("%s: test accuracy %.4f, cv %.4f±%.4f", mr.Name, mr.TestAcc, mr.CVMean, mr.CVStd)
	}

	grid, err := model.GridSearchForest(model.DefaultForestGrid(), XTrain, split.YTrain, cfg.CVFolds, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("grid search failed: %w", err)
	}
	report.Grid = grid
	log.Info("grid search: best %+v with cv accuracy %.4f over %d points",
		grid.Best, grid.BestScore, grid.Evaluated)

	report.Elapsed = time.Since(start)
	return report, nil
}

func evaluate(name string, factory func() model.Classifier, XTrain [][]float64, yTrain []int, XTest [][]float64, yTest []int, cfg config.TrainConfig) (ModelReport, error) {
	clf := factory()
	if err := clf.Fit(XTrain, yTrain); err != nil {
		return ModelReport{}, err
	}
	predTrain := clf.Predict(XTrain)
	predTest := clf.Predict(XTest)

	cv, err := model.CrossValidate(factory, XTrain, yTrain, cfg.CVFolds, cfg.Seed)
	if err != nil {
		return ModelReport{}, err
	}

	return ModelReport{
		Name:      name,
		TrainAcc:  model.Accuracy(yTrain, predTrain),
		TestAcc:   model.Accuracy(yTest, predTest),
		Precision: model.Precision(yTest, predTest),
		Recall:    model.Recall(yTest, predTest),
		F1:        model.F1(yTest, predTest),
		Confusion: model.Confusion(yTest, predTest),
		CVMean:    cv.Mean(),
		CVStd:     cv.Std(),
	}, nil
}

// Best returns the model report with the highest test accuracy.
func (r *Report) Best() ModelReport {
	var best ModelReport
	for _, m := range r.Models {
		if m.TestAcc > best.TestAcc {
			best = m
		}
	}
	return best
}
