package experiment

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"time"

	"boostlab/internal/data"
	"boostlab/internal/evaluation"
	"boostlab/internal/models"
	"boostlab/internal/preprocessing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Experiment struct {
		Preprocessing   []string  `yaml:"preprocessing"`
		TrainTestSplits []float64 `yaml:"train_test_splits"`
		Seed            int64     `yaml:"seed"`
		Upsample        bool      `yaml:"upsample"`
		CrossValidation struct {
			Folds int `yaml:"folds"`
		} `yaml:"cross_validation"`
		NestedValidation struct {
			OuterFolds int `yaml:"outer_folds"`
			InnerFolds int `yaml:"inner_folds"`
		} `yaml:"nested_validation"`
		Algorithms struct {
			DecisionTree struct {
				MaxDepth        []int `yaml:"max_depth"`
				MinSamplesSplit []int `yaml:"min_samples_split"`
			} `yaml:"decision_tree"`
			RandomForest struct {
				NTrees   []int `yaml:"n_trees"`
				MaxDepth []int `yaml:"max_depth"`
			} `yaml:"random_forest"`
		} `yaml:"algorithms"`
	} `yaml:"experiment"`
}

func LoadConfig(filename string) (*Config, error) {
	config := &Config{}

	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Experiment.Seed == 0 {
		config.Experiment.Seed = 42
	}

	return config, nil
}

type Runner struct {
	Config *Config
}

func NewRunner(config *Config) *Runner {
	return &Runner{Config: config}
}

// Result is one evaluated configuration. Metric fields mirror the
// evaluation report; NestedMean/NestedStd are filled once per algorithm when
// nested validation is enabled.
type Result struct {
	Dataset        string
	Algorithm      string
	Parameters     string
	Preprocessing  string
	TrainTestSplit string
	Accuracy       float64
	MeanPrecision  float64
	MeanRecall     float64
	MeanF1         float64
	CVMean         float64
	CVStd          float64
	NestedMean     float64
	NestedStd      float64
	TrainingTimeMs int64
}

// RunAll evaluates every grid point of every algorithm under every
// preprocessing variant and split ratio in the config.
func (r *Runner) RunAll(ds *data.Dataset) ([]Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	var results []Result

	for _, prep := range r.Config.Experiment.Preprocessing {
		XProcessed, err := r.preprocess(ds.X, prep)
		if err != nil {
			return nil, err
		}

		for _, testSize := range r.Config.Experiment.TrainTestSplits {
			for _, grid := range r.grids() {
				batch, err := r.runGrid(ds, XProcessed, prep, testSize, grid)
				if err != nil {
					return nil, err
				}
				results = append(results, batch...)
			}
		}
	}

	return results, nil
}

func (r *Runner) preprocess(X [][]decimal.Decimal, prep string) ([][]decimal.Decimal, error) {
	scaler := preprocessing.NewScaler(prep)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, fmt.Errorf("preprocessing %q: %w", prep, err)
	}
	return scaled, nil
}

func (r *Runner) grids() []evaluation.ParamGrid {
	alg := r.Config.Experiment.Algorithms

	var grids []evaluation.ParamGrid
	if len(alg.DecisionTree.MaxDepth) > 0 {
		grids = append(grids, evaluation.ParamGrid{
			Algorithm: "tree",
			MaxDepth:  alg.DecisionTree.MaxDepth,
			MinSplit:  alg.DecisionTree.MinSamplesSplit,
		})
	}
	if len(alg.RandomForest.NTrees) > 0 {
		grids = append(grids, evaluation.ParamGrid{
			Algorithm: "forest",
			MaxDepth:  alg.RandomForest.MaxDepth,
			NTrees:    alg.RandomForest.NTrees,
		})
	}

	return grids
}

func (r *Runner) runGrid(ds *data.Dataset, X [][]decimal.Decimal, prep string, testSize float64, grid evaluation.ParamGrid) ([]Result, error) {
	splitter := evaluation.NewTrainTestSplitter(testSize, r.Config.Experiment.Seed)
	split, err := splitter.StratifiedSplit(X, ds.Y)
	if err != nil {
		return nil, err
	}

	XTrain, yTrain := split.XTrain, split.YTrain
	if r.Config.Experiment.Upsample {
		upsampler := preprocessing.NewUpsampler(r.Config.Experiment.Seed)
		XTrain, yTrain, err = upsampler.Balance(XTrain, yTrain)
		if err != nil {
			return nil, err
		}
	}

	nested, err := r.nestedResult(X, ds.Y, grid)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, config := range grid.Expand() {
		result, err := r.evaluateConfig(ds, config, prep, testSize, XTrain, yTrain, split, X)
		if err != nil {
			return nil, err
		}
		if nested != nil {
			result.NestedMean = nested.Mean
			result.NestedStd = nested.Std
		}
		results = append(results, result)
	}

	return results, nil
}

func (r *Runner) nestedResult(X [][]decimal.Decimal, y []int, grid evaluation.ParamGrid) (*evaluation.NestedResult, error) {
	cfg := r.Config.Experiment.NestedValidation
	if cfg.OuterFolds < 2 || cfg.InnerFolds < 2 {
		return nil, nil
	}

	ncv := evaluation.NewNestedCrossValidator(cfg.OuterFolds, cfg.InnerFolds)
	ncv.Seed = r.Config.Experiment.Seed
	nested, err := ncv.Evaluate(X, y, grid)
	if err != nil {
		return nil, fmt.Errorf("nested validation (%s): %w", grid.Algorithm, err)
	}
	return nested, nil
}

func (r *Runner) evaluateConfig(
	ds *data.Dataset,
	config models.ModelConfig,
	prep string,
	testSize float64,
	XTrain [][]decimal.Decimal,
	yTrain []int,
	split *evaluation.Split,
	XFull [][]decimal.Decimal,
) (Result, error) {

	result := Result{
		Dataset:        ds.Source,
		Algorithm:      config.Algorithm,
		Parameters:     fmt.Sprintf("depth=%d split=%d trees=%d", config.MaxDepth, config.MinSplit, config.NTrees),
		Preprocessing:  prep,
		TrainTestSplit: fmt.Sprintf("%.0f-%.0f", (1-testSize)*100, testSize*100),
	}

	model, err := models.CreateModel(config)
	if err != nil {
		return result, err
	}

	start := time.Now()
	if err := model.Fit(XTrain, yTrain); err != nil {
		return result, err
	}
	result.TrainingTimeMs = time.Since(start).Milliseconds()

	report, err := EvaluateOnSplit(model, split, ds.Encoder)
	if err != nil {
		return result, err
	}

	result.Accuracy = report.Accuracy
	result.MeanPrecision, result.MeanRecall, result.MeanF1 = meanPerLabel(report)

	if folds := r.Config.Experiment.CrossValidation.Folds; folds > 1 {
		cv := evaluation.NewCrossValidator(folds)
		cv.Seed = r.Config.Experiment.Seed
		cvResult, err := cv.CrossValidate(XFull, ds.Y, model)
		if err != nil {
			return result, err
		}
		result.CVMean = cvResult.Mean
		result.CVStd = cvResult.Std
	}

	return result, nil
}

// EvaluateOnSplit runs the argmax decode and the confusion-matrix evaluator
// over a fitted model's test-set predictions, in the dataset's label space.
func EvaluateOnSplit(model models.Model, split *evaluation.Split, encoder *preprocessing.LabelEncoder) (*evaluation.Report, error) {
	proba := model.PredictProba(split.XTest)
	predicted := models.ArgmaxClasses(proba, model.GetClasses())

	predictedNames, err := encoder.InverseTransform(predicted)
	if err != nil {
		return nil, err
	}
	actualNames, err := encoder.InverseTransform(split.YTest)
	if err != nil {
		return nil, err
	}

	observations := make([]evaluation.Observation, len(actualNames))
	for i := range actualNames {
		observations[i] = evaluation.Observation{Actual: actualNames[i], Predicted: predictedNames[i]}
	}

	_, report, err := evaluation.Evaluate(observations, encoder.ClassNames())
	return report, err
}

// meanPerLabel averages the applicable per-label metrics; labels whose
// metric is NaN for this run are left out of that metric's average.
func meanPerLabel(report *evaluation.Report) (precision, recall, f1 float64) {
	var pSum, rSum, fSum float64
	var pN, rN, fN int

	for _, lm := range report.PerLabel {
		if !math.IsNaN(lm.Precision) {
			pSum += lm.Precision
			pN++
		}
		if !math.IsNaN(lm.Recall) {
			rSum += lm.Recall
			rN++
		}
		if !math.IsNaN(lm.F1Score) {
			fSum += lm.F1Score
			fN++
		}
	}

	if pN > 0 {
		precision = pSum / float64(pN)
	}
	if rN > 0 {
		recall = rSum / float64(rN)
	}
	if fN > 0 {
		f1 = fSum / float64(fN)
	}
	return precision, recall, f1
}

func ExportResults(results []Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Dataset", "Algorithm", "Parameters", "Preprocessing", "TrainTestSplit",
		"Accuracy", "MeanPrecision", "MeanRecall", "MeanF1",
		"CVMean", "CVStd", "NestedMean", "NestedStd", "TrainingTimeMs",
	})

	for _, result := range results {
		writer.Write([]string{
			result.Dataset,
			result.Algorithm,
			result.Parameters,
			result.Preprocessing,
			result.TrainTestSplit,
			fmt.Sprintf("%.4f", result.Accuracy),
			fmt.Sprintf("%.4f", result.MeanPrecision),
			fmt.Sprintf("%.4f", result.MeanRecall),
			fmt.Sprintf("%.4f", result.MeanF1),
			fmt.Sprintf("%.4f", result.CVMean),
			fmt.Sprintf("%.4f", result.CVStd),
			fmt.Sprintf("%.4f", result.NestedMean),
			fmt.Sprintf("%.4f", result.NestedStd),
			fmt.Sprintf("%d", result.TrainingTimeMs),
		})
	}

	return nil
}
