package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"boostlab/internal/data"
	"boostlab/internal/evaluation"
	"boostlab/internal/experiment"
	"boostlab/internal/models"
	"boostlab/internal/persistence"
	"boostlab/internal/preprocessing"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	godotenv.Load()

	dataFile := flag.String("data", "", "Path to training data CSV file (label column last)")
	algorithm := flag.String("algorithm", "forest", "Algorithm to use (tree|forest)")
	configFile := flag.String("config", "config/config.yaml", "Path to experiment configuration file")
	outputDir := flag.String("output", "models", "Output directory for trained models")
	preprocess := flag.String("preprocess", "minmax", "Preprocessing method (raw|minmax|standard)")
	runExperiments := flag.Bool("experiment", false, "Run the full experiment grid from the config file")
	maxDepth := flag.Int("max-depth", 10, "Max depth for tree/forest")
	minSplit := flag.Int("min-split", 2, "Minimum samples to split a node")
	nTrees := flag.Int("n-trees", 100, "Number of trees for the forest")
	testSize := flag.Float64("test-size", 0.25, "Test set size (0.0-1.0)")
	seed := flag.Int64("seed", 42, "Random seed for splits and sampling")
	upsample := flag.Bool("upsample", false, "Balance training classes by up-sampling minorities")
	cvFolds := flag.Int("cv-folds", 5, "Number of cross-validation folds (0 disables)")
	search := flag.Bool("search", false, "Grid-search hyperparameters before the final fit")
	nested := flag.Bool("nested", false, "Run a nested cross-validation generalization check")
	pruneTo := flag.Int("prune-to", 0, "Retrain on the top-N most important features (0 disables)")

	flag.Parse()

	if *dataFile == "" {
		fmt.Println("Usage:")
		fmt.Println("  Single run:      go run cmd/train/main.go -data data/iris.csv -algorithm forest")
		fmt.Println("  Full experiment: go run cmd/train/main.go -data data/credit.csv -experiment -config config/config.yaml")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Loading dataset...")
	ds, err := data.NewCSVReader(*dataFile).Load()
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	labels := ds.Encoder.ClassNames()
	fmt.Printf("Loaded %d samples, %d features, classes %v\n", len(ds.X), len(ds.Headers), labels)

	if err := ds.Validate(); err != nil {
		log.Fatalf("Data validation failed: %v", err)
	}

	if *runExperiments {
		runExperiment(*configFile, ds, *outputDir)
		return
	}

	X := ds.X
	var scaler *preprocessing.Scaler
	if *preprocess != "raw" {
		fmt.Printf("Applying %s scaling...\n", *preprocess)
		scaler = preprocessing.NewScaler(*preprocess)
		X, err = scaler.FitTransform(ds.X)
		if err != nil {
			log.Fatalf("Preprocessing failed: %v", err)
		}
	}

	fmt.Printf("Splitting data (test size %.0f%%)...\n", *testSize*100)
	splitter := evaluation.NewTrainTestSplitter(*testSize, *seed)
	split, err := splitter.StratifiedSplit(X, ds.Y)
	if err != nil {
		log.Fatalf("Failed to split data: %v", err)
	}

	if *upsample {
		fmt.Println("Up-sampling minority classes in the training set...")
		upsampler := preprocessing.NewUpsampler(*seed)
		split.XTrain, split.YTrain, err = upsampler.Balance(split.XTrain, split.YTrain)
		if err != nil {
			log.Fatalf("Up-sampling failed: %v", err)
		}
		fmt.Printf("Training set now %d samples\n", len(split.XTrain))
	}

	config := models.ModelConfig{
		Algorithm: *algorithm,
		MaxDepth:  *maxDepth,
		MinSplit:  *minSplit,
		NTrees:    *nTrees,
	}

	if *search {
		config = searchConfig(*algorithm, *cvFolds, *seed, split)
	}

	model, err := models.CreateModel(config)
	if err != nil {
		log.Fatalf("Failed to create model: %v", err)
	}

	fmt.Printf("Training %s...\n", model.GetName())
	start := time.Now()
	if err := model.Fit(split.XTrain, split.YTrain); err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	trainingTime := time.Since(start)
	fmt.Printf("Trained in %v\n", trainingTime)

	report := mustEvaluate(model, split, ds)

	if *cvFolds > 1 {
		fmt.Printf("Running %d-fold cross-validation...\n", *cvFolds)
		cv := evaluation.NewCrossValidator(*cvFolds)
		cv.Seed = *seed
		result, err := cv.CrossValidate(X, ds.Y, model)
		if err != nil {
			log.Fatalf("Cross-validation failed: %v", err)
		}
		fmt.Printf("CV accuracy: %.4f ± %.4f\n", result.Mean, result.Std)
	}

	printImportances(model, ds.Headers)

	var selected []int
	if *pruneTo > 0 {
		model, split, selected = pruneAndRetrain(model, X, ds, *pruneTo, *testSize, *seed)
		report = mustEvaluate(model, split, ds)
	}

	if *nested {
		fmt.Println("Running nested cross-validation...")
		ncv := evaluation.NewNestedCrossValidator(5, 3)
		ncv.Seed = *seed
		nestedResult, err := ncv.Evaluate(X, ds.Y, defaultGrid(*algorithm))
		if err != nil {
			log.Fatalf("Nested cross-validation failed: %v", err)
		}
		fmt.Printf("Nested CV accuracy: %.4f ± %.4f\n", nestedResult.Mean, nestedResult.Std)
	}

	saveBundle(model, scaler, ds, report, trainingTime, selected, *outputDir, *algorithm, *preprocess, *dataFile)
}

func runExperiment(configFile string, ds *data.Dataset, outputDir string) {
	fmt.Println("Running full experiment...")

	config, err := experiment.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load experiment config: %v", err)
	}

	results, err := experiment.NewRunner(config).RunAll(ds)
	if err != nil {
		log.Fatalf("Experiment failed: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	expDir := filepath.Join(outputDir, fmt.Sprintf("experiment_%s", timestamp))
	os.MkdirAll(expDir, 0755)

	resultsFile := filepath.Join(expDir, "experiment_results.csv")
	if err := experiment.ExportResults(results, resultsFile); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("Experiment results saved to: %s\n", resultsFile)
	fmt.Printf("Total experiments: %d\n", len(results))

	if len(results) > 0 {
		best := results[0]
		for _, result := range results[1:] {
			if result.Accuracy > best.Accuracy {
				best = result
			}
		}
		fmt.Printf("Best accuracy: %.4f (%s, %s, %s preprocessing)\n",
			best.Accuracy, best.Algorithm, best.Parameters, best.Preprocessing)
	}
}

func searchConfig(algorithm string, folds int, seed int64, split *evaluation.Split) models.ModelConfig {
	fmt.Println("Grid-searching hyperparameters...")
	if folds < 2 {
		folds = 5
	}

	search := evaluation.NewGridSearch(folds)
	search.CV.Seed = seed

	best, all, err := search.Run(split.XTrain, split.YTrain, defaultGrid(algorithm))
	if err != nil {
		log.Fatalf("Grid search failed: %v", err)
	}

	for _, result := range all {
		fmt.Printf("  depth=%-3d minsplit=%-3d trees=%-4d  %.4f ± %.4f\n",
			result.Config.MaxDepth, result.Config.MinSplit, result.Config.NTrees, result.CV.Mean, result.CV.Std)
	}
	fmt.Printf("Best: depth=%d minsplit=%d trees=%d (CV %.4f)\n",
		best.Config.MaxDepth, best.Config.MinSplit, best.Config.NTrees, best.CV.Mean)

	return best.Config
}

func mustEvaluate(model models.Model, split *evaluation.Split, ds *data.Dataset) *evaluation.Report {
	report, err := experiment.EvaluateOnSplit(model, split, ds.Encoder)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}
	fmt.Println("\nTest-set report:")
	fmt.Print(report.Format())
	return report
}

func printImportances(model models.Model, headers []string) {
	importances := model.FeatureImportances()
	if len(importances) == 0 {
		return
	}

	fmt.Println("\nFeature importances:")
	for _, idx := range preprocessing.RankFeatures(importances) {
		name := fmt.Sprintf("feature_%d", idx)
		if idx < len(headers) {
			name = headers[idx]
		}
		fmt.Printf("  %-24s %.4f\n", name, importances[idx])
	}
}

func pruneAndRetrain(model models.Model, X [][]decimal.Decimal, ds *data.Dataset, k int, testSize float64, seed int64) (models.Model, *evaluation.Split, []int) {
	keep := preprocessing.TopFeatures(model.FeatureImportances(), k)
	pruned, err := preprocessing.SelectColumns(X, keep)
	if err != nil {
		log.Fatalf("Feature pruning failed: %v", err)
	}

	kept := make([]string, len(keep))
	for i, idx := range keep {
		if idx < len(ds.Headers) {
			kept[i] = ds.Headers[idx]
		} else {
			kept[i] = fmt.Sprintf("feature_%d", idx)
		}
	}
	fmt.Printf("\nRetraining on top %d features: %v\n", len(keep), kept)
	ds.Headers = kept

	splitter := evaluation.NewTrainTestSplitter(testSize, seed)
	split, err := splitter.StratifiedSplit(pruned, ds.Y)
	if err != nil {
		log.Fatalf("Failed to split pruned data: %v", err)
	}

	retrained := models.CloneModel(model)
	if err := retrained.Fit(split.XTrain, split.YTrain); err != nil {
		log.Fatalf("Retraining failed: %v", err)
	}

	return retrained, split, keep
}

func defaultGrid(algorithm string) evaluation.ParamGrid {
	if algorithm == "tree" {
		return evaluation.ParamGrid{
			Algorithm: "tree",
			MaxDepth:  []int{3, 5, 10},
			MinSplit:  []int{2, 5},
		}
	}
	return evaluation.ParamGrid{
		Algorithm: "forest",
		NTrees:    []int{25, 50, 100},
		MaxDepth:  []int{5, 10},
	}
}

func saveBundle(
	model models.Model,
	scaler *preprocessing.Scaler,
	ds *data.Dataset,
	report *evaluation.Report,
	trainingTime time.Duration,
	selected []int,
	outputDir, algorithm, preprocess, dataFile string,
) {
	os.MkdirAll(outputDir, 0755)

	base := filepath.Base(dataFile)
	base = base[:len(base)-len(filepath.Ext(base))]
	timestamp := time.Now().Format("20060102_150405")
	modelPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s_%s_%s.model", algorithm, base, preprocess, timestamp))

	bundle := persistence.NewModelBundle(model)
	bundle.Scaler = scaler
	bundle.LabelEncoder = ds.Encoder
	bundle.Metadata.Dataset = dataFile
	bundle.Metadata.Features = ds.Headers
	bundle.Metadata.SelectedColumns = selected
	bundle.Metadata.Report = report
	bundle.Metadata.TrainingTime = trainingTime

	if err := bundle.Save(modelPath); err != nil {
		log.Printf("Failed to save model: %v", err)
		return
	}
	fmt.Printf("\nModel saved to: %s\n", modelPath)
}
