package commander

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"boostlab/internal/data"
	"boostlab/internal/evaluation"
	"boostlab/internal/experiment"
	"boostlab/internal/jobs"
	"boostlab/internal/models"
	"boostlab/internal/persistence"
	"boostlab/internal/preprocessing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

// Commander is the interactive shell: load a dataset, scale it, fit a tree
// or forest, inspect the confusion-matrix report, search hyperparameters,
// rank and prune features, and save the result as a bundle.
type Commander struct {
	dataset    *data.Dataset
	XProcessed [][]decimal.Decimal
	scaler     *preprocessing.Scaler
	split      *evaluation.Split
	model      models.Model
	selected   []int
	testSize   float64
	seed       int64
	jobManager *jobs.Manager

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func NewCommander() *Commander {
	return &Commander{
		testSize:   0.25,
		seed:       42,
		jobManager: jobs.NewManager(),
		green:      color.New(color.FgGreen).SprintFunc(),
		red:        color.New(color.FgRed).SprintFunc(),
		yellow:     color.New(color.FgYellow).SprintFunc(),
		cyan:       color.New(color.FgCyan).SprintFunc(),
	}
}

func (c *Commander) Start() {
	fmt.Println(c.cyan("boostlab interactive shell, type 'help' for commands"))
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(c.yellow("\nboostlab> "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := strings.ToLower(parts[0])
		if command == "exit" || command == "quit" {
			return
		}

		c.Execute(command, parts[1:])
	}
}

func (c *Commander) Execute(command string, args []string) {
	switch command {
	case "help", "h":
		c.showHelp()
	case "load":
		c.requireArgs(args, 1, "load <file.csv>", c.loadDataset)
	case "stats":
		c.showStats()
	case "prep":
		c.requireArgs(args, 1, "prep <raw|minmax|standard>", c.applyScaling)
	case "split":
		c.requireArgs(args, 1, "split <test-size>", c.applySplit)
	case "train":
		if len(args) == 0 {
			fmt.Println(c.red("Usage: train <tree|forest> [params...]"))
			return
		}
		c.trainModel(args[0], args[1:])
	case "evaluate", "eval":
		c.evaluateModel()
	case "cv":
		c.crossValidate(args)
	case "search":
		c.requireArgs(args, 1, "search <tree|forest>", c.gridSearch)
	case "nested":
		c.nestedValidate(args)
	case "importance":
		c.showImportances()
	case "prune":
		c.requireArgs(args, 1, "prune <k>", c.pruneFeatures)
	case "save":
		c.requireArgs(args, 1, "save <file>", c.saveBundle)
	case "open":
		c.requireArgs(args, 1, "open <file>", c.openBundle)
	case "jobs":
		c.listJobs()
	case "logs":
		c.requireArgs(args, 1, "logs <job-id>", c.showJobLogs)
	default:
		fmt.Println(c.red("Unknown command:"), command)
	}
}

func (c *Commander) requireArgs(args []string, n int, usage string, fn func(string)) {
	if len(args) < n {
		fmt.Println(c.red("Usage: " + usage))
		return
	}
	fn(args[0])
}

func (c *Commander) showHelp() {
	fmt.Println(c.cyan("Commands:"))
	fmt.Println("  load <file.csv>           load a dataset (label column last)")
	fmt.Println("  stats                     dataset summary")
	fmt.Println("  prep <raw|minmax|standard> scale features")
	fmt.Println("  split <test-size>         make a stratified train/test split")
	fmt.Println("  train tree [depth] [minsplit]")
	fmt.Println("  train forest [ntrees] [depth]")
	fmt.Println("  evaluate                  confusion matrix + per-label report")
	fmt.Println("  cv [folds]                cross-validate the current model")
	fmt.Println("  search <tree|forest>      grid search with cross-validation")
	fmt.Println("  nested [outer] [inner]    nested cross-validation check")
	fmt.Println("  importance                ranked feature importances")
	fmt.Println("  prune <k>                 keep top-k features and retrain")
	fmt.Println("  save <file> / open <file> model bundle persistence")
	fmt.Println("  jobs / logs <id>          background job inspection")
	fmt.Println("  exit")
}

func (c *Commander) loadDataset(filename string) {
	ds, err := data.NewCSVReader(filename).Load()
	if err != nil {
		fmt.Println(c.red("Load failed:"), err)
		return
	}

	c.dataset = ds
	c.XProcessed = ds.X
	c.scaler = nil
	c.split = nil
	c.model = nil
	c.selected = nil

	fmt.Printf("%s %d samples, %d features, %d classes %v\n",
		c.green("Loaded"), len(ds.X), len(ds.Headers), len(ds.Encoder.ClassNames()), ds.Encoder.ClassNames())
}

func (c *Commander) showStats() {
	if !c.hasData() {
		return
	}

	summary := c.dataset.Summarize(c.XProcessed)
	fmt.Printf("Samples: %d  Features: %d  Classes: %d\n", summary.Samples, len(summary.Columns), len(summary.Classes))
	fmt.Printf("Class distribution: %v\n", summary.Classes)
	for _, col := range summary.Columns {
		fmt.Printf("  %-24s min=%s max=%s mean=%s\n", col.Name, col.Min, col.Max, col.Mean.Round(3))
	}
}

func (c *Commander) applyScaling(method string) {
	if !c.hasData() {
		return
	}

	if method == "raw" {
		c.XProcessed = c.dataset.X
		c.scaler = nil
		c.split = nil
		fmt.Println(c.green("Using raw features"))
		return
	}

	scaler := preprocessing.NewScaler(method)
	scaled, err := scaler.FitTransform(c.dataset.X)
	if err != nil {
		fmt.Println(c.red("Scaling failed:"), err)
		return
	}

	c.XProcessed = scaled
	c.scaler = scaler
	c.split = nil
	fmt.Printf("%s %s scaling applied\n", c.green("OK"), method)
}

func (c *Commander) applySplit(arg string) {
	if !c.hasData() {
		return
	}

	testSize, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		fmt.Println(c.red("Invalid test size:"), arg)
		return
	}

	splitter := evaluation.NewTrainTestSplitter(testSize, c.seed)
	split, err := splitter.StratifiedSplit(c.XProcessed, c.dataset.Y)
	if err != nil {
		fmt.Println(c.red("Split failed:"), err)
		return
	}

	c.testSize = testSize
	c.split = split
	fmt.Printf("%s %d train / %d test\n", c.green("Split"), len(split.XTrain), len(split.XTest))
}

func (c *Commander) ensureSplit() bool {
	if c.split != nil {
		return true
	}
	if !c.hasData() {
		return false
	}

	splitter := evaluation.NewTrainTestSplitter(c.testSize, c.seed)
	split, err := splitter.StratifiedSplit(c.XProcessed, c.dataset.Y)
	if err != nil {
		fmt.Println(c.red("Split failed:"), err)
		return false
	}
	c.split = split
	return true
}

func (c *Commander) trainModel(algorithm string, params []string) {
	if !c.ensureSplit() {
		return
	}

	config := models.DefaultConfig(algorithm)
	switch algorithm {
	case "tree":
		if len(params) > 0 {
			config.MaxDepth, _ = strconv.Atoi(params[0])
		}
		if len(params) > 1 {
			config.MinSplit, _ = strconv.Atoi(params[1])
		}
	case "forest":
		if len(params) > 0 {
			config.NTrees, _ = strconv.Atoi(params[0])
		}
		if len(params) > 1 {
			config.MaxDepth, _ = strconv.Atoi(params[1])
		}
	default:
		fmt.Println(c.red("Unknown algorithm:"), algorithm)
		return
	}

	model, err := models.CreateModel(config)
	if err != nil {
		fmt.Println(c.red("Model creation failed:"), err)
		return
	}

	job := c.jobManager.CreateJob("train", fmt.Sprintf("train %s on %s", algorithm, c.dataset.Source))
	job.SetStatus(jobs.JobRunning)
	job.AddLog(fmt.Sprintf("training %s, %d samples", model.GetName(), len(c.split.XTrain)))

	start := time.Now()
	if err := model.Fit(c.split.XTrain, c.split.YTrain); err != nil {
		job.SetError(err)
		fmt.Println(c.red("Training failed:"), err)
		return
	}

	elapsed := time.Since(start)
	job.AddLog(fmt.Sprintf("trained in %v", elapsed))
	job.SetStatus(jobs.JobCompleted)

	c.model = model
	fmt.Printf("%s %s trained in %v (job %s)\n", c.green("Done:"), model.GetName(), elapsed, job.ID)
	c.evaluateModel()
}

func (c *Commander) evaluateModel() {
	if !c.hasModel() || c.split == nil {
		return
	}

	report, err := experiment.EvaluateOnSplit(c.model, c.split, c.dataset.Encoder)
	if err != nil {
		fmt.Println(c.red("Evaluation failed:"), err)
		return
	}

	matrix, err := c.confusionMatrix()
	if err == nil {
		fmt.Println(c.cyan("Confusion matrix (rows = actual):"))
		fmt.Print(matrix.String())
	}
	fmt.Print(report.Format())
}

func (c *Commander) confusionMatrix() (*evaluation.ConfusionMatrix, error) {
	predicted := models.ArgmaxClasses(c.model.PredictProba(c.split.XTest), c.model.GetClasses())

	predictedNames, err := c.dataset.Encoder.InverseTransform(predicted)
	if err != nil {
		return nil, err
	}
	actualNames, err := c.dataset.Encoder.InverseTransform(c.split.YTest)
	if err != nil {
		return nil, err
	}

	observations := make([]evaluation.Observation, len(actualNames))
	for i := range actualNames {
		observations[i] = evaluation.Observation{Actual: actualNames[i], Predicted: predictedNames[i]}
	}

	return evaluation.BuildConfusionMatrix(observations, c.dataset.Encoder.ClassNames())
}

func (c *Commander) crossValidate(args []string) {
	if !c.hasModel() {
		return
	}

	folds := 5
	if len(args) > 0 {
		folds, _ = strconv.Atoi(args[0])
	}

	cv := evaluation.NewCrossValidator(folds)
	cv.Seed = c.seed
	result, err := cv.CrossValidate(c.XProcessed, c.dataset.Y, c.model)
	if err != nil {
		fmt.Println(c.red("Cross-validation failed:"), err)
		return
	}

	fmt.Printf("%s %.4f ± %.4f over %d folds %v\n", c.green("CV accuracy:"), result.Mean, result.Std, folds, result.Scores)
}

func (c *Commander) gridSearch(algorithm string) {
	if !c.hasData() {
		return
	}

	grid := defaultGrid(algorithm)
	if grid.Algorithm == "" {
		fmt.Println(c.red("Unknown algorithm:"), algorithm)
		return
	}

	search := evaluation.NewGridSearch(5)
	search.CV.Seed = c.seed

	best, all, err := search.Run(c.XProcessed, c.dataset.Y, grid)
	if err != nil {
		fmt.Println(c.red("Search failed:"), err)
		return
	}

	for _, result := range all {
		fmt.Printf("  depth=%-3d minsplit=%-3d trees=%-4d  %.4f ± %.4f\n",
			result.Config.MaxDepth, result.Config.MinSplit, result.Config.NTrees, result.CV.Mean, result.CV.Std)
	}
	fmt.Printf("%s depth=%d minsplit=%d trees=%d (%.4f)\n",
		c.green("Best:"), best.Config.MaxDepth, best.Config.MinSplit, best.Config.NTrees, best.CV.Mean)

	model, err := models.CreateModel(best.Config)
	if err == nil && c.ensureSplit() {
		if err := model.Fit(c.split.XTrain, c.split.YTrain); err == nil {
			c.model = model
			fmt.Println(c.green("Best configuration fitted as current model"))
		}
	}
}

func (c *Commander) nestedValidate(args []string) {
	if !c.hasData() {
		return
	}

	outer, inner := 5, 3
	if len(args) > 0 {
		outer, _ = strconv.Atoi(args[0])
	}
	if len(args) > 1 {
		inner, _ = strconv.Atoi(args[1])
	}

	algorithm := "forest"
	if c.model != nil && c.model.GetType() == "DecisionTree" {
		algorithm = "tree"
	}

	ncv := evaluation.NewNestedCrossValidator(outer, inner)
	ncv.Seed = c.seed
	result, err := ncv.Evaluate(c.XProcessed, c.dataset.Y, defaultGrid(algorithm))
	if err != nil {
		fmt.Println(c.red("Nested validation failed:"), err)
		return
	}

	fmt.Printf("%s %.4f ± %.4f\n", c.green("Nested CV accuracy:"), result.Mean, result.Std)
	for i, score := range result.Scores {
		cfg := result.Chosen[i]
		fmt.Printf("  fold %d: %.4f (depth=%d trees=%d)\n", i, score, cfg.MaxDepth, cfg.NTrees)
	}
}

func (c *Commander) showImportances() {
	if !c.hasModel() {
		return
	}

	importances := c.model.FeatureImportances()
	if len(importances) == 0 {
		fmt.Println(c.yellow("Model has no feature importances"))
		return
	}

	fmt.Println(c.cyan("Feature importances:"))
	for _, idx := range preprocessing.RankFeatures(importances) {
		name := fmt.Sprintf("feature_%d", idx)
		if idx < len(c.dataset.Headers) {
			name = c.dataset.Headers[idx]
		}
		fmt.Printf("  %-24s %.4f\n", name, importances[idx])
	}
}

func (c *Commander) pruneFeatures(arg string) {
	if !c.hasModel() {
		return
	}

	k, err := strconv.Atoi(arg)
	if err != nil || k < 1 {
		fmt.Println(c.red("Invalid feature count:"), arg)
		return
	}

	keep := preprocessing.TopFeatures(c.model.FeatureImportances(), k)
	pruned, err := preprocessing.SelectColumns(c.XProcessed, keep)
	if err != nil {
		fmt.Println(c.red("Pruning failed:"), err)
		return
	}

	kept := make([]string, len(keep))
	for i, idx := range keep {
		if idx < len(c.dataset.Headers) {
			kept[i] = c.dataset.Headers[idx]
		} else {
			kept[i] = fmt.Sprintf("feature_%d", idx)
		}
	}
	fmt.Printf("%s keeping %v\n", c.green("Pruned:"), kept)

	if c.selected == nil {
		c.selected = keep
	} else {
		// Successive prunes index into the already-pruned matrix; map them
		// back to the original columns.
		composed := make([]int, len(keep))
		for i, idx := range keep {
			composed[i] = c.selected[idx]
		}
		c.selected = composed
	}

	c.XProcessed = pruned
	c.dataset.Headers = kept
	c.split = nil

	if c.ensureSplit() {
		model := models.CloneModel(c.model)
		if err := model.Fit(c.split.XTrain, c.split.YTrain); err != nil {
			fmt.Println(c.red("Retrain failed:"), err)
			return
		}
		c.model = model
		c.evaluateModel()
	}
}

func (c *Commander) saveBundle(filename string) {
	if !c.hasModel() {
		return
	}

	// A model may come from 'open' with no dataset in the session; the
	// bundle then carries the model alone.
	bundle := persistence.NewModelBundle(c.model)
	if c.dataset != nil {
		bundle.Scaler = c.scaler
		bundle.LabelEncoder = c.dataset.Encoder
		bundle.Metadata.Dataset = c.dataset.Source
		bundle.Metadata.Features = c.dataset.Headers
		bundle.Metadata.SelectedColumns = c.selected

		if c.split != nil {
			if report, err := experiment.EvaluateOnSplit(c.model, c.split, c.dataset.Encoder); err == nil {
				bundle.Metadata.Report = report
			}
		}
	}

	if err := bundle.Save(filename); err != nil {
		fmt.Println(c.red("Save failed:"), err)
		return
	}
	fmt.Printf("%s %s\n", c.green("Saved"), filename)
}

func (c *Commander) openBundle(filename string) {
	bundle, err := persistence.LoadModelBundle(filename)
	if err != nil {
		fmt.Println(c.red("Open failed:"), err)
		return
	}

	c.model = bundle.Model
	fmt.Printf("%s %s (trained on %s)\n", c.green("Loaded"), bundle.Metadata.ModelName, bundle.Metadata.Dataset)
	if bundle.Metadata.Report != nil {
		fmt.Print(bundle.Metadata.Report.Format())
	}
}

func (c *Commander) listJobs() {
	jobList := c.jobManager.ListJobs()
	if len(jobList) == 0 {
		fmt.Println(c.yellow("No jobs"))
		return
	}
	for _, job := range jobList {
		fmt.Printf("  %-24s %-10s %s\n", job.ID, job.GetStatus(), job.Description)
	}
}

func (c *Commander) showJobLogs(jobID string) {
	job, exists := c.jobManager.GetJob(jobID)
	if !exists {
		fmt.Println(c.red("Job not found:"), jobID)
		return
	}
	for _, line := range job.GetLogs() {
		fmt.Println(" ", line)
	}
}

func (c *Commander) hasData() bool {
	if c.dataset == nil {
		fmt.Println(c.red("No dataset loaded, use 'load <file.csv>' first"))
		return false
	}
	return true
}

func (c *Commander) hasModel() bool {
	if c.model == nil {
		fmt.Println(c.red("No trained model, use 'train' first"))
		return false
	}
	return true
}

func defaultGrid(algorithm string) evaluation.ParamGrid {
	switch algorithm {
	case "tree":
		return evaluation.ParamGrid{
			Algorithm: "tree",
			MaxDepth:  []int{3, 5, 10},
			MinSplit:  []int{2, 5},
		}
	case "forest":
		return evaluation.ParamGrid{
			Algorithm: "forest",
			NTrees:    []int{25, 50, 100},
			MaxDepth:  []int{5, 10},
		}
	default:
		return evaluation.ParamGrid{}
	}
}
