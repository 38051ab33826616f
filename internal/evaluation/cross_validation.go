package evaluation

import (
	"fmt"
	"math"
	"sync"

	"boostlab/internal/models"

	"github.com/shopspring/decimal"
)

type CrossValidator struct {
	NFolds     int
	Shuffle    bool
	Seed       int64
	Parallel   bool
	MaxWorkers int
}

func NewCrossValidator(nFolds int) *CrossValidator {
	return &CrossValidator{
		NFolds:     nFolds,
		Shuffle:    true,
		Seed:       42,
		Parallel:   true,
		MaxWorkers: 4,
	}
}

// CVResult carries the per-fold accuracies of one cross-validation run.
// Folds share no state, so parallel and serial execution produce the same
// scores for the same seed.
type CVResult struct {
	Scores []float64
	Mean   float64
	Std    float64
}

func (cv *CrossValidator) CrossValidate(X [][]decimal.Decimal, y []int, model models.Model) (*CVResult, error) {
	if !cv.Parallel {
		return cv.CrossValidateSerial(X, y, model)
	}

	folds, err := KFoldSplit(len(X), cv.NFolds, cv.Shuffle, cv.Seed)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, cv.NFolds)
	errors := make([]error, cv.NFolds)

	workers := cv.MaxWorkers
	if workers > cv.NFolds {
		workers = cv.NFolds
	}

	type foldJob struct {
		index       int
		testIndices []int
	}

	jobs := make(chan foldJob, cv.NFolds)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				score, err := cv.evaluateFold(X, y, model, job.testIndices)
				scores[job.index] = score
				errors[job.index] = err
			}
		}()
	}

	for i, fold := range folds {
		jobs <- foldJob{index: i, testIndices: fold}
	}
	close(jobs)

	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i, err)
		}
	}

	mean, std := meanStd(scores)
	return &CVResult{Scores: scores, Mean: mean, Std: std}, nil
}

func (cv *CrossValidator) CrossValidateSerial(X [][]decimal.Decimal, y []int, model models.Model) (*CVResult, error) {
	folds, err := KFoldSplit(len(X), cv.NFolds, cv.Shuffle, cv.Seed)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, cv.NFolds)
	for i, testIndices := range folds {
		score, err := cv.evaluateFold(X, y, model, testIndices)
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i, err)
		}
		scores[i] = score
	}

	mean, std := meanStd(scores)
	return &CVResult{Scores: scores, Mean: mean, Std: std}, nil
}

func (cv *CrossValidator) evaluateFold(X [][]decimal.Decimal, y []int, model models.Model, testIndices []int) (float64, error) {
	testSet := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	trainIndices := make([]int, 0, len(X)-len(testIndices))
	for i := 0; i < len(X); i++ {
		if !testSet[i] {
			trainIndices = append(trainIndices, i)
		}
	}

	split := gather(X, y, trainIndices, testIndices)

	foldModel := models.CloneModel(model)
	if err := foldModel.Fit(split.XTrain, split.YTrain); err != nil {
		return 0, err
	}

	predictions := foldModel.Predict(split.XTest)

	correct := 0
	for i, pred := range predictions {
		if pred == split.YTest[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(split.YTest)), nil
}

func meanStd(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(len(scores))

	if len(scores) > 1 {
		variance := 0.0
		for _, s := range scores {
			diff := s - mean
			variance += diff * diff
		}
		variance /= float64(len(scores) - 1)
		std = math.Sqrt(variance)
	}

	return mean, std
}
