package evaluation

import (
	"fmt"

	"boostlab/internal/models"

	"github.com/shopspring/decimal"
)

// NestedCrossValidator estimates generalization performance of the whole
// model-selection procedure, not of one fixed configuration: each outer fold
// runs a full inner grid search on its training part, fits the winning
// configuration, and scores it on the held-out part the search never saw.
type NestedCrossValidator struct {
	OuterFolds int
	InnerFolds int
	Seed       int64
}

func NewNestedCrossValidator(outerFolds, innerFolds int) *NestedCrossValidator {
	return &NestedCrossValidator{
		OuterFolds: outerFolds,
		InnerFolds: innerFolds,
		Seed:       42,
	}
}

// NestedResult pairs each outer-fold accuracy with the configuration the
// inner search picked for that fold.
type NestedResult struct {
	Scores []float64
	Chosen []models.ModelConfig
	Mean   float64
	Std    float64
}

func (ncv *NestedCrossValidator) Evaluate(X [][]decimal.Decimal, y []int, grid ParamGrid) (*NestedResult, error) {
	folds, err := KFoldSplit(len(X), ncv.OuterFolds, true, ncv.Seed)
	if err != nil {
		return nil, err
	}

	result := &NestedResult{
		Scores: make([]float64, ncv.OuterFolds),
		Chosen: make([]models.ModelConfig, ncv.OuterFolds),
	}

	for f, testIndices := range folds {
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

		search := NewGridSearch(ncv.InnerFolds)
		search.CV.Seed = ncv.Seed + int64(f)

		best, _, err := search.Run(split.XTrain, split.YTrain, grid)
		if err != nil {
			return nil, fmt.Errorf("outer fold %d inner search failed: %w", f, err)
		}

		model, err := models.CreateModel(best.Config)
		if err != nil {
			return nil, err
		}
		if err := model.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, fmt.Errorf("outer fold %d fit failed: %w", f, err)
		}

		predictions := model.Predict(split.XTest)
		correct := 0
		for i, pred := range predictions {
			if pred == split.YTest[i] {
				correct++
			}
		}

		result.Scores[f] = float64(correct) / float64(len(split.YTest))
		result.Chosen[f] = best.Config
	}

	result.Mean, result.Std = meanStd(result.Scores)
	return result, nil
}
