package evaluation

import (
	"fmt"

	"boostlab/internal/models"

	"github.com/shopspring/decimal"
)

// ParamGrid enumerates the hyperparameter values to try for one algorithm.
// Empty dimensions fall back to the algorithm default.
type ParamGrid struct {
	Algorithm string
	MaxDepth  []int
	MinSplit  []int
	NTrees    []int
}

type SearchResult struct {
	Config models.ModelConfig
	CV     *CVResult
}

// GridSearch scores every hyperparameter combination with cross-validation
// and keeps the configuration with the best mean accuracy.
type GridSearch struct {
	CV *CrossValidator
}

func NewGridSearch(nFolds int) *GridSearch {
	return &GridSearch{CV: NewCrossValidator(nFolds)}
}

func (gs *GridSearch) Run(X [][]decimal.Decimal, y []int, grid ParamGrid) (*SearchResult, []SearchResult, error) {
	configs := grid.Expand()
	if len(configs) == 0 {
		return nil, nil, fmt.Errorf("empty parameter grid for algorithm %q", grid.Algorithm)
	}

	results := make([]SearchResult, 0, len(configs))
	var best *SearchResult

	for _, config := range configs {
		model, err := models.CreateModel(config)
		if err != nil {
			return nil, nil, err
		}

		cvResult, err := gs.CV.CrossValidate(X, y, model)
		if err != nil {
			return nil, nil, fmt.Errorf("search %+v: %w", config, err)
		}

		results = append(results, SearchResult{Config: config, CV: cvResult})
		last := &results[len(results)-1]
		if best == nil || last.CV.Mean > best.CV.Mean {
			best = last
		}
	}

	return best, results, nil
}

// Expand enumerates the cartesian product of the grid dimensions.
func (g ParamGrid) Expand() []models.ModelConfig {
	maxDepths := g.MaxDepth
	if len(maxDepths) == 0 {
		maxDepths = []int{0}
	}
	minSplits := g.MinSplit
	if len(minSplits) == 0 {
		minSplits = []int{0}
	}
	nTrees := g.NTrees
	if len(nTrees) == 0 || g.Algorithm != "forest" {
		nTrees = []int{0}
	}

	var configs []models.ModelConfig
	for _, depth := range maxDepths {
		for _, split := range minSplits {
			for _, trees := range nTrees {
				configs = append(configs, models.ModelConfig{
					Algorithm: g.Algorithm,
					MaxDepth:  depth,
					MinSplit:  split,
					NTrees:    trees,
				})
			}
		}
	}

	return configs
}
