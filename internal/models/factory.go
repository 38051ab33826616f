package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm string
	MaxDepth  int
	MinSplit  int
	NTrees    int
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "tree":
		if config.MaxDepth <= 0 {
			config.MaxDepth = 10
		}
		if config.MinSplit <= 0 {
			config.MinSplit = 2
		}
		return NewDecisionTree(config.MaxDepth, config.MinSplit), nil

	case "forest":
		if config.NTrees <= 0 {
			config.NTrees = 100
		}
		if config.MaxDepth <= 0 {
			config.MaxDepth = 10
		}
		if config.MinSplit <= 0 {
			config.MinSplit = 2
		}
		return NewRandomForest(config.NTrees, config.MaxDepth, config.MinSplit), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{Algorithm: algorithm}

	switch algorithm {
	case "tree":
		config.MaxDepth = 10
		config.MinSplit = 2
	case "forest":
		config.NTrees = 100
		config.MaxDepth = 10
		config.MinSplit = 2
	}

	return config
}

// CloneModel builds a fresh, unfitted model with the same hyperparameters.
// Cross-validation and grid search fit one clone per fold so the caller's
// model is never mutated.
func CloneModel(model Model) Model {
	params := model.GetParams()

	switch model.GetType() {
	case "DecisionTree":
		return NewDecisionTree(intParam(params, "max_depth"), intParam(params, "min_samples_split"))
	case "RandomForest":
		return NewRandomForest(intParam(params, "n_trees"), intParam(params, "max_depth"), intParam(params, "min_samples_split"))
	default:
		model.Reset()
		return model
	}
}

func intParam(params map[string]any, key string) int {
	if v, ok := params[key].(int); ok {
		return v
	}
	return 0
}
