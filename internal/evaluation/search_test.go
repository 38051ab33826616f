package evaluation

import (
	"testing"

	"boostlab/internal/models"
)

func TestParamGridExpand(t *testing.T) {
	grid := ParamGrid{
		Algorithm: "tree",
		MaxDepth:  []int{3, 5},
		MinSplit:  []int{2, 5, 10},
	}

	configs := grid.Expand()
	if len(configs) != 6 {
		t.Fatalf("got %d configs, want 6", len(configs))
	}
	for _, config := range configs {
		if config.Algorithm != "tree" {
			t.Errorf("config algorithm = %q, want tree", config.Algorithm)
		}
		if config.NTrees != 0 {
			t.Errorf("tree grid produced NTrees = %d, want 0", config.NTrees)
		}
	}
}

func TestParamGridExpandForestTrees(t *testing.T) {
	grid := ParamGrid{
		Algorithm: "forest",
		MaxDepth:  []int{5},
		NTrees:    []int{10, 25},
	}

	configs := grid.Expand()
	if len(configs) != 2 {
		t.Fatalf("got %d configs, want 2", len(configs))
	}
	if configs[0].NTrees != 10 || configs[1].NTrees != 25 {
		t.Errorf("NTrees dimension not expanded: %+v", configs)
	}
}

func TestGridSearchPicksBestConfig(t *testing.T) {
	X, y := syntheticDataset(10, 3)

	// Depth 1 cannot separate three classes with one binary split; depth 3
	// can, so the search must land on the deeper configuration.
	grid := ParamGrid{
		Algorithm: "tree",
		MaxDepth:  []int{1, 3},
		MinSplit:  []int{2},
	}

	search := NewGridSearch(5)
	best, all, err := search.Run(X, y, grid)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("got %d results, want 2", len(all))
	}
	if best.Config.MaxDepth != 3 {
		t.Errorf("best MaxDepth = %d, want 3 (means: %v, %v)",
			best.Config.MaxDepth, all[0].CV.Mean, all[1].CV.Mean)
	}
	if !almostEqual(best.CV.Mean, 1.0) {
		t.Errorf("best mean = %v, want 1.0 on separable data", best.CV.Mean)
	}
}

func TestGridSearchRejectsUnknownAlgorithm(t *testing.T) {
	X, y := syntheticDataset(6, 2)

	grid := ParamGrid{Algorithm: "perceptron", MaxDepth: []int{3}}
	if _, _, err := NewGridSearch(3).Run(X, y, grid); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestCloneKeepsHyperparameters(t *testing.T) {
	original := models.NewDecisionTree(7, 4)
	clone := models.CloneModel(original)

	tree, ok := clone.(*models.DecisionTree)
	if !ok {
		t.Fatalf("clone is %T, want *models.DecisionTree", clone)
	}
	if tree.MaxDepth != 7 || tree.MinSamplesSplit != 4 {
		t.Errorf("clone params = depth %d, min split %d; want 7, 4",
			tree.MaxDepth, tree.MinSamplesSplit)
	}
	if tree == original {
		t.Error("clone is the same instance as the original")
	}
}
