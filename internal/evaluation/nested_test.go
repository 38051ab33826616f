package evaluation

import (
	"testing"
)

func TestNestedCrossValidation(t *testing.T) {
	X, y := syntheticDataset(10, 3)

	grid := ParamGrid{
		Algorithm: "tree",
		MaxDepth:  []int{3, 5},
		MinSplit:  []int{2},
	}

	ncv := NewNestedCrossValidator(3, 3)
	result, err := ncv.Evaluate(X, y, grid)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(result.Scores) != 3 {
		t.Fatalf("got %d outer scores, want 3", len(result.Scores))
	}
	if len(result.Chosen) != 3 {
		t.Fatalf("got %d chosen configs, want 3", len(result.Chosen))
	}
	for f, config := range result.Chosen {
		if config.Algorithm != "tree" {
			t.Errorf("outer fold %d chose algorithm %q, want tree", f, config.Algorithm)
		}
	}
	if !almostEqual(result.Mean, 1.0) {
		t.Errorf("mean outer accuracy = %v, want 1.0 on separable data", result.Mean)
	}
}

func TestNestedCrossValidationDeterministic(t *testing.T) {
	X, y := syntheticDataset(8, 2)

	grid := ParamGrid{Algorithm: "tree", MaxDepth: []int{3}, MinSplit: []int{2}}

	first, err := NewNestedCrossValidator(4, 2).Evaluate(X, y, grid)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := NewNestedCrossValidator(4, 2).Evaluate(X, y, grid)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for i := range first.Scores {
		if !almostEqual(first.Scores[i], second.Scores[i]) {
			t.Errorf("outer fold %d differs between runs: %v vs %v",
				i, first.Scores[i], second.Scores[i])
		}
	}
}

func TestNestedCrossValidationRejectsTooManyFolds(t *testing.T) {
	X, y := syntheticDataset(2, 2)

	grid := ParamGrid{Algorithm: "tree", MaxDepth: []int{3}}
	if _, err := NewNestedCrossValidator(10, 2).Evaluate(X, y, grid); err == nil {
		t.Error("expected error for more outer folds than samples")
	}
}
