package models

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRandomForestFitsSeparableData(t *testing.T) {
	X, y := stripedData(15, 3)

	forest := NewRandomForest(25, 5, 2)
	if err := forest.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if acc := accuracy(forest.Predict(X), y); acc < 0.9 {
		t.Errorf("training accuracy = %v, want >= 0.9 on separable data", acc)
	}
}

func TestRandomForestDeterministicForFixedTrees(t *testing.T) {
	// Per-tree seeds are fixed, so two fits of the same configuration
	// produce identical predictions.
	X, y := stripedData(10, 2)

	first := NewRandomForest(10, 5, 2)
	second := NewRandomForest(10, 5, 2)
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("first Fit failed: %v", err)
	}
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}

	p1 := first.Predict(X)
	p2 := second.Predict(X)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("prediction %d differs between identical fits: %d vs %d", i, p1[i], p2[i])
		}
	}
}

func TestRandomForestPredictProbaMatchesVotes(t *testing.T) {
	X, y := stripedData(10, 2)

	forest := NewRandomForest(20, 5, 2)
	if err := forest.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	proba := forest.PredictProba(X)
	predictions := forest.Predict(X)

	one := decimal.NewFromInt(1)
	for i, row := range proba {
		total := decimal.Zero
		for _, p := range row {
			total = total.Add(p)
		}
		if !total.Equal(one) {
			t.Errorf("row %d vote shares sum to %s, want 1", i, total)
		}

		decoded := ArgmaxClasses([][]decimal.Decimal{row}, forest.GetClasses())
		if decoded[0] != predictions[i] {
			t.Errorf("row %d argmax %d disagrees with Predict %d", i, decoded[0], predictions[i])
		}
	}
}

func TestRandomForestImportances(t *testing.T) {
	X, y := stripedData(15, 3)

	forest := NewRandomForest(25, 5, 2)
	if err := forest.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	importances := forest.FeatureImportances()
	if len(importances) != 2 {
		t.Fatalf("got %d importances, want 2", len(importances))
	}

	sum := 0.0
	for _, imp := range importances {
		sum += imp
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("importances sum to %v, want 1.0", sum)
	}
}

func TestRandomForestParallelMatchesSequential(t *testing.T) {
	X, y := stripedData(10, 2)

	parallel := NewRandomForest(10, 5, 2)
	sequential := NewRandomForest(10, 5, 2)
	sequential.Parallel = false

	if err := parallel.Fit(X, y); err != nil {
		t.Fatalf("parallel Fit failed: %v", err)
	}
	if err := sequential.Fit(X, y); err != nil {
		t.Fatalf("sequential Fit failed: %v", err)
	}

	p1 := parallel.Predict(X)
	p2 := sequential.Predict(X)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("prediction %d differs: parallel %d vs sequential %d", i, p1[i], p2[i])
		}
	}
}

func TestCreateModel(t *testing.T) {
	tree, err := CreateModel(ModelConfig{Algorithm: "tree", MaxDepth: 5, MinSplit: 2})
	if err != nil {
		t.Fatalf("CreateModel(tree) failed: %v", err)
	}
	if tree.GetType() != "DecisionTree" {
		t.Errorf("tree type = %q, want DecisionTree", tree.GetType())
	}

	forest, err := CreateModel(ModelConfig{Algorithm: "forest", NTrees: 10})
	if err != nil {
		t.Fatalf("CreateModel(forest) failed: %v", err)
	}
	if forest.GetType() != "RandomForest" {
		t.Errorf("forest type = %q, want RandomForest", forest.GetType())
	}

	if _, err := CreateModel(ModelConfig{Algorithm: "svm"}); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
