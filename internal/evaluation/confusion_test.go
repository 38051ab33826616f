package evaluation

import (
	"errors"
	"testing"
)

func TestBuildConfusionMatrix(t *testing.T) {
	labels := []string{"bad", "good"}
	observations := []Observation{
		{Actual: "bad", Predicted: "bad"},
		{Actual: "bad", Predicted: "good"},
		{Actual: "good", Predicted: "good"},
		{Actual: "good", Predicted: "good"},
		{Actual: "good", Predicted: "bad"},
	}

	matrix, err := BuildConfusionMatrix(observations, labels)
	if err != nil {
		t.Fatalf("BuildConfusionMatrix failed: %v", err)
	}

	want := [][]int{{1, 1}, {1, 2}}
	for i := range want {
		for j := range want[i] {
			if matrix.Counts[i][j] != want[i][j] {
				t.Errorf("cell (%d,%d) = %d, want %d", i, j, matrix.Counts[i][j], want[i][j])
			}
		}
	}

	if matrix.Total() != len(observations) {
		t.Errorf("Total() = %d, want %d", matrix.Total(), len(observations))
	}
}

func TestBuildConfusionMatrixTotalMatchesInput(t *testing.T) {
	labels := []string{"a", "b", "c"}
	observations := []Observation{}
	for i := 0; i < 50; i++ {
		observations = append(observations, Observation{
			Actual:    labels[i%3],
			Predicted: labels[(i*7)%3],
		})
	}

	matrix, err := BuildConfusionMatrix(observations, labels)
	if err != nil {
		t.Fatalf("BuildConfusionMatrix failed: %v", err)
	}
	if matrix.Total() != 50 {
		t.Errorf("Total() = %d, want 50", matrix.Total())
	}
}

func TestBuildConfusionMatrixUnknownActual(t *testing.T) {
	observations := []Observation{{Actual: "mystery", Predicted: "good"}}

	_, err := BuildConfusionMatrix(observations, []string{"bad", "good"})
	var invalidErr *InvalidLabelError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidLabelError, got %v", err)
	}
	if invalidErr.Label != "mystery" {
		t.Errorf("error label = %q, want %q", invalidErr.Label, "mystery")
	}
}

func TestBuildConfusionMatrixUnknownPredicted(t *testing.T) {
	observations := []Observation{{Actual: "good", Predicted: "mystery"}}

	_, err := BuildConfusionMatrix(observations, []string{"bad", "good"})
	var invalidErr *InvalidLabelError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidLabelError, got %v", err)
	}
}

func TestBuildConfusionMatrixRejectsDuplicateLabels(t *testing.T) {
	if _, err := BuildConfusionMatrix(nil, []string{"good", "good"}); err == nil {
		t.Fatal("expected error for duplicate labels")
	}
}

func TestBuildConfusionMatrixRejectsEmptyLabelSet(t *testing.T) {
	if _, err := BuildConfusionMatrix(nil, nil); err == nil {
		t.Fatal("expected error for empty label set")
	}
}

func TestConfusionMatrixAxisOrderFollowsLabels(t *testing.T) {
	observations := []Observation{{Actual: "z", Predicted: "a"}}

	matrix, err := BuildConfusionMatrix(observations, []string{"z", "a"})
	if err != nil {
		t.Fatalf("BuildConfusionMatrix failed: %v", err)
	}

	if matrix.Counts[0][1] != 1 {
		t.Errorf("expected count at (0,1) with labels [z a], got %v", matrix.Counts)
	}
	if matrix.Labels[0] != "z" || matrix.Labels[1] != "a" {
		t.Errorf("label ordering changed: %v", matrix.Labels)
	}
}

func TestRowAndColSums(t *testing.T) {
	observations := []Observation{
		{Actual: "bad", Predicted: "good"},
		{Actual: "bad", Predicted: "good"},
		{Actual: "good", Predicted: "good"},
	}

	matrix, err := BuildConfusionMatrix(observations, []string{"bad", "good"})
	if err != nil {
		t.Fatalf("BuildConfusionMatrix failed: %v", err)
	}

	if got := matrix.RowSum(0); got != 2 {
		t.Errorf("RowSum(0) = %d, want 2", got)
	}
	if got := matrix.ColSum(1); got != 3 {
		t.Errorf("ColSum(1) = %d, want 3", got)
	}
	if got := matrix.ColSum(0); got != 0 {
		t.Errorf("ColSum(0) = %d, want 0", got)
	}
}
