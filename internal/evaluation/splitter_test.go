package evaluation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func syntheticDataset(perClass, nClasses int) ([][]decimal.Decimal, []int) {
	var X [][]decimal.Decimal
	var y []int
	for class := 0; class < nClasses; class++ {
		for i := 0; i < perClass; i++ {
			X = append(X, []decimal.Decimal{
				decimal.NewFromInt(int64(class)),
				decimal.NewFromInt(int64(i)),
			})
			y = append(y, class)
		}
	}
	return X, y
}

func TestSplitSizes(t *testing.T) {
	X, y := syntheticDataset(10, 2)

	splitter := NewTrainTestSplitter(0.25, 42)
	split, err := splitter.Split(X, y)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(split.XTest) != 5 {
		t.Errorf("test size = %d, want 5", len(split.XTest))
	}
	if len(split.XTrain) != 15 {
		t.Errorf("train size = %d, want 15", len(split.XTrain))
	}
	if len(split.XTrain) != len(split.YTrain) || len(split.XTest) != len(split.YTest) {
		t.Errorf("feature/label lengths disagree")
	}
}

func TestSplitDeterministicForSeed(t *testing.T) {
	X, y := syntheticDataset(10, 2)

	first, err := NewTrainTestSplitter(0.3, 7).Split(X, y)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	second, err := NewTrainTestSplitter(0.3, 7).Split(X, y)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for i := range first.YTest {
		if first.YTest[i] != second.YTest[i] {
			t.Fatalf("same seed produced different test sets at %d: %d vs %d",
				i, first.YTest[i], second.YTest[i])
		}
	}
}

func TestSplitRejectsBadInput(t *testing.T) {
	X, y := syntheticDataset(5, 2)

	if _, err := NewTrainTestSplitter(0.25, 1).Split(X, y[:len(y)-1]); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := NewTrainTestSplitter(0.25, 1).Split(nil, nil); err == nil {
		t.Error("expected error for empty dataset")
	}
	if _, err := NewTrainTestSplitter(1.5, 1).Split(X, y); err == nil {
		t.Error("expected error for test size outside (0,1)")
	}
}

func TestStratifiedSplitKeepsClassShares(t *testing.T) {
	X, y := syntheticDataset(20, 3)

	splitter := NewTrainTestSplitter(0.25, 42)
	split, err := splitter.StratifiedSplit(X, y)
	if err != nil {
		t.Fatalf("StratifiedSplit failed: %v", err)
	}

	testCounts := make(map[int]int)
	for _, label := range split.YTest {
		testCounts[label]++
	}
	for class := 0; class < 3; class++ {
		if testCounts[class] != 5 {
			t.Errorf("class %d test count = %d, want 5", class, testCounts[class])
		}
	}
}

func TestStratifiedSplitMinimumOneTestPerClass(t *testing.T) {
	// 3 samples per class with a tiny test share still puts one of each
	// class into the test set.
	X, y := syntheticDataset(3, 2)

	split, err := NewTrainTestSplitter(0.1, 42).StratifiedSplit(X, y)
	if err != nil {
		t.Fatalf("StratifiedSplit failed: %v", err)
	}

	seen := make(map[int]bool)
	for _, label := range split.YTest {
		seen[label] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("test set missing a class: %v", split.YTest)
	}
}

func TestKFoldSplitCoversAllIndices(t *testing.T) {
	folds, err := KFoldSplit(10, 3, true, 42)
	if err != nil {
		t.Fatalf("KFoldSplit failed: %v", err)
	}

	if len(folds) != 3 {
		t.Fatalf("got %d folds, want 3", len(folds))
	}
	if len(folds[2]) != 4 {
		t.Errorf("last fold size = %d, want 4 (absorbs remainder)", len(folds[2]))
	}

	seen := make(map[int]bool)
	for _, fold := range folds {
		for _, idx := range fold {
			if seen[idx] {
				t.Errorf("index %d appears in more than one fold", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != 10 {
		t.Errorf("folds cover %d indices, want 10", len(seen))
	}
}

func TestKFoldSplitRejectsBadFoldCount(t *testing.T) {
	if _, err := KFoldSplit(10, 1, false, 0); err == nil {
		t.Error("expected error for fewer than 2 folds")
	}
	if _, err := KFoldSplit(4, 5, false, 0); err == nil {
		t.Error("expected error for more folds than samples")
	}
}
