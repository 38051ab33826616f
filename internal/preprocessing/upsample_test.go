package preprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUpsamplerBalancesClasses(t *testing.T) {
	var X [][]decimal.Decimal
	var y []int
	for i := 0; i < 10; i++ {
		X = append(X, row(float64(i)))
		y = append(y, 0)
	}
	for i := 0; i < 3; i++ {
		X = append(X, row(float64(100 + i)))
		y = append(y, 1)
	}

	XOut, yOut, err := NewUpsampler(42).Balance(X, y)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	counts := make(map[int]int)
	for _, label := range yOut {
		counts[label]++
	}
	if counts[0] != 10 || counts[1] != 10 {
		t.Errorf("class counts after balancing = %v, want 10 each", counts)
	}
	if len(XOut) != len(yOut) {
		t.Errorf("feature/label lengths disagree: %d vs %d", len(XOut), len(yOut))
	}
}

func TestUpsamplerDuplicatesOnlyMinorityCases(t *testing.T) {
	X := [][]decimal.Decimal{
		row(1), row(2), row(3), row(4),
		row(99),
	}
	y := []int{0, 0, 0, 0, 1}

	XOut, yOut, err := NewUpsampler(7).Balance(X, y)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	for i, label := range yOut {
		if label == 1 && !XOut[i][0].Equal(decimal.NewFromInt(99)) {
			t.Errorf("minority duplicate row %d = %s, want 99", i, XOut[i][0])
		}
	}
}

func TestUpsamplerDeterministicForSeed(t *testing.T) {
	X := [][]decimal.Decimal{row(1), row(2), row(3), row(10), row(11)}
	y := []int{0, 0, 0, 1, 1}

	_, first, err := NewUpsampler(5).Balance(X, y)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	_, second, err := NewUpsampler(5).Balance(X, y)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different label order at %d", i)
		}
	}
}

func TestUpsamplerRejectsBadInput(t *testing.T) {
	if _, _, err := NewUpsampler(1).Balance(nil, nil); err == nil {
		t.Error("expected error for empty dataset")
	}
	if _, _, err := NewUpsampler(1).Balance([][]decimal.Decimal{row(1)}, nil); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
