package preprocessing

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLabelEncoderFirstAppearanceOrder(t *testing.T) {
	encoder := NewLabelEncoder()
	codes, err := encoder.FitTransform([]string{"versicolor", "setosa", "versicolor", "virginica", "setosa"})
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if !reflect.DeepEqual(codes, []int{0, 1, 0, 2, 1}) {
		t.Errorf("codes = %v, want [0 1 0 2 1]", codes)
	}
	if !reflect.DeepEqual(encoder.ClassNames(), []string{"versicolor", "setosa", "virginica"}) {
		t.Errorf("ClassNames = %v, want first-appearance order", encoder.ClassNames())
	}
}

func TestLabelEncoderDeterministic(t *testing.T) {
	labels := []string{"c", "a", "b", "a", "c", "b", "b"}

	first := NewLabelEncoder()
	second := NewLabelEncoder()
	c1, err := first.FitTransform(labels)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	c2, err := second.FitTransform(labels)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if !reflect.DeepEqual(c1, c2) {
		t.Errorf("same input produced different encodings: %v vs %v", c1, c2)
	}
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	encoder := NewLabelEncoder()
	encoder.Fit([]string{"a", "b"})

	if _, err := encoder.Transform([]string{"a", "ghost"}); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestLabelEncoderRequiresFit(t *testing.T) {
	encoder := NewLabelEncoder()

	if _, err := encoder.Transform([]string{"a"}); err == nil {
		t.Error("expected error for transform before fit")
	}
	if _, err := encoder.InverseTransform([]int{0}); err == nil {
		t.Error("expected error for inverse transform before fit")
	}
}

func TestLabelEncoderInverseRoundTrip(t *testing.T) {
	labels := []string{"good", "bad", "good", "good", "bad"}

	encoder := NewLabelEncoder()
	codes, err := encoder.FitTransform(labels)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	decoded, err := encoder.InverseTransform(codes)
	if err != nil {
		t.Fatalf("InverseTransform failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, labels) {
		t.Errorf("round trip = %v, want %v", decoded, labels)
	}

	if _, err := encoder.InverseTransform([]int{99}); err == nil {
		t.Error("expected error for out-of-range code")
	}
}

func TestLabelEncoderSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encoder.gob")

	encoder := NewLabelEncoder()
	encoder.Fit([]string{"x", "y", "z"})
	if err := encoder.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewLabelEncoder()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(loaded.ClassNames(), encoder.ClassNames()) {
		t.Errorf("loaded names = %v, want %v", loaded.ClassNames(), encoder.ClassNames())
	}
	codes, err := loaded.Transform([]string{"z", "x"})
	if err != nil {
		t.Fatalf("Transform on loaded encoder failed: %v", err)
	}
	if !reflect.DeepEqual(codes, []int{2, 0}) {
		t.Errorf("codes = %v, want [2 0]", codes)
	}
}
