package persistence

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"boostlab/internal/models"
	"boostlab/internal/preprocessing"

	"github.com/shopspring/decimal"
)

func fittedTree(t *testing.T) (*models.DecisionTree, [][]decimal.Decimal, []int) {
	t.Helper()

	var X [][]decimal.Decimal
	var y []int
	for class := 0; class < 2; class++ {
		for i := 0; i < 5; i++ {
			X = append(X, []decimal.Decimal{decimal.NewFromInt(int64(class))})
			y = append(y, class)
		}
	}

	tree := models.NewDecisionTree(3, 2)
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return tree, X, y
}

func TestBundleSaveLoadRoundTrip(t *testing.T) {
	tree, X, y := fittedTree(t)

	encoder := preprocessing.NewLabelEncoder()
	encoder.Fit([]string{"no", "yes"})

	scaler := preprocessing.NewScaler("minmax")
	if _, err := scaler.FitTransform(X); err != nil {
		t.Fatalf("scaler fit failed: %v", err)
	}

	bundle := NewModelBundle(tree)
	bundle.Scaler = scaler
	bundle.LabelEncoder = encoder
	bundle.Metadata.Dataset = "synthetic"
	bundle.Metadata.Features = []string{"f0"}
	bundle.Metadata.SelectedColumns = []int{0}

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := bundle.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadModelBundle(path)
	if err != nil {
		t.Fatalf("LoadModelBundle failed: %v", err)
	}

	if loaded.Metadata.ModelName != "DecisionTree" {
		t.Errorf("model name = %q, want DecisionTree", loaded.Metadata.ModelName)
	}
	if loaded.Metadata.Dataset != "synthetic" {
		t.Errorf("dataset = %q, want synthetic", loaded.Metadata.Dataset)
	}
	if !reflect.DeepEqual(loaded.LabelEncoder.ClassNames(), []string{"no", "yes"}) {
		t.Errorf("encoder names = %v, want [no yes]", loaded.LabelEncoder.ClassNames())
	}
	if !reflect.DeepEqual(loaded.Metadata.SelectedColumns, []int{0}) {
		t.Errorf("selected columns = %v, want [0]", loaded.Metadata.SelectedColumns)
	}

	predictions := loaded.Model.Predict(X)
	for i, pred := range predictions {
		if pred != y[i] {
			t.Errorf("loaded model predicted %d for sample %d, want %d", pred, i, y[i])
		}
	}
}

func TestLoadModelBundleMissingFile(t *testing.T) {
	if _, err := LoadModelBundle(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Error("expected error for missing bundle file")
	}
}

func TestSaveMetadata(t *testing.T) {
	tree, _, _ := fittedTree(t)

	bundle := NewModelBundle(tree)
	bundle.Metadata.Dataset = "synthetic"

	path := filepath.Join(t.TempDir(), "model.txt")
	if err := bundle.SaveMetadata(path); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading metadata file: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "Model: DecisionTree") {
		t.Errorf("metadata missing model name:\n%s", content)
	}
	if !strings.Contains(content, "Dataset: synthetic") {
		t.Errorf("metadata missing dataset:\n%s", content)
	}
}
