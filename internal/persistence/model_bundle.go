package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"boostlab/internal/evaluation"
	"boostlab/internal/models"
	"boostlab/internal/preprocessing"
)

// ModelBundle is everything needed to reuse a trained model later: the model
// itself, the fitted scaler and label encoder, and the evaluation report the
// model earned at training time.
type ModelBundle struct {
	Model        models.Model
	Scaler       *preprocessing.Scaler
	LabelEncoder *preprocessing.LabelEncoder
	Metadata     BundleMetadata
	CreatedAt    time.Time
}

type BundleMetadata struct {
	ModelName    string
	Dataset      string
	Report       *evaluation.Report
	TrainingTime time.Duration
	Features     []string
	// SelectedColumns holds the original column indices the model was
	// trained on when feature pruning was applied; empty means all columns.
	// Scalers in the bundle are fitted on the full column set, so callers
	// must transform first and then project onto these columns.
	SelectedColumns []int
	Parameters      map[string]any
}

func NewModelBundle(model models.Model) *ModelBundle {
	return &ModelBundle{
		Model:     model,
		CreatedAt: time.Now(),
		Metadata: BundleMetadata{
			ModelName:  model.GetName(),
			Parameters: model.GetParams(),
		},
	}
}

func registerModels() {
	gob.Register(&models.DecisionTree{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.TreeNode{})
}

func (mb *ModelBundle) Save(filename string) error {
	registerModels()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(mb); err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	return nil
}

func LoadModelBundle(filename string) (*ModelBundle, error) {
	registerModels()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var bundle ModelBundle
	if err := gob.NewDecoder(file).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	return &bundle, nil
}

func (mb *ModelBundle) SaveMetadata(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Model: %s\n", mb.Metadata.ModelName)
	fmt.Fprintf(file, "Dataset: %s\n", mb.Metadata.Dataset)
	fmt.Fprintf(file, "Created: %s\n", mb.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(file, "Training Time: %v\n", mb.Metadata.TrainingTime)
	if mb.Metadata.Report != nil {
		fmt.Fprintf(file, "\n%s", mb.Metadata.Report.Format())
	}

	return nil
}
