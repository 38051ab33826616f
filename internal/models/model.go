package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal
	FeatureImportances() []float64
	GetType() string
	GetName() string
	GetParams() map[string]any
	GetClasses() []int
	Reset()
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetType() string {
	return bm.Name
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

// ExtractClasses collects the distinct class codes in y in ascending order.
// The ordering is stable so probability columns and class codes line up the
// same way between runs.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

// ArgmaxClasses decodes per-case probability vectors into class codes by
// picking the column with the highest probability. Columns of proba must
// follow the ordering of classes; ties resolve to the earlier class.
func ArgmaxClasses(proba [][]decimal.Decimal, classes []int) []int {
	predictions := make([]int, len(proba))

	for i, row := range proba {
		best := 0
		for j := 1; j < len(row) && j < len(classes); j++ {
			if row[j].GreaterThan(row[best]) {
				best = j
			}
		}
		predictions[i] = classes[best]
	}

	return predictions
}
