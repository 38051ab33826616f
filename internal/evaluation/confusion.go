package evaluation

import (
	"errors"
	"fmt"
)

// Observation is one evaluated case: the ground-truth label and the label
// the model predicted for it. Both must belong to the declared label set.
type Observation struct {
	Actual    string
	Predicted string
}

// InvalidLabelError reports an observation whose actual or predicted value
// is not part of the declared label set. The data must be fixed upstream;
// the evaluator never guesses a placement for unknown labels.
type InvalidLabelError struct {
	Label string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("label %q is not in the declared label set", e.Label)
}

// ErrEmptyInput is returned when metrics are requested for a matrix with no
// observations. Accuracy is undefined on an empty input, so this is an error
// rather than a silent NaN.
var ErrEmptyInput = errors.New("no observations to evaluate")

// ConfusionMatrix tabulates actual vs. predicted label counts. Rows are
// indexed by actual label, columns by predicted label, both in the order of
// the label set the matrix was built with.
type ConfusionMatrix struct {
	Labels []string
	Counts [][]int
}

// BuildConfusionMatrix counts (actual, predicted) pairs into a fresh
// |labels| x |labels| matrix. The labels slice fixes the axis order on both
// dimensions. Observations referencing a label outside the set fail with
// *InvalidLabelError.
func BuildConfusionMatrix(observations []Observation, labels []string) (*ConfusionMatrix, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("label set is empty")
	}

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		if _, dup := index[label]; dup {
			return nil, fmt.Errorf("duplicate label %q in label set", label)
		}
		index[label] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}

	for _, obs := range observations {
		row, ok := index[obs.Actual]
		if !ok {
			return nil, &InvalidLabelError{Label: obs.Actual}
		}
		col, ok := index[obs.Predicted]
		if !ok {
			return nil, &InvalidLabelError{Label: obs.Predicted}
		}
		counts[row][col]++
	}

	matrix := &ConfusionMatrix{
		Labels: make([]string, len(labels)),
		Counts: counts,
	}
	copy(matrix.Labels, labels)

	return matrix, nil
}

// Total returns the number of observations counted into the matrix.
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm.Counts {
		for _, count := range row {
			total += count
		}
	}
	return total
}

// RowSum is the number of observations whose actual label is labels[i].
func (cm *ConfusionMatrix) RowSum(i int) int {
	sum := 0
	for _, count := range cm.Counts[i] {
		sum += count
	}
	return sum
}

// ColSum is the number of observations predicted as labels[j].
func (cm *ConfusionMatrix) ColSum(j int) int {
	sum := 0
	for _, row := range cm.Counts {
		sum += row[j]
	}
	return sum
}

func (cm *ConfusionMatrix) String() string {
	width := 0
	for _, label := range cm.Labels {
		if len(label) > width {
			width = len(label)
		}
	}
	if width < 6 {
		width = 6
	}

	result := fmt.Sprintf("%*s", width+2, "")
	for _, label := range cm.Labels {
		result += fmt.Sprintf(" %*s", width, label)
	}
	result += "\n"

	for i, label := range cm.Labels {
		result += fmt.Sprintf("%*s |", width, label)
		for j := range cm.Labels {
			result += fmt.Sprintf(" %*d", width, cm.Counts[i][j])
		}
		result += "\n"
	}

	return result
}
