package evaluation

import (
	"fmt"
	"math"
	"strings"
)

// LabelMetrics holds the per-label scores derived from one confusion matrix.
//
// Precision for a label is the correctly classified share of its actual cases
// (the matrix row); Recall is the correctly classified share of the cases
// predicted as the label (the matrix column). A label with no actual cases has
// NaN precision, a label never predicted has NaN recall, and F1 is NaN when
// precision and recall cannot be combined. NaN marks the metric as
// inapplicable for the run; it is deliberately not zero-filled.
type LabelMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// Report is the read-only result of evaluating one observation set. PerLabel
// is ordered exactly like the label set the confusion matrix was built with,
// so reports from repeated runs line up field for field.
type Report struct {
	Accuracy        float64        `json:"accuracy"`
	PerLabel        []LabelMetrics `json:"per_label"`
	NumObservations int            `json:"num_observations"`
}

// DisplayDecimals is the fixed rounding applied when metrics are formatted
// for display. Stored values keep full float64 precision.
const DisplayDecimals = 3

// ComputeMetrics derives accuracy and per-label precision/recall/F1 from a
// confusion matrix. A matrix with zero observations fails with ErrEmptyInput.
// The matrix is not modified; computing metrics twice yields identical reports.
func ComputeMetrics(cm *ConfusionMatrix) (*Report, error) {
	total := cm.Total()
	if total == 0 {
		return nil, ErrEmptyInput
	}

	diagonal := 0
	for i := range cm.Labels {
		diagonal += cm.Counts[i][i]
	}

	report := &Report{
		Accuracy:        float64(diagonal) / float64(total),
		PerLabel:        make([]LabelMetrics, len(cm.Labels)),
		NumObservations: total,
	}

	for i, label := range cm.Labels {
		correct := cm.Counts[i][i]
		rowSum := cm.RowSum(i)
		colSum := cm.ColSum(i)

		precision := math.NaN()
		if rowSum > 0 {
			precision = float64(correct) / float64(rowSum)
		}

		recall := math.NaN()
		if colSum > 0 {
			recall = float64(correct) / float64(colSum)
		}

		f1 := math.NaN()
		if !math.IsNaN(precision) && !math.IsNaN(recall) && precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		report.PerLabel[i] = LabelMetrics{
			Label:     label,
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   rowSum,
		}
	}

	return report, nil
}

// Evaluate builds the confusion matrix for the observations and derives the
// metrics report from it in one call.
func Evaluate(observations []Observation, labels []string) (*ConfusionMatrix, *Report, error) {
	matrix, err := BuildConfusionMatrix(observations, labels)
	if err != nil {
		return nil, nil, err
	}

	report, err := ComputeMetrics(matrix)
	if err != nil {
		return nil, nil, err
	}

	return matrix, report, nil
}

// Round truncates a metric to the fixed display precision. NaN passes
// through unchanged so inapplicable metrics stay visible as NaN.
func Round(value float64) float64 {
	if math.IsNaN(value) {
		return value
	}
	shift := math.Pow(10, DisplayDecimals)
	return math.Round(value*shift) / shift
}

// Format renders the report as a plain table. Formatting only; the stored
// numbers are not altered.
func (r *Report) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Accuracy: %s (%d observations)\n\n", formatMetric(r.Accuracy), r.NumObservations)

	width := len("Label")
	for _, lm := range r.PerLabel {
		if len(lm.Label) > width {
			width = len(lm.Label)
		}
	}

	fmt.Fprintf(&b, "%-*s %10s %10s %10s %8s\n", width, "Label", "Precision", "Recall", "F1", "Support")
	for _, lm := range r.PerLabel {
		fmt.Fprintf(&b, "%-*s %10s %10s %10s %8d\n",
			width, lm.Label,
			formatMetric(lm.Precision),
			formatMetric(lm.Recall),
			formatMetric(lm.F1Score),
			lm.Support)
	}

	return b.String()
}

func formatMetric(value float64) string {
	if math.IsNaN(value) {
		return "NaN"
	}
	return fmt.Sprintf("%.*f", DisplayDecimals, value)
}
