package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validate checks a dataset is usable for training: non-empty, feature rows
// of uniform width, labels aligned row for row, and at least two classes in
// the fitted encoder.
func (ds *Dataset) Validate() error {
	if len(ds.X) == 0 {
		return fmt.Errorf("dataset %q is empty", ds.Source)
	}
	if len(ds.X) != len(ds.Y) {
		return fmt.Errorf("dataset %q: %d feature rows but %d labels", ds.Source, len(ds.X), len(ds.Y))
	}

	width := len(ds.X[0])
	if width == 0 {
		return fmt.Errorf("dataset %q has no feature columns", ds.Source)
	}
	for i, row := range ds.X {
		if len(row) != width {
			return fmt.Errorf("dataset %q: row %d has %d features, expected %d", ds.Source, i, len(row), width)
		}
	}

	if ds.Encoder == nil || len(ds.Encoder.ClassNames()) < 2 {
		return fmt.Errorf("dataset %q needs at least 2 classes", ds.Source)
	}

	return nil
}

// Summary is the dataset profile the stats displays print: row count, class
// counts keyed by label name, and per-column value ranges.
type Summary struct {
	Samples int
	Classes map[string]int
	Columns []ColumnStats
}

type ColumnStats struct {
	Name string
	Min  decimal.Decimal
	Max  decimal.Decimal
	Mean decimal.Decimal
}

// Summarize profiles a feature matrix in this dataset's label space. Pass
// ds.X for the raw features, or a scaled/pruned matrix that still aligns row
// for row with the dataset's labels.
func (ds *Dataset) Summarize(X [][]decimal.Decimal) *Summary {
	summary := &Summary{
		Samples: len(X),
		Classes: make(map[string]int),
	}
	for _, label := range ds.Labels {
		summary.Classes[label]++
	}
	if len(X) == 0 {
		return summary
	}

	for j := range X[0] {
		stats := ColumnStats{Name: fmt.Sprintf("feature_%d", j), Min: X[0][j], Max: X[0][j]}
		if j < len(ds.Headers) {
			stats.Name = ds.Headers[j]
		}

		sum := decimal.Zero
		for i := range X {
			v := X[i][j]
			if v.LessThan(stats.Min) {
				stats.Min = v
			}
			if v.GreaterThan(stats.Max) {
				stats.Max = v
			}
			sum = sum.Add(v)
		}
		stats.Mean = sum.Div(decimal.NewFromInt(int64(len(X))))

		summary.Columns = append(summary.Columns, stats)
	}

	return summary
}
