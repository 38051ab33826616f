package preprocessing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RankFeatures orders feature indices by descending importance. Ties keep
// the lower index first so rankings are reproducible.
func RankFeatures(importances []float64) []int {
	ranked := make([]int, len(importances))
	for i := range ranked {
		ranked[i] = i
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return importances[ranked[a]] > importances[ranked[b]]
	})

	return ranked
}

// SelectColumns projects the feature matrix onto the given column indices,
// in the given order. This is the pruning step: rank by importance, keep the
// top columns, retrain on the reduced matrix.
func SelectColumns(X [][]decimal.Decimal, indices []int) ([][]decimal.Decimal, error) {
	result := make([][]decimal.Decimal, len(X))

	for i, row := range X {
		result[i] = make([]decimal.Decimal, len(indices))
		for j, idx := range indices {
			if idx < 0 || idx >= len(row) {
				return nil, fmt.Errorf("feature index %d out of range for %d features", idx, len(row))
			}
			result[i][j] = row[idx]
		}
	}

	return result, nil
}

// TopFeatures keeps the k most important feature indices, sorted ascending
// so the pruned matrix preserves the original column order.
func TopFeatures(importances []float64, k int) []int {
	if k <= 0 || k > len(importances) {
		k = len(importances)
	}

	top := RankFeatures(importances)[:k]
	sort.Ints(top)
	return top
}
