package models

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type TreeNode struct {
	IsLeaf           bool
	Class            int
	Feature          int
	Threshold        decimal.Decimal
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	Impurity         float64
	ImpurityDecrease float64
}

// DecisionTree is a CART-style classifier splitting on gini impurity. It also
// accumulates per-feature impurity decreases during fitting, which is what
// the feature-importance report and the feature-pruning step rank by.
type DecisionTree struct {
	BaseModel
	Root                *TreeNode
	MaxDepth            int
	MinSamplesSplit     int
	MinImpurityDecrease float64
	NumFeatures         int
	Importances         []float64
	totalSamples        int
}

func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}

	return &DecisionTree{
		MaxDepth:            maxDepth,
		MinSamplesSplit:     minSamplesSplit,
		MinImpurityDecrease: 0.01,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

func (dt *DecisionTree) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d samples, %d labels", len(X), len(y))
	}

	dt.Classes = ExtractClasses(y)
	dt.NumFeatures = len(X[0])
	dt.Importances = make([]float64, dt.NumFeatures)
	dt.totalSamples = len(y)
	dt.Root = dt.buildTree(X, y, 0)

	normalize(dt.Importances)
	return nil
}

func (dt *DecisionTree) buildTree(X [][]decimal.Decimal, y []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples:  len(y),
		Impurity: giniImpurity(y),
	}

	if depth >= dt.MaxDepth ||
		len(y) < dt.MinSamplesSplit ||
		isPure(y) ||
		node.Impurity < dt.MinImpurityDecrease {

		node.IsLeaf = true
		node.Class = majorityClass(y)
		return node
	}

	feature, threshold, decrease := dt.findBestSplit(X, y)
	if decrease < dt.MinImpurityDecrease {
		node.IsLeaf = true
		node.Class = majorityClass(y)
		return node
	}

	leftIdx, rightIdx := partition(X, feature, threshold)
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		node.IsLeaf = true
		node.Class = majorityClass(y)
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.ImpurityDecrease = decrease
	dt.Importances[feature] += float64(len(y)) / float64(dt.totalSamples) * decrease

	XLeft, yLeft := subset(X, y, leftIdx)
	XRight, yRight := subset(X, y, rightIdx)

	node.Left = dt.buildTree(XLeft, yLeft, depth+1)
	node.Right = dt.buildTree(XRight, yRight, depth+1)

	return node
}

func (dt *DecisionTree) findBestSplit(X [][]decimal.Decimal, y []int) (int, decimal.Decimal, float64) {
	bestFeature := 0
	bestThreshold := decimal.Zero
	bestDecrease := 0.0

	parentImpurity := giniImpurity(y)
	n := len(y)

	for feature := range X[0] {
		for _, threshold := range uniqueValues(X, feature) {
			leftIdx, rightIdx := partition(X, feature, threshold)
			if len(leftIdx) == 0 || len(rightIdx) == 0 {
				continue
			}

			yLeft := make([]int, len(leftIdx))
			for i, idx := range leftIdx {
				yLeft[i] = y[idx]
			}
			yRight := make([]int, len(rightIdx))
			for i, idx := range rightIdx {
				yRight[i] = y[idx]
			}

			weighted := float64(len(leftIdx))/float64(n)*giniImpurity(yLeft) +
				float64(len(rightIdx))/float64(n)*giniImpurity(yRight)

			decrease := parentImpurity - weighted
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestDecrease
}

// Prune collapses subtrees whose removal does not hurt accuracy on the
// held-out validation set (reduced-error pruning).
func (dt *DecisionTree) Prune(XVal [][]decimal.Decimal, yVal []int) {
	if dt.Root == nil || len(XVal) == 0 {
		return
	}
	dt.pruneNode(dt.Root, XVal, yVal)
}

func (dt *DecisionTree) pruneNode(node *TreeNode, XVal [][]decimal.Decimal, yVal []int) {
	if node.IsLeaf {
		return
	}

	accuracyWithSubtrees := dt.validationAccuracy(node, XVal, yVal)

	left, right := node.Left, node.Right
	node.IsLeaf = true

	if dt.validationAccuracy(node, XVal, yVal) >= accuracyWithSubtrees {
		node.Left = nil
		node.Right = nil
		return
	}

	node.IsLeaf = false
	node.Left = left
	node.Right = right
	dt.pruneNode(node.Left, XVal, yVal)
	dt.pruneNode(node.Right, XVal, yVal)
}

func (dt *DecisionTree) validationAccuracy(node *TreeNode, XVal [][]decimal.Decimal, yVal []int) float64 {
	if len(XVal) == 0 {
		return 0.0
	}

	correct := 0
	for i, sample := range XVal {
		if dt.predictSample(sample, node) == yVal[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(XVal))
}

func (dt *DecisionTree) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	for i, sample := range X {
		predictions[i] = dt.predictSample(sample, dt.Root)
	}
	return predictions
}

func (dt *DecisionTree) PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal {
	proba := make([][]decimal.Decimal, len(X))

	for i, sample := range X {
		prediction := dt.predictSample(sample, dt.Root)
		proba[i] = make([]decimal.Decimal, len(dt.Classes))
		for j, class := range dt.Classes {
			if class == prediction {
				proba[i][j] = decimal.NewFromInt(1)
			} else {
				proba[i][j] = decimal.Zero
			}
		}
	}

	return proba
}

func (dt *DecisionTree) predictSample(sample []decimal.Decimal, node *TreeNode) int {
	if node.IsLeaf {
		return node.Class
	}
	if sample[node.Feature].LessThan(node.Threshold) {
		return dt.predictSample(sample, node.Left)
	}
	return dt.predictSample(sample, node.Right)
}

// FeatureImportances returns the normalized impurity-decrease share of each
// training feature. The slice sums to 1 unless the tree is a single leaf.
func (dt *DecisionTree) FeatureImportances() []float64 {
	importances := make([]float64, len(dt.Importances))
	copy(importances, dt.Importances)
	return importances
}

func (dt *DecisionTree) GetClasses() []int {
	return dt.Classes
}

func (dt *DecisionTree) Reset() {
	dt.Root = nil
	dt.Classes = nil
	dt.Importances = nil
}

func giniImpurity(y []int) float64 {
	if len(y) == 0 {
		return 0.0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	impurity := 1.0
	n := float64(len(y))
	for _, count := range classCounts {
		p := float64(count) / n
		impurity -= p * p
	}

	return impurity
}

func isPure(y []int) bool {
	if len(y) == 0 {
		return true
	}
	for _, class := range y {
		if class != y[0] {
			return false
		}
	}
	return true
}

func majorityClass(y []int) int {
	if len(y) == 0 {
		return 0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	maxCount := 0
	majority := y[0]
	for class, count := range classCounts {
		if count > maxCount {
			maxCount = count
			majority = class
		}
	}

	return majority
}

func uniqueValues(X [][]decimal.Decimal, feature int) []decimal.Decimal {
	seen := make(map[string]decimal.Decimal)
	for _, sample := range X {
		seen[sample[feature].String()] = sample[feature]
	}

	values := make([]decimal.Decimal, 0, len(seen))
	for _, value := range seen {
		values = append(values, value)
	}
	// Candidates are scanned in ascending order so equal-decrease ties
	// always resolve to the same threshold.
	sort.Slice(values, func(i, j int) bool {
		return values[i].LessThan(values[j])
	})
	return values
}

func partition(X [][]decimal.Decimal, feature int, threshold decimal.Decimal) ([]int, []int) {
	var left, right []int
	for i, sample := range X {
		if sample[feature].LessThan(threshold) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func subset(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	subX := make([][]decimal.Decimal, len(indices))
	subY := make([]int, len(indices))
	for i, idx := range indices {
		subX[i] = X[idx]
		subY[i] = y[idx]
	}
	return subX, subY
}

func normalize(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
