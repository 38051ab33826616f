package models

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// RandomForest is the tree ensemble the pipeline fits: bootstrap-sampled
// decision trees over random feature subsets, combined by majority vote.
type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Trees           []*DecisionTree
	FeatureIndices  [][]int
	NumFeatures     int
	Parallel        bool
	MaxWorkers      int
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit int) *RandomForest {
	if nTrees <= 0 {
		nTrees = 100
	}

	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		Parallel:        true,
		MaxWorkers:      4,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_trees":           nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

func (rf *RandomForest) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d samples, %d labels", len(X), len(y))
	}

	rf.Classes = ExtractClasses(y)
	rf.NumFeatures = len(X[0])

	rf.MaxFeatures = int(math.Sqrt(float64(rf.NumFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	rf.FeatureIndices = make([][]int, rf.NTrees)

	if rf.Parallel {
		return rf.trainParallel(X, y)
	}
	return rf.trainSequential(X, y)
}

func (rf *RandomForest) trainParallel(X [][]decimal.Decimal, y []int) error {
	var wg sync.WaitGroup
	errors := make([]error, rf.NTrees)

	workers := rf.MaxWorkers
	if workers > rf.NTrees {
		workers = rf.NTrees
	}

	jobs := make(chan int, rf.NTrees)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tree, features, err := rf.trainSingleTree(X, y, int64(i))
				rf.Trees[i] = tree
				rf.FeatureIndices[i] = features
				errors[i] = err
			}
		}()
	}

	for i := 0; i < rf.NTrees; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return fmt.Errorf("tree %d training failed: %w", i, err)
		}
	}

	return nil
}

func (rf *RandomForest) trainSequential(X [][]decimal.Decimal, y []int) error {
	for i := 0; i < rf.NTrees; i++ {
		tree, features, err := rf.trainSingleTree(X, y, int64(i))
		if err != nil {
			return err
		}
		rf.Trees[i] = tree
		rf.FeatureIndices[i] = features
	}
	return nil
}

func (rf *RandomForest) trainSingleTree(X [][]decimal.Decimal, y []int, seed int64) (*DecisionTree, []int, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([][]decimal.Decimal, n)
	yBoot := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	features := rf.sampleFeatures(r)

	XSelected := make([][]decimal.Decimal, n)
	for i := range XBoot {
		XSelected[i] = make([]decimal.Decimal, len(features))
		for j, feat := range features {
			XSelected[i][j] = XBoot[i][feat]
		}
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit)
	err := tree.Fit(XSelected, yBoot)

	return tree, features, err
}

func (rf *RandomForest) sampleFeatures(r *rand.Rand) []int {
	features := make([]int, rf.NumFeatures)
	for i := range features {
		features[i] = i
	}

	for i := 0; i < rf.MaxFeatures && i < rf.NumFeatures; i++ {
		j := i + r.Intn(rf.NumFeatures-i)
		features[i], features[j] = features[j], features[i]
	}

	return features[:rf.MaxFeatures]
}

func (rf *RandomForest) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range X {
		votes := make(map[int]int)
		for j, tree := range rf.Trees {
			votes[rf.treeVote(tree, rf.FeatureIndices[j], sample)]++
		}

		maxVotes := 0
		bestClass := rf.Classes[0]
		for class, count := range votes {
			if count > maxVotes || (count == maxVotes && class < bestClass) {
				maxVotes = count
				bestClass = class
			}
		}
		predictions[i] = bestClass
	}

	return predictions
}

// PredictProba reports each class's vote share across the ensemble. The
// argmax over a row reproduces Predict for that case.
func (rf *RandomForest) PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal {
	proba := make([][]decimal.Decimal, len(X))
	nTrees := decimal.NewFromInt(int64(rf.NTrees))

	for i, sample := range X {
		votes := make(map[int]int)
		for j, tree := range rf.Trees {
			votes[rf.treeVote(tree, rf.FeatureIndices[j], sample)]++
		}

		proba[i] = make([]decimal.Decimal, len(rf.Classes))
		for j, class := range rf.Classes {
			proba[i][j] = decimal.NewFromInt(int64(votes[class])).Div(nTrees)
		}
	}

	return proba
}

func (rf *RandomForest) treeVote(tree *DecisionTree, features []int, sample []decimal.Decimal) int {
	selected := make([]decimal.Decimal, len(features))
	for k, feat := range features {
		selected[k] = sample[feat]
	}
	return tree.Predict([][]decimal.Decimal{selected})[0]
}

// FeatureImportances averages tree importances over the ensemble, mapping
// each tree's feature-subset indices back to the original feature positions.
// The result is normalized to sum to 1 when any split occurred.
func (rf *RandomForest) FeatureImportances() []float64 {
	importances := make([]float64, rf.NumFeatures)

	for i, tree := range rf.Trees {
		treeImportances := tree.FeatureImportances()
		for j, feat := range rf.FeatureIndices[i] {
			if j < len(treeImportances) {
				importances[feat] += treeImportances[j]
			}
		}
	}

	normalize(importances)
	return importances
}

func (rf *RandomForest) GetClasses() []int {
	return rf.Classes
}

func (rf *RandomForest) Reset() {
	rf.Trees = nil
	rf.FeatureIndices = nil
	rf.Classes = nil
}
