package evaluation

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Split is one train/test partition of a dataset.
type Split struct {
	XTrain [][]decimal.Decimal
	XTest  [][]decimal.Decimal
	YTrain []int
	YTest  []int
}

type TrainTestSplitter struct {
	TestSize float64
	Seed     int64
	Shuffle  bool
}

func NewTrainTestSplitter(testSize float64, seed int64) *TrainTestSplitter {
	return &TrainTestSplitter{
		TestSize: testSize,
		Seed:     seed,
		Shuffle:  true,
	}
}

func (s *TrainTestSplitter) Split(X [][]decimal.Decimal, y []int) (*Split, error) {
	if err := s.check(X, y); err != nil {
		return nil, err
	}

	n := len(X)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if s.Shuffle {
		rng := rand.New(rand.NewSource(s.Seed))
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testCount := int(float64(n) * s.TestSize)
	return gather(X, y, indices[testCount:], indices[:testCount]), nil
}

// StratifiedSplit partitions so every class keeps roughly the same share in
// train and test. Classes with at least one sample contribute at least one
// test case.
func (s *TrainTestSplitter) StratifiedSplit(X [][]decimal.Decimal, y []int) (*Split, error) {
	if err := s.check(X, y); err != nil {
		return nil, err
	}

	classIndices := make(map[int][]int)
	classOrder := []int{}
	for i, label := range y {
		if _, seen := classIndices[label]; !seen {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	var trainIndices, testIndices []int

	for _, class := range classOrder {
		indices := classIndices[class]
		if s.Shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		testCount := int(float64(len(indices)) * s.TestSize)
		if testCount == 0 && len(indices) > 0 {
			testCount = 1
		}

		trainCount := len(indices) - testCount
		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	if s.Shuffle {
		rng.Shuffle(len(trainIndices), func(i, j int) {
			trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
		})
		rng.Shuffle(len(testIndices), func(i, j int) {
			testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
		})
	}

	return gather(X, y, trainIndices, testIndices), nil
}

func (s *TrainTestSplitter) check(X [][]decimal.Decimal, y []int) error {
	if len(X) != len(y) {
		return fmt.Errorf("x and y must have the same length")
	}
	if len(X) == 0 {
		return fmt.Errorf("cannot split empty dataset")
	}
	if s.TestSize <= 0 || s.TestSize >= 1 {
		return fmt.Errorf("test size must be between 0 and 1")
	}
	return nil
}

func gather(X [][]decimal.Decimal, y []int, trainIdx, testIdx []int) *Split {
	split := &Split{
		XTrain: make([][]decimal.Decimal, len(trainIdx)),
		XTest:  make([][]decimal.Decimal, len(testIdx)),
		YTrain: make([]int, len(trainIdx)),
		YTest:  make([]int, len(testIdx)),
	}

	for i, idx := range trainIdx {
		split.XTrain[i] = make([]decimal.Decimal, len(X[idx]))
		copy(split.XTrain[i], X[idx])
		split.YTrain[i] = y[idx]
	}
	for i, idx := range testIdx {
		split.XTest[i] = make([]decimal.Decimal, len(X[idx]))
		copy(split.XTest[i], X[idx])
		split.YTest[i] = y[idx]
	}

	return split
}

// KFoldSplit partitions row indices into nFolds contiguous folds after an
// optional shuffle. The last fold absorbs the remainder.
func KFoldSplit(n, nFolds int, shuffle bool, seed int64) ([][]int, error) {
	if nFolds < 2 || nFolds > n {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", nFolds, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if shuffle {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([][]int, nFolds)
	foldSize := n / nFolds

	for i := 0; i < nFolds; i++ {
		start := i * foldSize
		end := start + foldSize
		if i == nFolds-1 {
			end = n
		}
		folds[i] = make([]int, end-start)
		copy(folds[i], indices[start:end])
	}

	return folds, nil
}
