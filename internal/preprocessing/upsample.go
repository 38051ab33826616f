package preprocessing

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Upsampler balances class frequencies before training by duplicating
// randomly drawn minority-class cases until every class matches the largest
// one. Apply to the training portion only; duplicating cases that also sit
// in the test set would leak.
type Upsampler struct {
	Seed int64
}

func NewUpsampler(seed int64) *Upsampler {
	return &Upsampler{Seed: seed}
}

func (u *Upsampler) Balance(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("x and y must have the same length")
	}
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("cannot balance empty dataset")
	}

	classIndices := make(map[int][]int)
	classOrder := []int{}
	for i, label := range y {
		if _, seen := classIndices[label]; !seen {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}

	majority := 0
	for _, indices := range classIndices {
		if len(indices) > majority {
			majority = len(indices)
		}
	}

	rng := rand.New(rand.NewSource(u.Seed))

	XOut := make([][]decimal.Decimal, 0, majority*len(classOrder))
	yOut := make([]int, 0, majority*len(classOrder))

	for _, class := range classOrder {
		indices := classIndices[class]
		for _, idx := range indices {
			XOut = append(XOut, X[idx])
			yOut = append(yOut, y[idx])
		}
		for extra := len(indices); extra < majority; extra++ {
			idx := indices[rng.Intn(len(indices))]
			XOut = append(XOut, X[idx])
			yOut = append(yOut, y[idx])
		}
	}

	return XOut, yOut, nil
}
