package preprocessing

import (
	"encoding/gob"
	"fmt"
	"os"
)

// LabelEncoder maps category names to integer class codes and back. Codes are
// assigned in order of first appearance, so the same input always produces
// the same label ordering and the ordering can be reused as the confusion
// matrix axis.
type LabelEncoder struct {
	ClassToInt map[string]int
	Names      []string
	IsFitted   bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
	}
}

func (le *LabelEncoder) Fit(labels []string) {
	le.ClassToInt = make(map[string]int)
	le.Names = nil

	for _, label := range labels {
		if _, seen := le.ClassToInt[label]; !seen {
			le.ClassToInt[label] = len(le.Names)
			le.Names = append(le.Names, label)
		}
	}

	le.IsFitted = true
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	result := make([]int, len(labels))
	for i, label := range labels {
		code, ok := le.ClassToInt[label]
		if !ok {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
		result[i] = code
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before inverse transform")
	}

	result := make([]string, len(encoded))
	for i, code := range encoded {
		if code < 0 || code >= len(le.Names) {
			return nil, fmt.Errorf("unknown encoding: %d", code)
		}
		result[i] = le.Names[code]
	}

	return result, nil
}

// ClassNames returns the label set in encoding order. The slice is a copy;
// callers can pass it straight to the evaluator as the axis ordering.
func (le *LabelEncoder) ClassNames() []string {
	names := make([]string, len(le.Names))
	copy(names, le.Names)
	return names
}

func (le *LabelEncoder) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(le)
}

func (le *LabelEncoder) Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewDecoder(file).Decode(le)
}
