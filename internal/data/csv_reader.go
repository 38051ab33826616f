package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"boostlab/internal/preprocessing"

	"github.com/shopspring/decimal"
)

// Dataset is one loaded CSV file: numeric feature columns, the raw string
// label column (last column), and an encoder fitted on the labels in file
// order. Encoder.ClassNames() is the canonical label ordering for every
// evaluation of this dataset.
type Dataset struct {
	X       [][]decimal.Decimal
	Labels  []string
	Y       []int
	Headers []string
	Encoder *preprocessing.LabelEncoder
	Source  string
}

type CSVReader struct {
	filename string
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename}
}

func (cr *CSVReader) Load() (*Dataset, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in file")
	}

	headers := records[0]
	if len(headers) < 2 {
		return nil, fmt.Errorf("need at least one feature column and a label column")
	}
	rows := records[1:]

	ds := &Dataset{
		X:       make([][]decimal.Decimal, 0, len(rows)),
		Labels:  make([]string, 0, len(rows)),
		Headers: headers[:len(headers)-1],
		Source:  cr.filename,
	}

	for i, record := range rows {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i+1, len(record), len(headers))
		}
		if hasEmptyField(record) {
			continue
		}

		features := make([]decimal.Decimal, len(record)-1)
		for j := 0; j < len(record)-1; j++ {
			val, err := decimal.NewFromString(strings.TrimSpace(record[j]))
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: invalid numeric value %q", i+1, headers[j], record[j])
			}
			features[j] = val
		}

		ds.X = append(ds.X, features)
		ds.Labels = append(ds.Labels, strings.TrimSpace(record[len(record)-1]))
	}

	if len(ds.X) == 0 {
		return nil, fmt.Errorf("no usable rows in file")
	}

	ds.Encoder = preprocessing.NewLabelEncoder()
	ds.Y, err = ds.Encoder.FitTransform(ds.Labels)
	if err != nil {
		return nil, err
	}

	return ds, nil
}

func hasEmptyField(record []string) bool {
	for _, val := range record {
		if strings.TrimSpace(val) == "" {
			return true
		}
	}
	return false
}
