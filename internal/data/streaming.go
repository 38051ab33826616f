package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// StreamingCSVReader reads a dataset in fixed-size batches so large files
// never sit fully in memory. Labels stay as strings; encode them once the
// full label set is known.
type StreamingCSVReader struct {
	file    *os.File
	reader  *csv.Reader
	headers []string
}

type Batch struct {
	X      [][]decimal.Decimal
	Labels []string
}

func NewStreamingCSVReader(filename string) (*StreamingCSVReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	return &StreamingCSVReader{
		file:    file,
		reader:  reader,
		headers: headers,
	}, nil
}

func (sr *StreamingCSVReader) Headers() []string {
	return sr.headers
}

// ReadBatch returns up to batchSize rows. io.EOF signals that the previous
// batch consumed the file; a short final batch is returned without error.
func (sr *StreamingCSVReader) ReadBatch(batchSize int) (*Batch, error) {
	batch := &Batch{
		X:      make([][]decimal.Decimal, 0, batchSize),
		Labels: make([]string, 0, batchSize),
	}

	for len(batch.X) < batchSize {
		record, err := sr.reader.Read()
		if err == io.EOF {
			if len(batch.X) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		if hasEmptyField(record) {
			continue
		}

		features := make([]decimal.Decimal, len(record)-1)
		for j := 0; j < len(record)-1; j++ {
			val, err := decimal.NewFromString(strings.TrimSpace(record[j]))
			if err != nil {
				return nil, fmt.Errorf("invalid numeric value at column %d: %s", j, record[j])
			}
			features[j] = val
		}

		batch.X = append(batch.X, features)
		batch.Labels = append(batch.Labels, strings.TrimSpace(record[len(record)-1]))
	}

	return batch, nil
}

func (sr *StreamingCSVReader) Close() error {
	return sr.file.Close()
}

// ProcessFile streams filename through processor batch by batch.
func ProcessFile(filename string, batchSize int, processor func(*Batch) error) error {
	reader, err := NewStreamingCSVReader(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	for batchNum := 0; ; batchNum++ {
		batch, err := reader.ReadBatch(batchSize)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading batch %d: %w", batchNum, err)
		}

		if err := processor(batch); err != nil {
			return fmt.Errorf("error processing batch %d: %w", batchNum, err)
		}
	}
}
