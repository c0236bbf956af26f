// Package reader decodes two-column time/voltage CSV strips into numeric
// arrays for the ecg core. Blank or non-numeric cells are preserved as NaN
// so the ingestor's missing-value policy can act on them.
package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when the CSV file does not exist.
	ErrNotFound = errors.New("csv file not found")
	// ErrNotCSV is returned for paths without a .csv extension.
	ErrNotCSV = errors.New("input file is not a .csv file")
)

// Read loads a CSV strip from disk after checking existence and extension.
func Read(path string) (time, voltage []float64, err error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotCSV, path)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes headerless two-column CSV data: column 0 is time in
// seconds, column 1 voltage in mV. Cells that do not parse as numbers
// become NaN rather than errors; rows with the wrong column count fail
// with the row number.
func Parse(r io.Reader) (time, voltage []float64, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("csv row %d: %w", row+1, err)
		}
		row++

		time = append(time, parseCell(record[0]))
		voltage = append(voltage, parseCell(record[1]))
	}
	return time, voltage, nil
}

func parseCell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
