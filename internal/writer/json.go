// Package writer persists heart rate metrics as JSON next to the source
// CSV strip. It is the gate that refuses to persist implausible results.
package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kofferdahl/bme590hrm/internal/ecg"
)

// ErrInvalidMetrics is returned when metrics flagged as implausible are
// handed to Write.
var ErrInvalidMetrics = errors.New("refusing to persist metrics flagged as invalid")

// Write serializes the metrics to a JSON file whose path is the CSV path
// with the extension replaced by .json, and returns that path. Metrics
// with IsValid == false are refused.
func Write(m ecg.Metrics, csvPath string) (string, error) {
	if !m.IsValid {
		return "", fmt.Errorf("%w: %s", ErrInvalidMetrics, strings.Join(m.Flags, "; "))
	}

	outPath := OutputPath(csvPath)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write metrics file: %w", err)
	}
	return outPath, nil
}

// OutputPath derives the JSON output path from the input CSV path.
func OutputPath(csvPath string) string {
	if i := strings.LastIndex(csvPath, "."); i >= 0 {
		return csvPath[:i] + ".json"
	}
	return csvPath + ".json"
}
