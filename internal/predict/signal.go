// Package predict runs windowed model inference over video frames and
// owns the raw prediction signal and its CSV side file.
package predict

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aaakoako/DeepFunGen/pkg/util"
)

// Sample is one frame's prediction.
type Sample struct {
	FrameIndex  int
	TimestampMS float64
	Value       float64
}

// RawSignal is the per-frame prediction series, ordered by frame index.
type RawSignal []Sample

// Values extracts the prediction values for analysis.
func (s RawSignal) Values() []float64 {
	out := make([]float64, len(s))
	for i, sample := range s {
		out[i] = sample.Value
	}
	return out
}

// PredictionPath derives the CSV side-file path next to the video,
// named <video stem>.<model stem>.csv.
func PredictionPath(videoPath, modelPath string) string {
	name := fmt.Sprintf("%s.%s.csv", util.Stem(videoPath), util.Stem(modelPath))
	return filepath.Join(filepath.Dir(videoPath), name)
}

// WriteCSV persists the signal with a fixed header so runs can be
// re-analyzed without re-running inference.
func (s RawSignal) WriteCSV(path string) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create prediction file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame_index", "timestamp_ms", "predicted_change"}); err != nil {
		return err
	}
	for _, sample := range s {
		record := []string{
			strconv.Itoa(sample.FrameIndex),
			strconv.FormatFloat(sample.TimestampMS, 'f', 6, 64),
			strconv.FormatFloat(sample.Value, 'f', 9, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a previously written prediction file.
func ReadCSV(path string) (RawSignal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse prediction file: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("prediction file is empty: %s", path)
	}

	signal := make(RawSignal, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			return nil, fmt.Errorf("malformed prediction row: %v", record)
		}
		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid frame index %q: %w", record[0], err)
		}
		ts, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", record[1], err)
		}
		value, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid prediction %q: %w", record[2], err)
		}
		signal = append(signal, Sample{FrameIndex: idx, TimestampMS: ts, Value: value})
	}
	return signal, nil
}
