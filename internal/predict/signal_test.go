package predict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredictionPath(t *testing.T) {
	got := PredictionPath(filepath.Join("videos", "clip.mp4"), filepath.Join("models", "motion.onnx"))
	want := filepath.Join("videos", "clip.motion.csv")
	if got != want {
		t.Errorf("PredictionPath = %q, want %q", got, want)
	}
}

func TestCSVRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	signal := RawSignal{
		{FrameIndex: 0, TimestampMS: 0, Value: 0},
		{FrameIndex: 1, TimestampMS: 33.333333, Value: 0.123456789},
		{FrameIndex: 2, TimestampMS: 66.666667, Value: -0.5},
	}
	if err := signal.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "frame_index,timestamp_ms,predicted_change" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[2] != "1,33.333333,0.123456789" {
		t.Errorf("row = %q, want fixed 6/9 decimal formatting", lines[2])
	}

	loaded, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(loaded) != len(signal) {
		t.Fatalf("got %d samples, want %d", len(loaded), len(signal))
	}
	for i := range signal {
		if loaded[i].FrameIndex != signal[i].FrameIndex {
			t.Errorf("sample %d frame index = %d, want %d", i, loaded[i].FrameIndex, signal[i].FrameIndex)
		}
		if loaded[i].Value != signal[i].Value {
			t.Errorf("sample %d value = %v, want %v", i, loaded[i].Value, signal[i].Value)
		}
	}
}

func TestReadCSVMissing(t *testing.T) {
	if _, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestValues(t *testing.T) {
	signal := RawSignal{{Value: 0.1}, {Value: -0.2}}
	values := signal.Values()
	if len(values) != 2 || values[0] != 0.1 || values[1] != -0.2 {
		t.Errorf("Values = %v", values)
	}
}
