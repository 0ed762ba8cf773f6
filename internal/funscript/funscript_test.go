package funscript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aaakoako/DeepFunGen/internal/postprocess"
)

func TestScriptPath(t *testing.T) {
	got := ScriptPath(filepath.Join("videos", "clip.mp4"))
	want := filepath.Join("videos", "clip.funscript")
	if got != want {
		t.Errorf("ScriptPath = %q, want %q", got, want)
	}
}

func TestWriteDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.funscript")

	actions := []postprocess.Action{{At: 0, Pos: 50}, {At: 333, Pos: 80}}
	doc := New(actions, "motion", postprocess.DefaultOptions())
	if err := doc.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["version"] != "1.0" {
		t.Errorf("version = %v, want 1.0", decoded["version"])
	}
	if decoded["inverted"] != false {
		t.Errorf("inverted = %v, want false", decoded["inverted"])
	}
	if decoded["range"].(float64) != 100 {
		t.Errorf("range = %v, want 100", decoded["range"])
	}

	rawActions := decoded["actions"].([]interface{})
	if len(rawActions) != 2 {
		t.Fatalf("got %d actions, want 2", len(rawActions))
	}
	first := rawActions[0].(map[string]interface{})
	if first["at"].(float64) != 0 || first["pos"].(float64) != 50 {
		t.Errorf("first action = %v, want at=0 pos=50", first)
	}

	generator := decoded["generator"].(map[string]interface{})
	if generator["name"] != "DeepFunGen" {
		t.Errorf("generator name = %v", generator["name"])
	}
	if generator["model"] != "motion" {
		t.Errorf("generator model = %v", generator["model"])
	}
	options := generator["options"].(map[string]interface{})
	if _, ok := options["smooth_window_frames"]; !ok {
		t.Error("generator options should carry the snake_case option keys")
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.funscript")

	doc := New(nil, "m", postprocess.DefaultOptions())
	if err := doc.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("script missing: %v", err)
	}
}
