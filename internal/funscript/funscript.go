// Package funscript serializes timed action lists into the funscript
// JSON format consumed by haptic players.
package funscript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aaakoako/DeepFunGen/internal/postprocess"
	"github.com/aaakoako/DeepFunGen/pkg/util"
)

const (
	generatorName    = "DeepFunGen"
	generatorVersion = "1.0.0"
)

// Generator records how a script was produced.
type Generator struct {
	Name    string              `json:"name"`
	Version string              `json:"version"`
	Model   string              `json:"model"`
	Options postprocess.Options `json:"options"`
}

// Document is a complete funscript file.
type Document struct {
	Version   string               `json:"version"`
	Inverted  bool                 `json:"inverted"`
	Range     int                  `json:"range"`
	Actions   []postprocess.Action `json:"actions"`
	Generator Generator            `json:"generator"`
}

// New builds a document with the standard header fields filled in.
func New(actions []postprocess.Action, modelName string, options postprocess.Options) Document {
	return Document{
		Version:  "1.0",
		Inverted: false,
		Range:    100,
		Actions:  actions,
		Generator: Generator{
			Name:    generatorName,
			Version: generatorVersion,
			Model:   modelName,
			Options: options,
		},
	}
}

// Write serializes the document with two-space indentation, creating
// parent directories as needed.
func (d Document) Write(path string) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode funscript: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write funscript: %w", err)
	}
	return nil
}

// ScriptPath derives the funscript path next to the video.
func ScriptPath(videoPath string) string {
	return filepath.Join(filepath.Dir(videoPath), util.Stem(videoPath)+".funscript")
}
