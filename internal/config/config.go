package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aaakoako/DeepFunGen/internal/postprocess"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Model settings
	Model ModelConfig `yaml:"model"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Postprocessing defaults, overridden per run by the recommender
	Postprocess postprocess.Options `yaml:"postprocess"`
}

type ModelConfig struct {
	Path           string `yaml:"path"`
	Height         int    `yaml:"height"`
	Width          int    `yaml:"width"`
	Channels       int    `yaml:"channels"`
	SequenceLength int    `yaml:"sequence_length"`
	InputName      string `yaml:"input_name"`
	OutputName     string `yaml:"output_name"`
	LibraryPath    string `yaml:"library_path"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Path:           "./models/deepfungen.onnx",
			Height:         64,
			Width:          64,
			Channels:       3,
			SequenceLength: 12,
			InputName:      "input",
			OutputName:     "output",
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "",
			ProbePath:  "",
		},
		Postprocess: postprocess.DefaultOptions(),
	}
}

func findConfigFile() string {
	candidates := []string{
		"./deepfungen.yaml",
		"./deepfungen.yml",
		filepath.Join(os.Getenv("HOME"), ".deepfungen", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}

// Validate reports whether the model section is complete enough to load
func (m ModelConfig) Validate() bool {
	return m.Path != "" && m.Height > 0 && m.Width > 0 && m.Channels > 0 && m.SequenceLength > 0
}
