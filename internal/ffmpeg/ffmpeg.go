package ffmpeg

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// Executor handles all ffmpeg and ffprobe invocations
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
}

// New creates a new ffmpeg executor, resolving both binaries up front
func New(logger zerolog.Logger) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}

// NewWithPaths creates an executor with explicit binary paths, bypassing
// PATH lookup. Empty paths fall back to lookup.
func NewWithPaths(logger zerolog.Logger, ffmpegPath, ffprobePath string) (*Executor, error) {
	if ffmpegPath == "" && ffprobePath == "" {
		return New(logger)
	}
	if ffmpegPath == "" {
		p, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
		ffmpegPath = p
	}
	if ffprobePath == "" {
		p, err := exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
		}
		ffprobePath = p
	}
	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}
