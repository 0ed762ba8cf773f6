package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
	"github.com/aaakoako/DeepFunGen/internal/config"
	"github.com/aaakoako/DeepFunGen/internal/ffmpeg"
	"github.com/aaakoako/DeepFunGen/internal/funscript"
	"github.com/aaakoako/DeepFunGen/internal/model"
	"github.com/aaakoako/DeepFunGen/internal/postprocess"
	"github.com/aaakoako/DeepFunGen/internal/predict"
	"github.com/aaakoako/DeepFunGen/internal/recommend"
)

// Pipeline orchestrates the video -> prediction -> funscript workflow
type Pipeline struct {
	logger zerolog.Logger
	config *config.Config
	ffmpeg *ffmpeg.Executor
	model  model.SequenceModel
	driver *predict.Driver
}

// New creates a pipeline, loading the model and resolving ffmpeg binaries
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	if !cfg.Model.Validate() {
		return nil, fmt.Errorf("model configuration is incomplete")
	}

	ffmpegExec, err := ffmpeg.NewWithPaths(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	seqModel, err := model.LoadOnnx(logger, model.Spec{
		Path:           cfg.Model.Path,
		Height:         cfg.Model.Height,
		Width:          cfg.Model.Width,
		Channels:       cfg.Model.Channels,
		SequenceLength: cfg.Model.SequenceLength,
		InputName:      cfg.Model.InputName,
		OutputName:     cfg.Model.OutputName,
		LibraryPath:    cfg.Model.LibraryPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		config: cfg,
		ffmpeg: ffmpegExec,
		model:  seqModel,
		driver: predict.NewDriver(logger, ffmpegExec, seqModel),
	}, nil
}

// Close releases the model session
func (p *Pipeline) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// GenerateOptions configures a full generation run
type GenerateOptions struct {
	// AutoRecommend derives postprocessing parameters from the signal
	// instead of using the configured defaults.
	AutoRecommend bool
	// Options overrides the configured defaults when AutoRecommend is off.
	Options *postprocess.Options
}

// Generate runs the full pipeline: decode and predict, optionally
// recommend parameters, synthesize actions, and write the funscript.
func (p *Pipeline) Generate(ctx context.Context, videoPath string, opts GenerateOptions, reporter predict.Reporter) (*Result, error) {
	if videoPath == "" {
		return nil, fmt.Errorf("video path cannot be empty")
	}

	p.logger.Info().
		Str("video", videoPath).
		Str("model", p.model.Spec().Path).
		Msg("starting generation pipeline")

	predRes, err := p.driver.ProcessVideo(ctx, videoPath, reporter)
	if err != nil {
		return nil, err
	}
	values := predRes.Signal.Values()

	options := p.config.Postprocess
	if opts.Options != nil {
		options = *opts.Options
	}
	features := analysis.Analyze(values)
	reasoning := ""
	if opts.AutoRecommend {
		rec := recommend.Recommend(values)
		options = rec.Options
		features = rec.Features
		reasoning = rec.Reasoning
		p.logger.Info().Str("reasoning", reasoning).Msg("parameters recommended")
	}

	processed := postprocess.Apply(values, postprocess.Config{
		FrameRate: predRes.FPS,
		Options:   options,
	})
	actions := postprocess.BuildActions(processed, values, predRes.FPS)

	scriptPath := funscript.ScriptPath(videoPath)
	doc := funscript.New(actions, predRes.ModelName, options)
	if err := doc.Write(scriptPath); err != nil {
		return nil, err
	}

	p.logger.Info().
		Int("frames", predRes.FrameCount).
		Int("actions", len(actions)).
		Str("script", scriptPath).
		Msg("generation complete")

	return &Result{
		VideoPath:      videoPath,
		FrameCount:     predRes.FrameCount,
		FrameRate:      predRes.FPS,
		Signal:         predRes.Signal,
		Features:       features,
		Options:        options,
		Reasoning:      reasoning,
		Actions:        actions,
		PredictionPath: predRes.PredictionPath,
		ScriptPath:     scriptPath,
	}, nil
}

// Recommend samples the video and derives postprocessing parameters
// without running full inference.
func (p *Pipeline) Recommend(ctx context.Context, videoPath string) (recommend.Recommendation, error) {
	if videoPath == "" {
		return recommend.Recommendation{}, fmt.Errorf("video path cannot be empty")
	}

	p.logger.Info().Str("video", videoPath).Msg("sampling video for recommendation")

	signal, err := p.driver.QuickPredict(ctx, videoPath, 0)
	if err != nil {
		return recommend.Recommendation{}, err
	}
	return recommend.Recommend(signal.Values()), nil
}
