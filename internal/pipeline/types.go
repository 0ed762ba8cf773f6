package pipeline

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
	"github.com/aaakoako/DeepFunGen/internal/postprocess"
	"github.com/aaakoako/DeepFunGen/internal/predict"
)

// Result carries everything a generation run produced. It is passed by
// value between stages so no stage can mutate another's view of the run.
type Result struct {
	VideoPath      string
	FrameCount     int
	FrameRate      float64
	Signal         predict.RawSignal
	Features       analysis.Features
	Options        postprocess.Options
	Reasoning      string
	Actions        []postprocess.Action
	PredictionPath string
	ScriptPath     string
}

// consoleReporter bridges driver progress events to the logger and maps
// context cancellation onto the driver's cancellation predicate.
type consoleReporter struct {
	ctx    context.Context
	logger zerolog.Logger
}

// NewReporter builds a reporter that logs progress and cancels with ctx.
func NewReporter(ctx context.Context, logger zerolog.Logger) predict.Reporter {
	return &consoleReporter{
		ctx:    ctx,
		logger: logger.With().Str("component", "progress").Logger(),
	}
}

func (r *consoleReporter) Progress(fraction float64, message string) {
	event := r.logger.Info()
	if !math.IsNaN(fraction) {
		event = event.Int("percent", int(fraction*100))
	}
	event.Msg(message)
}

func (r *consoleReporter) Log(message string) {
	r.logger.Info().Msg(message)
}

func (r *consoleReporter) ShouldCancel() bool {
	return r.ctx.Err() != nil
}
