package predict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"

	"github.com/aaakoako/DeepFunGen/internal/ffmpeg"
	"github.com/aaakoako/DeepFunGen/internal/model"
	"github.com/aaakoako/DeepFunGen/pkg/util"
)

// ErrCancelled reports that a run was stopped by its cancellation
// predicate rather than by a failure.
var ErrCancelled = errors.New("processing cancelled")

// ErrNoFrames reports a video that opened fine but produced no frames.
var ErrNoFrames = errors.New("no frames decoded from video")

// Reporter receives progress and log events from a run. Progress fractions
// are in [0,1]; NaN means the total is unknown.
type Reporter interface {
	Progress(fraction float64, message string)
	Log(message string)
	ShouldCancel() bool
}

// NopReporter discards all events and never cancels.
type NopReporter struct{}

func (NopReporter) Progress(float64, string) {}
func (NopReporter) Log(string)               {}
func (NopReporter) ShouldCancel() bool       { return false }

// FrameSource yields decoded frames until io.EOF.
type FrameSource interface {
	Next() (*ffmpeg.Frame, error)
	Close() error
}

// Driver runs a sequence model over video frames with a sliding window.
type Driver struct {
	logger zerolog.Logger
	exec   *ffmpeg.Executor
	model  model.SequenceModel
}

// NewDriver wires a decoder and a model into a prediction driver.
func NewDriver(logger zerolog.Logger, exec *ffmpeg.Executor, m model.SequenceModel) *Driver {
	return &Driver{
		logger: logger.With().Str("component", "predict").Logger(),
		exec:   exec,
		model:  m,
	}
}

// Result is the outcome of a full prediction run.
type Result struct {
	FrameCount     int
	FPS            float64
	Signal         RawSignal
	PredictionPath string
	ModelName      string
}

// ProcessVideo decodes every frame, runs the model over each full window,
// and persists the signal as a CSV side file next to the video. The first
// SequenceLength-1 values are zero because no full window exists yet.
func (d *Driver) ProcessVideo(ctx context.Context, videoPath string, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if reporter.ShouldCancel() {
		return nil, ErrCancelled
	}

	info, err := d.exec.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open video %s: %w", videoPath, err)
	}

	stream, err := d.exec.StreamFrames(ctx, videoPath, ffmpeg.StreamOptions{
		Width:  info.Width,
		Height: info.Height,
		FPS:    info.FPS,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open video %s: %w", videoPath, err)
	}
	defer stream.Close()

	reporter.Log(fmt.Sprintf("Decoding video at ~%.2f fps", info.FPS))

	values, err := d.consume(ctx, stream, info.FrameCount, reporter)
	if err != nil {
		return nil, err
	}
	reporter.Progress(0.95, "Finalising predictions")

	frameCount := len(values)
	if frameCount == 0 {
		return nil, ErrNoFrames
	}

	// The window only fills at frame SequenceLength-1; anything inferred
	// before that saw stale or missing frames.
	cutoff := d.model.Spec().SequenceLength - 1
	if cutoff > frameCount {
		cutoff = frameCount
	}
	for i := 0; i < cutoff; i++ {
		values[i] = 0
	}

	frameMS := 1000.0 / info.FPS
	signal := make(RawSignal, frameCount)
	for i, v := range values {
		signal[i] = Sample{FrameIndex: i, TimestampMS: float64(i) * frameMS, Value: v}
	}

	predictionPath := PredictionPath(videoPath, d.model.Spec().Path)
	if err := signal.WriteCSV(predictionPath); err != nil {
		return nil, err
	}

	d.logger.Info().
		Int("frames", frameCount).
		Float64("fps", info.FPS).
		Str("predictions", predictionPath).
		Msg("prediction run complete")

	return &Result{
		FrameCount:     frameCount,
		FPS:            info.FPS,
		Signal:         signal,
		PredictionPath: predictionPath,
		ModelName:      modelName(d.model.Spec().Path),
	}, nil
}

// consume drains a frame source through the sliding window, returning one
// value per frame. Cancellation is checked before every frame read.
func (d *Driver) consume(ctx context.Context, src FrameSource, totalEstimate int, reporter Reporter) ([]float64, error) {
	spec := d.model.Spec()
	frameLen := spec.Height * spec.Width * spec.Channels
	sequence := make([]float32, spec.SequenceLength*frameLen)
	window := make([][]float32, 0, spec.SequenceLength)

	var values []float64
	frameIndex := 0

	progressInterval := 1
	if totalEstimate > 0 {
		progressInterval = totalEstimate / 20
		if progressInterval < 1 {
			progressInterval = 1
		}
	}

	for {
		if reporter.ShouldCancel() {
			return nil, ErrCancelled
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame decode failed: %w", err)
		}

		preprocessed := model.Preprocess(frame, spec)
		if len(window) == spec.SequenceLength {
			copy(window, window[1:])
			window[len(window)-1] = preprocessed
		} else {
			window = append(window, preprocessed)
		}

		value := 0.0
		if len(window) == spec.SequenceLength {
			for i, f := range window {
				copy(sequence[i*frameLen:(i+1)*frameLen], f)
			}
			v, err := d.model.Infer(sequence)
			if err != nil {
				return nil, fmt.Errorf("inference failed at frame %d: %w", frameIndex, err)
			}
			value = float64(v)
		}
		values = append(values, value)
		frameIndex++

		if totalEstimate > 0 {
			if frameIndex%progressInterval == 0 {
				fraction := math.Min(1.0, float64(frameIndex)/float64(totalEstimate))
				reporter.Progress(fraction, fmt.Sprintf("Processing %d/%d frames", frameIndex, totalEstimate))
			}
		} else if frameIndex%30 == 0 {
			reporter.Progress(math.NaN(), fmt.Sprintf("Processing %d frames", frameIndex))
		}
	}
	return values, nil
}

func modelName(modelPath string) string {
	return util.Stem(modelPath)
}
