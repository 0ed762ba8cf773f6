// Package postprocess turns a raw per-frame prediction signal into sparse,
// velocity-bounded funscript actions. Stage one denoises the signal and
// selects keyframes ("graph points"); stage two converts keyframes into
// timed, intensity-remapped, smoothed actions.
package postprocess

// Options are the tunable parameters of the synthesis pipeline. The field
// tags match the serialized form embedded in funscript generator metadata.
type Options struct {
	SmoothWindowFrames    int     `yaml:"smooth_window_frames" json:"smooth_window_frames"`
	ProminenceRatio       float64 `yaml:"prominence_ratio" json:"prominence_ratio"`
	MinProminence         float64 `yaml:"min_prominence" json:"min_prominence"`
	MaxSlope              float64 `yaml:"max_slope" json:"max_slope"`
	BoostSlope            float64 `yaml:"boost_slope" json:"boost_slope"`
	MinSlope              float64 `yaml:"min_slope" json:"min_slope"`
	MergeThresholdMS      float64 `yaml:"merge_threshold_ms" json:"merge_threshold_ms"`
	FFTDenoise            bool    `yaml:"fft_denoise" json:"fft_denoise"`
	FFTFramesPerComponent int     `yaml:"fft_frames_per_component" json:"fft_frames_per_component"`
	FFTWindowFrames       int     `yaml:"fft_window_frames" json:"fft_window_frames"`
}

// DefaultOptions returns the baseline parameters used when no
// recommendation has been computed.
func DefaultOptions() Options {
	return Options{
		SmoothWindowFrames:    7,
		ProminenceRatio:       0.15,
		MinProminence:         0.01,
		MaxSlope:              3.0,
		BoostSlope:            2.0,
		MinSlope:              2.0,
		MergeThresholdMS:      200,
		FFTDenoise:            true,
		FFTFramesPerComponent: 10,
		FFTWindowFrames:       60,
	}
}

// Config binds Options to the frame rate of the video they apply to.
type Config struct {
	FrameRate float64
	Options
}
