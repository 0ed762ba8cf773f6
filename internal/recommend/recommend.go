// Package recommend maps signal features to postprocessing parameters.
//
// Four independent estimators each own a slice of the parameter space and
// are combined with a fixed precedence: frequency beats amplitude beats
// smoothness, then the intensity distribution scales the prominence ratio.
package recommend

import (
	"math"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
	"github.com/aaakoako/DeepFunGen/internal/postprocess"
)

// Recommendation bundles the chosen options with the features that drove
// them and a human-readable explanation.
type Recommendation struct {
	Options             postprocess.Options
	Features            analysis.Features
	BaseProminenceRatio float64
	AdjustmentFactor    float64
	Reasoning           string
}

// FrequencyRec holds the parameters owned by the frequency estimator.
type FrequencyRec struct {
	MinSlope         float64
	MergeThresholdMS float64
	ProminenceRatio  float64
}

// AmplitudeRec holds the parameters owned by the amplitude estimator.
type AmplitudeRec struct {
	MaxSlope           float64
	BoostSlope         float64
	SmoothWindowFrames int
}

// SmoothnessRec holds the parameters owned by the smoothness estimator.
type SmoothnessRec struct {
	ProminenceRatio float64
	MinProminence   float64
}

// IntensityRec is the intensity estimator's scaling of the base prominence.
type IntensityRec struct {
	ProminenceRatio  float64
	AdjustmentFactor float64
}

// Recommend analyzes a raw prediction signal and derives postprocessing
// options from it.
func Recommend(signal []float64) Recommendation {
	features := analysis.Analyze(signal)

	freq := ByFrequency(features)
	amp := ByAmplitude(features)
	smooth := BySmoothness(features)

	base := math.Max(freq.ProminenceRatio, smooth.ProminenceRatio)
	intensity := ByIntensity(features, base)

	opts := postprocess.DefaultOptions()
	opts.MinSlope = freq.MinSlope
	opts.MergeThresholdMS = freq.MergeThresholdMS
	opts.MaxSlope = amp.MaxSlope
	opts.BoostSlope = amp.BoostSlope
	opts.SmoothWindowFrames = amp.SmoothWindowFrames
	opts.MinProminence = smooth.MinProminence
	opts.ProminenceRatio = intensity.ProminenceRatio

	// FFT denoising stays on either way; a clear periodic component sizes
	// the low-frequency band from half the period.
	opts.FFTDenoise = true
	if features.MainFrequency > 0.01 && features.PeriodLength > 0 {
		frames := int(features.PeriodLength / 2)
		if frames < 5 {
			frames = 5
		}
		if frames > 20 {
			frames = 20
		}
		opts.FFTFramesPerComponent = frames
	} else {
		opts.FFTFramesPerComponent = 10
	}

	return Recommendation{
		Options:             opts,
		Features:            features,
		BaseProminenceRatio: base,
		AdjustmentFactor:    intensity.AdjustmentFactor,
		Reasoning:           buildReasoning(features, intensity.AdjustmentFactor),
	}
}

// ByFrequency maps the dominant frequency and extrema density to the
// motion-rate floor, merge window, and a prominence baseline. Faster
// signals get a lower slope floor and a tighter merge window.
func ByFrequency(f analysis.Features) FrequencyRec {
	freqNorm := math.Min(1.0, f.MainFrequency*100)

	minSlope := 1.5 + 1.5*(1.0-freqNorm)
	minSlope = math.Max(1.5, math.Min(3.0, minSlope))

	var mergeMS float64
	if f.PeriodLength > 0 {
		periodMS := f.PeriodLength / 30.0 * 1000.0
		mergeMS = math.Max(150.0, math.Min(300.0, periodMS*0.15))
	} else {
		mergeMS = 150.0 + 150.0*(1.0-freqNorm)
	}

	prominence := 0.10 + math.Min(0.10, f.ExtremaDensity)

	return FrequencyRec{
		MinSlope:         minSlope,
		MergeThresholdMS: mergeMS,
		ProminenceRatio:  prominence,
	}
}

// ByAmplitude maps change magnitude to the slope caps and the smoothing
// window. High variability keeps the window short to preserve detail.
func ByAmplitude(f analysis.Features) AmplitudeRec {
	avgAmplitude := (f.MeanChange + f.MaxChange) / 2.0
	rangeNorm := 0.0
	if f.Range > 0 {
		rangeNorm = math.Min(1.0, f.Range)
	}
	ampNorm := math.Min(1.0, (avgAmplitude*2.0+rangeNorm)/2.0)

	rec := AmplitudeRec{
		MaxSlope:   2.5 + 1.5*ampNorm,
		BoostSlope: 1.5 + 1.5*ampNorm,
	}

	switch {
	case f.StdChange > 0.15:
		rec.SmoothWindowFrames = 5
	case f.StdChange > 0.08:
		rec.SmoothWindowFrames = 6
	case f.StdChange > 0.03:
		rec.SmoothWindowFrames = 7
	default:
		rec.SmoothWindowFrames = 8
	}
	return rec
}

// BySmoothness raises the prominence thresholds for rough or unstable
// signals so that noise does not become keyframes.
func BySmoothness(f analysis.Features) SmoothnessRec {
	combined := (f.Smoothness + f.Stability) / 2.0
	return SmoothnessRec{
		ProminenceRatio: 0.10 + 0.10*(1.0-combined),
		MinProminence:   0.015 * (1.0 - combined),
	}
}

// ByIntensity scales the base prominence by the balance between
// high-intensity and low-intensity stretches. More high-intensity content
// lowers prominence so more actions survive.
func ByIntensity(f analysis.Features, baseProminence float64) IntensityRec {
	balance := f.HighIntensityRatio - f.LowIntensityRatio
	factor := 1.0 - balance*0.15*(1.0+math.Min(f.IntensityVariance, 1.0))
	factor = math.Max(0.8, math.Min(1.2, factor))

	adjusted := baseProminence * factor
	adjusted = math.Max(0.10, math.Min(0.20, adjusted))

	return IntensityRec{ProminenceRatio: adjusted, AdjustmentFactor: factor}
}
