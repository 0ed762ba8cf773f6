package postprocess

import (
	"math"
	"sort"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
)

// GraphPoint is a keyframe of the denoised signal: a frame position and a
// target position value in the 0-100 funscript domain.
type GraphPoint struct {
	Position float64 `json:"position"`
	Value    float64 `json:"value"`
}

// Processed is the output of the first synthesis stage: the full per-frame
// position series plus the sparse keyframes it was built from. GraphPoints
// may be empty when no prominent motion was found.
type Processed struct {
	Values      []float64
	GraphPoints []GraphPoint
}

// Apply runs the denoise, extrema selection, merge, and slope-envelope
// stages over a raw prediction signal.
func Apply(signal []float64, cfg Config) Processed {
	n := len(signal)
	if n == 0 {
		return Processed{}
	}

	work := signal
	if cfg.FFTDenoise {
		work = fftDenoise(signal, cfg.FFTWindowFrames, cfg.FFTFramesPerComponent)
	}
	smoothed := movingAverage(work, cfg.SmoothWindowFrames)
	scaled := rescale(smoothed)

	keyframes := selectKeyframes(smoothed, scaled, cfg)
	keyframes = mergeKeyframes(keyframes, cfg, medianOf(scaled))
	keyframes = limitSlopes(keyframes, cfg)

	values := scaled
	if len(keyframes) >= 2 {
		values = interpolate(keyframes, n)
	}
	return Processed{Values: values, GraphPoints: keyframes}
}

// rescale maps the signal linearly onto 0-100. A flat signal maps to the
// neutral midpoint.
func rescale(signal []float64) []float64 {
	lo, hi := signal[0], signal[0]
	for _, v := range signal[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(signal))
	span := hi - lo
	if span <= 1e-12 {
		for i := range out {
			out[i] = 50
		}
		return out
	}
	for i, v := range signal {
		out[i] = (v - lo) / span * 100
	}
	return out
}

// selectKeyframes picks prominent peaks and troughs of the smoothed signal
// and anchors the first and last frames so interpolation spans the video.
// Prominence is measured on the raw scale, where MinProminence is defined.
func selectKeyframes(smoothed, scaled []float64, cfg Config) []GraphPoint {
	n := len(smoothed)
	if n < 3 {
		points := make([]GraphPoint, 0, n)
		for i := 0; i < n; i++ {
			points = append(points, GraphPoint{Position: float64(i), Value: scaled[i]})
		}
		return points
	}

	lo, hi := smoothed[0], smoothed[0]
	for _, v := range smoothed[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	threshold := math.Max(cfg.ProminenceRatio*(hi-lo), cfg.MinProminence)

	indices := map[int]bool{0: true, n - 1: true}
	for _, i := range analysis.FindPeaks(smoothed, threshold) {
		indices[i] = true
	}
	neg := make([]float64, n)
	for i, v := range smoothed {
		neg[i] = -v
	}
	for _, i := range analysis.FindPeaks(neg, threshold) {
		indices[i] = true
	}

	sorted := make([]int, 0, len(indices))
	for i := range indices {
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)

	points := make([]GraphPoint, len(sorted))
	for k, i := range sorted {
		points[k] = GraphPoint{Position: float64(i), Value: scaled[i]}
	}
	return points
}

// mergeKeyframes collapses keyframes closer than the merge threshold,
// keeping whichever lies farther from the median position. The surviving
// extreme carries the perceptible stroke; its close neighbor is jitter.
func mergeKeyframes(points []GraphPoint, cfg Config, med float64) []GraphPoint {
	if len(points) < 2 {
		return points
	}
	frameRate := cfg.FrameRate
	if frameRate <= 1e-6 {
		frameRate = 30
	}
	mergeFrames := cfg.MergeThresholdMS / 1000 * frameRate

	out := points[:1]
	for _, p := range points[1:] {
		last := &out[len(out)-1]
		if p.Position-last.Position < mergeFrames {
			if math.Abs(p.Value-med) > math.Abs(last.Value-med) {
				*last = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// limitSlopes enforces the motion-rate envelope between consecutive
// keyframes: strokes slower than MinSlope units/frame are dropped as
// imperceptible drift, rising strokes are capped at MaxSlope, falling
// strokes at BoostSlope.
func limitSlopes(points []GraphPoint, cfg Config) []GraphPoint {
	if len(points) < 2 {
		return points
	}
	out := points[:1]
	for k, p := range points[1:] {
		prev := out[len(out)-1]
		dt := p.Position - prev.Position
		if dt <= 0 {
			continue
		}
		rate := math.Abs(p.Value-prev.Value) / dt
		last := k == len(points)-2
		if rate < cfg.MinSlope && !last {
			continue
		}
		if p.Value > prev.Value && rate > cfg.MaxSlope {
			p.Value = prev.Value + cfg.MaxSlope*dt
		} else if p.Value < prev.Value && rate > cfg.BoostSlope {
			p.Value = prev.Value - cfg.BoostSlope*dt
		}
		p.Value = math.Max(0, math.Min(100, p.Value))
		out = append(out, p)
	}
	return out
}

// interpolate expands keyframes back into a per-frame series, holding the
// boundary values outside the keyframe span.
func interpolate(points []GraphPoint, n int) []float64 {
	out := make([]float64, n)
	seg := 0
	for i := 0; i < n; i++ {
		x := float64(i)
		for seg < len(points)-2 && x > points[seg+1].Position {
			seg++
		}
		a, b := points[seg], points[seg+1]
		switch {
		case x <= a.Position:
			out[i] = a.Value
		case x >= b.Position:
			out[i] = b.Value
		default:
			t := (x - a.Position) / (b.Position - a.Position)
			out[i] = a.Value + t*(b.Value-a.Value)
		}
	}
	return out
}

func medianOf(x []float64) float64 {
	c := make([]float64, len(x))
	copy(c, x)
	sort.Float64s(c)
	mid := len(c) / 2
	if len(c)%2 == 0 {
		return (c[mid-1] + c[mid]) / 2
	}
	return c[mid]
}
