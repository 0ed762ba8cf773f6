package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

// Features describes the shape of a prediction signal. Every field is a
// plain scalar so the recommender's contract stays checkable at compile
// time instead of going through a dynamically keyed map.
type Features struct {
	Mean   float64
	Std    float64
	Range  float64
	Median float64

	MeanChange float64
	MaxChange  float64
	StdChange  float64

	MainFrequency float64 // cycles per frame
	PeriodLength  float64 // frames, 0 when no dominant frequency

	ExtremaDensity float64
	Smoothness     float64 // [0,1], 1 = perfectly smooth

	Skewness float64
	Kurtosis float64

	Periodicity float64 // [0,1] autocorrelation at the detected period
	Period      float64 // frames, from autocorrelation

	Stability float64 // [0,1], 1 = uniform variance across the signal

	HighIntensityRatio float64
	LowIntensityRatio  float64
	IntensityVariance  float64
	MeanIntensity      float64
	MedianIntensity    float64
}

// defaultFeatures is returned for signals too short to analyze.
func defaultFeatures() Features {
	return Features{
		Smoothness:         1.0,
		Stability:          1.0,
		HighIntensityRatio: 0.5,
		LowIntensityRatio:  0.5,
	}
}

// Analyze extracts the full feature set from a raw prediction signal.
// Signals shorter than 3 samples yield neutral defaults rather than an error.
func Analyze(signal []float64) Features {
	n := len(signal)
	if n < 3 {
		return defaultFeatures()
	}

	f := Features{
		Mean:   stat.Mean(signal, nil),
		Std:    stat.PopStdDev(signal, nil),
		Range:  peakToPeak(signal),
		Median: median(signal),
	}

	diffs := diff(signal)
	absSum, absMax := 0.0, 0.0
	for _, d := range diffs {
		a := math.Abs(d)
		absSum += a
		if a > absMax {
			absMax = a
		}
	}
	f.MeanChange = absSum / float64(len(diffs))
	f.MaxChange = absMax
	f.StdChange = stat.PopStdDev(diffs, nil)

	f.MainFrequency, f.PeriodLength = frequencyFeatures(signal)
	f.ExtremaDensity = extremaDensity(signal)
	f.Smoothness = smoothness(signal)
	f.Skewness = stat.Skew(signal, nil)
	f.Kurtosis = stat.ExKurtosis(signal, nil)

	f.Periodicity, f.Period = periodicity(signal)
	if f.Period == 0 {
		f.Period = f.PeriodLength
	}

	f.Stability = stability(signal, stabilityWindow)

	iv := IntensityDistribution(signal)
	f.HighIntensityRatio = iv.HighRatio
	f.LowIntensityRatio = iv.LowRatio
	f.IntensityVariance = iv.Variance
	f.MeanIntensity = iv.Mean
	f.MedianIntensity = iv.Median

	return f
}

const stabilityWindow = 100

func diff(x []float64) []float64 {
	d := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		d[i-1] = x[i] - x[i-1]
	}
	return d
}

func peakToPeak(x []float64) float64 {
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

func median(x []float64) float64 {
	c := make([]float64, len(x))
	copy(c, x)
	sort.Float64s(c)
	mid := len(c) / 2
	if len(c)%2 == 0 {
		return (c[mid-1] + c[mid]) / 2
	}
	return c[mid]
}

// frequencyFeatures finds the dominant frequency via a Hann-windowed FFT
// and returns it with the corresponding period length in frames.
func frequencyFeatures(signal []float64) (mainFreq, periodLength float64) {
	n := len(signal)
	if n < 4 {
		return 0, 0
	}

	windowed := make([]float64, n)
	copy(windowed, signal)
	window.Hann(windowed)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	// Positive-frequency half only, skipping the DC term.
	half := n / 2
	if half < 2 {
		return 0, 0
	}
	best, bestPower := 0, 0.0
	for i := 1; i < half; i++ {
		p := real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i])
		if p > bestPower {
			bestPower = p
			best = i
		}
	}
	if best == 0 {
		return 0, 0
	}
	mainFreq = float64(best) / float64(n)
	return mainFreq, 1.0 / mainFreq
}

// extremaDensity counts prominent peaks and troughs per sample.
func extremaDensity(signal []float64) float64 {
	n := len(signal)
	if n < 3 {
		return 0
	}
	threshold := math.Max(peakToPeak(signal)*0.05, 0.01)

	peaks := FindPeaks(signal, threshold)
	neg := make([]float64, n)
	for i, v := range signal {
		neg[i] = -v
	}
	troughs := FindPeaks(neg, threshold)

	return float64(len(peaks)+len(troughs)) / float64(n)
}

// smoothness maps the mean absolute second difference, relative to the
// signal range, into [0,1]. A flat signal is maximally smooth.
func smoothness(signal []float64) float64 {
	n := len(signal)
	if n < 3 {
		return 1.0
	}
	second := diff(diff(signal))
	if len(second) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, v := range second {
		sum += math.Abs(v)
	}
	avg := sum / float64(len(second))

	r := peakToPeak(signal)
	if r <= 0 {
		return 1.0
	}
	return clamp01(1.0 / (1.0 + avg/r))
}

// periodicity normalizes the signal and searches its autocorrelation for
// the first prominent peak after lag zero.
func periodicity(signal []float64) (score, period float64) {
	n := len(signal)
	if n < 4 {
		return 0, 0
	}

	mean := stat.Mean(signal, nil)
	std := stat.PopStdDev(signal, nil)
	if std == 0 {
		return 0, 0
	}
	norm := make([]float64, n)
	for i, v := range signal {
		norm[i] = (v - mean) / std
	}

	autocorr := autocorrelate(norm)
	if autocorr[0] == 0 {
		return 0, 0
	}
	for i := range autocorr {
		autocorr[i] /= autocorr[0]
	}
	autocorr[0] = 1

	searchRange := n / 2
	if searchRange > len(autocorr) {
		searchRange = len(autocorr)
	}
	if searchRange < 3 {
		return 0, 0
	}

	peaks := FindPeaks(autocorr[1:searchRange], 0.1)
	if len(peaks) == 0 {
		return 0, 0
	}
	lag := peaks[0] + 1 // offset for the skipped zero lag
	return autocorr[lag], float64(lag)
}

// autocorrelate returns the non-negative-lag linear autocorrelation of x,
// computed through a zero-padded FFT. The result is unnormalized.
func autocorrelate(x []float64) []float64 {
	n := len(x)
	m := 1
	for m < 2*n {
		m <<= 1
	}
	padded := make([]float64, m)
	copy(padded, x)

	fft := fourier.NewFFT(m)
	coeffs := fft.Coefficients(nil, padded)
	for i, c := range coeffs {
		coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	full := fft.Sequence(nil, coeffs)
	// The fft scale factor cancels when the caller normalizes by lag 0.
	return full[:n]
}

// stability measures how uniform the variance is across overlapping windows.
func stability(signal []float64, windowSize int) float64 {
	n := len(signal)
	if n < windowSize {
		variance := stat.PopVariance(signal, nil)
		r := peakToPeak(signal)
		if r <= 0 {
			return 1.0
		}
		return clamp01(1.0 / (1.0 + variance/r))
	}

	var variances []float64
	for i := 0; i+windowSize <= n; i += windowSize / 2 {
		variances = append(variances, stat.PopVariance(signal[i:i+windowSize], nil))
	}
	if len(variances) == 0 {
		return 1.0
	}

	meanVar := stat.Mean(variances, nil)
	if meanVar <= 0 {
		return 1.0
	}
	varOfVar := stat.PopVariance(variances, nil)
	return clamp01(1.0 / (1.0 + varOfVar/meanVar))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
