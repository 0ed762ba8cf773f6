package analysis

import (
	"math"
	"testing"
)

func makeSine(n int, period float64, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func TestAnalyzeShortSignal(t *testing.T) {
	for _, signal := range [][]float64{nil, {0.5}, {0.1, 0.2}} {
		f := Analyze(signal)
		if f.Smoothness != 1.0 {
			t.Errorf("short signal smoothness = %v, want 1.0", f.Smoothness)
		}
		if f.Stability != 1.0 {
			t.Errorf("short signal stability = %v, want 1.0", f.Stability)
		}
		if f.HighIntensityRatio != 0.5 || f.LowIntensityRatio != 0.5 {
			t.Errorf("short signal intensity ratios = %v/%v, want 0.5/0.5",
				f.HighIntensityRatio, f.LowIntensityRatio)
		}
		if f.MainFrequency != 0 || f.Periodicity != 0 {
			t.Errorf("short signal frequency features should be zero, got %v/%v",
				f.MainFrequency, f.Periodicity)
		}
	}
}

func TestAnalyzeSineFrequency(t *testing.T) {
	const period = 20.0
	signal := makeSine(400, period, 1.0)
	f := Analyze(signal)

	wantFreq := 1.0 / period
	if math.Abs(f.MainFrequency-wantFreq) > 0.01 {
		t.Errorf("main frequency = %v, want ~%v", f.MainFrequency, wantFreq)
	}
	if math.Abs(f.PeriodLength-period) > 3 {
		t.Errorf("period length = %v, want ~%v", f.PeriodLength, period)
	}
	if f.Periodicity < 0.5 {
		t.Errorf("periodicity = %v, want > 0.5 for a pure sine", f.Periodicity)
	}
	if math.Abs(f.Period-period) > 3 {
		t.Errorf("autocorrelation period = %v, want ~%v", f.Period, period)
	}
	if math.Abs(f.Range-2.0) > 0.01 {
		t.Errorf("range = %v, want ~2.0", f.Range)
	}
	if math.Abs(f.Mean) > 0.01 {
		t.Errorf("mean = %v, want ~0", f.Mean)
	}
}

func TestAnalyzeConstantSignal(t *testing.T) {
	signal := make([]float64, 100)
	for i := range signal {
		signal[i] = 0.4
	}
	f := Analyze(signal)

	if f.Std != 0 || f.Range != 0 {
		t.Errorf("constant signal std/range = %v/%v, want 0/0", f.Std, f.Range)
	}
	if f.Periodicity != 0 {
		t.Errorf("constant signal periodicity = %v, want 0", f.Periodicity)
	}
	if f.Smoothness != 1.0 {
		t.Errorf("constant signal smoothness = %v, want 1.0", f.Smoothness)
	}
	if f.ExtremaDensity != 0 {
		t.Errorf("constant signal extrema density = %v, want 0", f.ExtremaDensity)
	}
}

func TestAnalyzeBounds(t *testing.T) {
	signal := makeSine(500, 13.0, 0.8)
	for i := range signal {
		// Deterministic jitter so the signal is not a clean sine.
		signal[i] += 0.05 * math.Sin(float64(i)*1.7)
	}
	f := Analyze(signal)

	for name, v := range map[string]float64{
		"smoothness":  f.Smoothness,
		"stability":   f.Stability,
		"periodicity": f.Periodicity,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want within [0,1]", name, v)
		}
	}
	if f.ExtremaDensity < 0 || f.ExtremaDensity > 1 {
		t.Errorf("extrema density = %v, want within [0,1]", f.ExtremaDensity)
	}
}

func TestFindPeaks(t *testing.T) {
	signal := []float64{0, 1, 0, 2, 0}
	peaks := FindPeaks(signal, 0.5)
	if len(peaks) != 2 || peaks[0] != 1 || peaks[1] != 3 {
		t.Errorf("peaks = %v, want [1 3]", peaks)
	}
}

func TestFindPeaksProminenceFilter(t *testing.T) {
	// The bump at index 1 only rises 0.1 above its saddle; the peak at
	// index 3 is prominent over the full valley.
	signal := []float64{0, 1, 0.9, 1.05, 0}
	peaks := FindPeaks(signal, 0.5)
	if len(peaks) != 1 || peaks[0] != 3 {
		t.Errorf("peaks = %v, want [3]", peaks)
	}
}

func TestIntensityDistributionShort(t *testing.T) {
	iv := IntensityDistribution([]float64{0.1, 0.2, 0.3})
	if iv.HighRatio != 0.5 || iv.LowRatio != 0.5 || iv.Variance != 0 {
		t.Errorf("short signal intensity = %+v, want neutral defaults", iv)
	}
}

func TestIntensityDistributionConstant(t *testing.T) {
	signal := make([]float64, 50)
	for i := range signal {
		signal[i] = -0.3
	}
	iv := IntensityDistribution(signal)
	// With zero spread no sample is strictly above or below the thresholds.
	if iv.HighRatio != 0 || iv.LowRatio != 0 {
		t.Errorf("constant signal ratios = %v/%v, want 0/0", iv.HighRatio, iv.LowRatio)
	}
	if math.Abs(iv.Mean-0.3) > 1e-9 {
		t.Errorf("mean intensity = %v, want 0.3", iv.Mean)
	}
}

func TestIntensityThresholds(t *testing.T) {
	if _, _, ok := IntensityThresholds(make([]float64, 10)); ok {
		t.Error("thresholds should be unavailable for signals of 10 samples or fewer")
	}

	signal := makeSine(100, 25.0, 1.0)
	low, high, ok := IntensityThresholds(signal)
	if !ok {
		t.Fatal("thresholds should be available for 100 samples")
	}
	if low >= high {
		t.Errorf("low threshold %v should be below high threshold %v", low, high)
	}
	if low < 0 {
		t.Errorf("low threshold %v should be clamped at 0", low)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("median odd = %v, want 2", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("median even = %v, want 2.5", got)
	}
}
