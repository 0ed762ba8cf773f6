package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Intensity summarizes how the absolute signal magnitude is distributed,
// separating sustained high-activity stretches from calm ones.
type Intensity struct {
	HighRatio float64
	LowRatio  float64
	// Variance is the coefficient of variation of |signal|, not a true variance.
	Variance float64
	Mean     float64
	Median   float64
}

// IntensityDistribution classifies each sample of |signal| against
// mean ± 0.5·std thresholds. Signals shorter than 10 samples get the
// neutral half/half split.
func IntensityDistribution(signal []float64) Intensity {
	n := len(signal)
	if n < 10 {
		return Intensity{HighRatio: 0.5, LowRatio: 0.5}
	}

	intensity := make([]float64, n)
	for i, v := range signal {
		intensity[i] = math.Abs(v)
	}

	mean := stat.Mean(intensity, nil)
	std := stat.PopStdDev(intensity, nil)
	high := mean + 0.5*std
	low := math.Max(0, mean-0.5*std)

	highCount, lowCount := 0, 0
	for _, v := range intensity {
		if v > high {
			highCount++
		}
		if v < low {
			lowCount++
		}
	}

	return Intensity{
		HighRatio: float64(highCount) / float64(n),
		LowRatio:  float64(lowCount) / float64(n),
		Variance:  std / (mean + 1e-9),
		Mean:      mean,
		Median:    median(intensity),
	}
}

// IntensityThresholds derives the high/low cutoffs used to remap extreme
// positions. ok is false for signals too short to give stable statistics.
func IntensityThresholds(signal []float64) (low, high float64, ok bool) {
	if len(signal) <= 10 {
		return 0, 0, false
	}
	intensity := make([]float64, len(signal))
	for i, v := range signal {
		intensity[i] = math.Abs(v)
	}
	mean := stat.Mean(intensity, nil)
	std := stat.PopStdDev(intensity, nil)
	return math.Max(0, mean-0.5*std), mean + 0.5*std, true
}
