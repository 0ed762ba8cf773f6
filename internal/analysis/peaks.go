package analysis

import "math"

// FindPeaks returns the indices of local maxima whose prominence reaches
// minProminence. A peak's prominence is its height above the higher of the
// two valley floors reached before a taller sample appears on either side.
func FindPeaks(x []float64, minProminence float64) []int {
	var peaks []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] > x[i-1] && x[i] > x[i+1] {
			if Prominence(x, i) >= minProminence {
				peaks = append(peaks, i)
			}
		}
	}
	return peaks
}

// Prominence computes the topographic prominence of the sample at index i.
func Prominence(x []float64, i int) float64 {
	leftMin := x[i]
	for j := i - 1; j >= 0; j-- {
		if x[j] > x[i] {
			break
		}
		if x[j] < leftMin {
			leftMin = x[j]
		}
	}
	rightMin := x[i]
	for j := i + 1; j < len(x); j++ {
		if x[j] > x[i] {
			break
		}
		if x[j] < rightMin {
			rightMin = x[j]
		}
	}
	return x[i] - math.Max(leftMin, rightMin)
}
