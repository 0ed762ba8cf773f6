package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
)

// buildReasoning assembles an explanation from the feature thresholds that
// fired. The phrasing mirrors what the recommendation actually did.
func buildReasoning(f analysis.Features, adjustmentFactor float64) string {
	var parts []string

	if f.MainFrequency > 0.01 {
		parts = append(parts, fmt.Sprintf("Signal shows periodic behavior (frequency: %.4f)", f.MainFrequency))
	} else {
		parts = append(parts, "Signal shows low or no clear periodicity")
	}

	switch {
	case f.MeanChange > 0.1:
		parts = append(parts, "Large amplitude changes detected")
	case f.MeanChange > 0.05:
		parts = append(parts, "Moderate amplitude changes")
	default:
		parts = append(parts, "Small amplitude changes")
	}

	if f.Smoothness < 0.5 {
		parts = append(parts, "Signal is relatively rough, using higher prominence thresholds")
	} else if f.Smoothness > 0.7 {
		parts = append(parts, "Signal is smooth, using lower prominence thresholds")
	}

	if f.HighIntensityRatio > 0.3 {
		parts = append(parts, fmt.Sprintf("High-intensity regions detected (%.1f%%), allowing more actions for climax scenes", f.HighIntensityRatio*100))
	}
	if f.LowIntensityRatio > 0.3 {
		parts = append(parts, fmt.Sprintf("Low-intensity regions detected (%.1f%%), reducing actions for calm scenes", f.LowIntensityRatio*100))
	}

	if math.Abs(adjustmentFactor-1.0) > 0.05 {
		if adjustmentFactor < 1.0 {
			parts = append(parts, fmt.Sprintf("Adjusted prominence for more dynamic experience (factor: %.2f)", adjustmentFactor))
		} else {
			parts = append(parts, fmt.Sprintf("Adjusted prominence for smoother experience (factor: %.2f)", adjustmentFactor))
		}
	}

	if f.ExtremaDensity > 0.1 {
		parts = append(parts, "High density of extrema points, filtering with prominence")
	} else if f.ExtremaDensity < 0.02 {
		parts = append(parts, "Low density of extrema points")
	}

	if len(parts) == 0 {
		return "Standard parameters recommended based on signal analysis"
	}
	return strings.Join(parts, ". ") + "."
}
