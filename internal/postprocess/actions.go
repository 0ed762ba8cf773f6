package postprocess

import (
	"math"
	"sort"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
)

// Action is a single timed position command.
type Action struct {
	At  int `json:"at"`
	Pos int `json:"pos"`
}

// maxChangePerAction bounds the position delta between consecutive
// actions, scaled per 100ms of separation and hard-capped at twice that.
const maxChangePerAction = 15

// BuildActions converts the synthesis output into the final action list.
// It prefers graph points, falls back to the per-frame series, and always
// returns at least one action. rawSignal, when long enough, drives the
// intensity-based remapping of extreme positions.
func BuildActions(p Processed, rawSignal []float64, frameRate float64) []Action {
	stepMS := 33.3
	if frameRate > 1e-6 {
		stepMS = 1000.0 / frameRate
	}
	low, high, hasThresholds := analysis.IntensityThresholds(rawSignal)

	adjust := func(value float64, timeMS int) float64 {
		if !hasThresholds {
			return value
		}
		return adjustByIntensity(value, timeMS, stepMS, rawSignal, low, high)
	}

	var actions []Action
	if len(p.GraphPoints) > 0 {
		lastTime := -1
		for _, point := range p.GraphPoints {
			timeMS := int(math.Round(point.Position * stepMS))
			if lastTime >= 0 && timeMS <= lastTime {
				timeMS = lastTime + 1
			}
			value := adjust(point.Value, timeMS)
			actions = append(actions, Action{
				At:  maxInt(0, timeMS),
				Pos: int(math.Round(clamp(value, 0, 100))),
			})
			lastTime = timeMS
		}
	}
	if len(actions) == 0 && len(p.Values) > 0 {
		for idx, value := range p.Values {
			timeMS := int(math.Round(float64(idx) * stepMS))
			adjusted := adjust(value, timeMS)
			actions = append(actions, Action{
				At:  maxInt(0, timeMS),
				Pos: int(math.Round(clamp(adjusted, 0, 100))),
			})
		}
	}
	if len(actions) == 0 {
		return []Action{{At: 0, Pos: 50}}
	}

	// Same timestamp twice: the later entry wins.
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].At < actions[j].At })
	deduped := make([]Action, 0, len(actions))
	for _, a := range actions {
		if len(deduped) > 0 && deduped[len(deduped)-1].At == a.At {
			deduped[len(deduped)-1] = a
			continue
		}
		deduped = append(deduped, a)
	}

	return smoothActions(deduped)
}

// smoothActions limits position jumps between consecutive actions so the
// device motion stays continuous. The allowance grows with the time gap.
func smoothActions(actions []Action) []Action {
	if len(actions) < 2 {
		return actions
	}

	smoothed := make([]Action, 0, len(actions))
	lastTime := -1
	lastPos := math.NaN()

	for _, a := range actions {
		timeMS := a.At
		if lastTime >= 0 && timeMS <= lastTime {
			timeMS = lastTime + 1
		}
		pos := float64(a.Pos)
		if !math.IsNaN(lastPos) {
			change := pos - lastPos
			timeDiff := timeMS - lastTime
			allowed := float64(maxChangePerAction)
			if timeDiff > 0 {
				allowed = maxChangePerAction * float64(timeDiff) / 100.0
				allowed = math.Min(allowed, maxChangePerAction*2)
			}
			if math.Abs(change) > allowed {
				if change > 0 {
					pos = lastPos + allowed
				} else {
					pos = lastPos - allowed
				}
				pos = clamp(pos, 0, 100)
			}
		}
		smoothed = append(smoothed, Action{At: timeMS, Pos: int(math.Round(pos))})
		lastTime = timeMS
		lastPos = pos
	}
	return smoothed
}

// adjustByIntensity remaps extreme positions toward the center in calm
// stretches of the raw signal and leaves them untouched during intense
// ones. Non-extreme positions are never remapped.
func adjustByIntensity(value float64, timeMS int, stepMS float64, signal []float64, low, high float64) float64 {
	frameIdx := int(math.Round(float64(timeMS) / stepMS))
	if frameIdx < 0 || frameIdx >= len(signal) {
		return value
	}
	intensity := math.Abs(signal[frameIdx])

	extreme := value <= 10.0 || value >= 90.0
	if !extreme {
		return value
	}

	switch {
	case intensity < low:
		// Calm stretch: pull hard toward the center band.
		if value <= 10.0 {
			return 35.0 + value/10.0*20.0
		}
		return 45.0 + (value-90.0)/10.0*20.0
	case intensity > high:
		// Intense stretch: extreme positions are the point.
		return value
	default:
		if value <= 10.0 {
			return 30.0 + value/10.0*20.0
		}
		return 50.0 + (value-90.0)/10.0*20.0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
