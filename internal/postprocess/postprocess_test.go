package postprocess

import (
	"math"
	"testing"
)

func defaultConfig(frameRate float64) Config {
	return Config{FrameRate: frameRate, Options: DefaultOptions()}
}

func makeSine(n int, period float64, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func TestApplyEmptySignal(t *testing.T) {
	p := Apply(nil, defaultConfig(30))
	if len(p.Values) != 0 || len(p.GraphPoints) != 0 {
		t.Errorf("empty signal should yield an empty result, got %+v", p)
	}
}

func TestApplyConstantSignal(t *testing.T) {
	signal := make([]float64, 100)
	for i := range signal {
		signal[i] = 0.25
	}
	p := Apply(signal, defaultConfig(30))

	if len(p.Values) != len(signal) {
		t.Fatalf("values length = %d, want %d", len(p.Values), len(signal))
	}
	for i, v := range p.Values {
		if math.Abs(v-50) > 1e-9 {
			t.Fatalf("flat signal value[%d] = %v, want 50", i, v)
		}
	}
}

func TestApplySineProducesKeyframes(t *testing.T) {
	p := Apply(makeSine(600, 60.0, 1.0), defaultConfig(30))

	if len(p.GraphPoints) < 4 {
		t.Fatalf("got %d keyframes from a 10-cycle sine, want at least 4", len(p.GraphPoints))
	}
	for _, gp := range p.GraphPoints {
		if gp.Value < 0 || gp.Value > 100 {
			t.Errorf("keyframe value %v outside [0,100]", gp.Value)
		}
		if gp.Position < 0 || gp.Position > 599 {
			t.Errorf("keyframe position %v outside the signal", gp.Position)
		}
	}
	for i := 1; i < len(p.GraphPoints); i++ {
		if p.GraphPoints[i].Position <= p.GraphPoints[i-1].Position {
			t.Fatalf("keyframe positions not strictly increasing at %d", i)
		}
	}
	for _, v := range p.Values {
		if v < 0 || v > 100 {
			t.Errorf("processed value %v outside [0,100]", v)
		}
	}
}

func TestRescaleDegenerate(t *testing.T) {
	out := rescale([]float64{0.7, 0.7, 0.7})
	for _, v := range out {
		if v != 50 {
			t.Fatalf("degenerate rescale = %v, want all 50", out)
		}
	}
}

func TestRescaleRange(t *testing.T) {
	out := rescale([]float64{-1, 0, 1})
	want := []float64{0, 50, 100}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Fatalf("rescale = %v, want %v", out, want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	out := movingAverage([]float64{0, 3, 0, 3, 0}, 3)
	want := []float64{1.5, 1, 2, 1, 1.5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Fatalf("moving average = %v, want %v", out, want)
		}
	}
}

func TestFFTDenoiseAttenuatesNoise(t *testing.T) {
	clean := makeSine(300, 60.0, 1.0)
	noisy := make([]float64, len(clean))
	for i := range noisy {
		noisy[i] = clean[i] + 0.3*math.Sin(float64(i)*2.9)
	}

	denoised := fftDenoise(noisy, 60, 10)
	if len(denoised) != len(noisy) {
		t.Fatalf("denoised length = %d, want %d", len(denoised), len(noisy))
	}

	if rough(denoised) >= rough(noisy) {
		t.Errorf("denoising should reduce frame-to-frame roughness: %v >= %v",
			rough(denoised), rough(noisy))
	}
}

// rough is the mean absolute second difference.
func rough(x []float64) float64 {
	sum := 0.0
	for i := 2; i < len(x); i++ {
		sum += math.Abs(x[i] - 2*x[i-1] + x[i-2])
	}
	return sum / float64(len(x)-2)
}

func TestMergeKeyframesKeepsExtreme(t *testing.T) {
	cfg := defaultConfig(30) // 200ms at 30fps = 6 frames
	points := []GraphPoint{{Position: 0, Value: 40}, {Position: 2, Value: 90}}
	merged := mergeKeyframes(points, cfg, 50)
	if len(merged) != 1 || merged[0].Value != 90 {
		t.Errorf("merged = %v, want the value farther from the median kept", merged)
	}

	points = []GraphPoint{{Position: 0, Value: 40}, {Position: 30, Value: 90}}
	merged = mergeKeyframes(points, cfg, 50)
	if len(merged) != 2 {
		t.Errorf("distant keyframes should not merge, got %v", merged)
	}
}

func TestLimitSlopesCapsRise(t *testing.T) {
	cfg := defaultConfig(30)
	points := []GraphPoint{{Position: 0, Value: 0}, {Position: 10, Value: 100}}
	limited := limitSlopes(points, cfg)
	if len(limited) != 2 {
		t.Fatalf("limited = %v, want both keyframes kept", limited)
	}
	want := cfg.MaxSlope * 10
	if math.Abs(limited[1].Value-want) > 1e-9 {
		t.Errorf("capped rise = %v, want %v", limited[1].Value, want)
	}
}

func TestLimitSlopesCapsFall(t *testing.T) {
	cfg := defaultConfig(30)
	points := []GraphPoint{{Position: 0, Value: 100}, {Position: 10, Value: 0}}
	limited := limitSlopes(points, cfg)
	want := 100 - cfg.BoostSlope*10
	if math.Abs(limited[1].Value-want) > 1e-9 {
		t.Errorf("capped fall = %v, want %v", limited[1].Value, want)
	}
}

func TestLimitSlopesDropsDrift(t *testing.T) {
	cfg := defaultConfig(30)
	// The middle keyframe moves 1 unit over 10 frames, well under the
	// MinSlope floor of 2 units/frame.
	points := []GraphPoint{
		{Position: 0, Value: 50},
		{Position: 10, Value: 51},
		{Position: 40, Value: 100},
	}
	limited := limitSlopes(points, cfg)
	for _, p := range limited {
		if p.Position == 10 {
			t.Errorf("drift keyframe should be dropped, got %v", limited)
		}
	}
}

func TestBuildActionsFromGraphPoints(t *testing.T) {
	p := Processed{GraphPoints: []GraphPoint{
		{Position: 0, Value: 5},
		{Position: 10, Value: 95},
	}}
	actions := BuildActions(p, nil, 30)
	if len(actions) != 2 {
		t.Fatalf("actions = %v, want 2", actions)
	}
	if actions[0].At != 0 || actions[0].Pos != 5 {
		t.Errorf("first action = %+v, want {0 5}", actions[0])
	}
	if actions[1].At != 333 {
		t.Errorf("second action at = %d, want 333 (frame 10 at 30fps)", actions[1].At)
	}
	// A 90-unit jump over 333ms exceeds the velocity cap: 15/100ms
	// saturates at 30, so the position is clipped to 5+30.
	if actions[1].Pos != 35 {
		t.Errorf("second action pos = %d, want velocity-clipped 35", actions[1].Pos)
	}
}

func TestBuildActionsTimestampBump(t *testing.T) {
	p := Processed{GraphPoints: []GraphPoint{
		{Position: 0, Value: 40},
		{Position: 0, Value: 45},
	}}
	actions := BuildActions(p, nil, 30)
	if len(actions) != 2 {
		t.Fatalf("actions = %v, want 2 after collision bump", actions)
	}
	if actions[0].At != 0 || actions[1].At != 1 {
		t.Errorf("timestamps = %d/%d, want 0/1", actions[0].At, actions[1].At)
	}
}

func TestBuildActionsFallbackToSeries(t *testing.T) {
	p := Processed{Values: []float64{50, 50, 50}}
	actions := BuildActions(p, nil, 30)
	if len(actions) != 3 {
		t.Fatalf("actions = %v, want one per frame", actions)
	}
	for i, a := range actions {
		if a.Pos != 50 {
			t.Errorf("action[%d].Pos = %d, want 50", i, a.Pos)
		}
	}
	if actions[1].At != 33 || actions[2].At != 67 {
		t.Errorf("timestamps = %d/%d, want 33/67", actions[1].At, actions[2].At)
	}
}

func TestBuildActionsDefault(t *testing.T) {
	actions := BuildActions(Processed{}, nil, 30)
	if len(actions) != 1 || actions[0].At != 0 || actions[0].Pos != 50 {
		t.Errorf("actions = %v, want the single {0 50} fallback", actions)
	}
}

func TestAdjustByIntensity(t *testing.T) {
	signal := []float64{0.05}
	const stepMS = 33.333

	// Low intensity pulls extremes toward the center band.
	if got := adjustByIntensity(5, 0, stepMS, signal, 0.1, 0.5); got != 45 {
		t.Errorf("low-intensity remap of 5 = %v, want 45", got)
	}
	if got := adjustByIntensity(95, 0, stepMS, signal, 0.1, 0.5); got != 55 {
		t.Errorf("low-intensity remap of 95 = %v, want 55", got)
	}

	// High intensity keeps extremes untouched.
	if got := adjustByIntensity(5, 0, stepMS, signal, 0.01, 0.02); got != 5 {
		t.Errorf("high-intensity remap of 5 = %v, want 5", got)
	}

	// Medium intensity remaps moderately.
	if got := adjustByIntensity(5, 0, stepMS, signal, 0.01, 0.5); got != 40 {
		t.Errorf("medium-intensity remap of 5 = %v, want 40", got)
	}
	if got := adjustByIntensity(95, 0, stepMS, signal, 0.01, 0.5); got != 60 {
		t.Errorf("medium-intensity remap of 95 = %v, want 60", got)
	}

	// Non-extreme positions are never remapped.
	if got := adjustByIntensity(50, 0, stepMS, signal, 0.1, 0.5); got != 50 {
		t.Errorf("non-extreme remap = %v, want unchanged 50", got)
	}
}

func TestBuildActionsIdempotent(t *testing.T) {
	p := Processed{GraphPoints: []GraphPoint{
		{Position: 0, Value: 5},
		{Position: 0, Value: 20},
		{Position: 10, Value: 95},
		{Position: 20, Value: 10},
	}}
	raw := makeSine(100, 25.0, 1.0)

	first := BuildActions(p, raw, 30)
	second := BuildActions(p, raw, 30)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("action %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSmoothActionsVelocityInvariant(t *testing.T) {
	actions := []Action{
		{At: 0, Pos: 0},
		{At: 50, Pos: 100},
		{At: 100, Pos: 0},
		{At: 400, Pos: 100},
	}
	smoothed := smoothActions(actions)
	for i := 1; i < len(smoothed); i++ {
		dt := smoothed[i].At - smoothed[i-1].At
		if dt <= 0 {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
		change := math.Abs(float64(smoothed[i].Pos - smoothed[i-1].Pos))
		allowed := math.Min(maxChangePerAction*float64(dt)/100.0, maxChangePerAction*2)
		// Rounding can land one unit over the float allowance.
		if change > allowed+1 {
			t.Errorf("change %v over %dms exceeds allowance %v", change, dt, allowed)
		}
	}
}
