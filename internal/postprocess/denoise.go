package postprocess

import "gonum.org/v1/gonum/dsp/fourier"

// fftDenoise low-passes the signal in overlapping windows. Each window is
// transformed, every bin above windowFrames/framesPerComponent is zeroed,
// and the reconstructions are blended with triangular crossfade weights so
// window seams do not introduce steps of their own.
func fftDenoise(signal []float64, windowFrames, framesPerComponent int) []float64 {
	n := len(signal)
	if n < 8 {
		out := make([]float64, n)
		copy(out, signal)
		return out
	}
	if windowFrames < 8 {
		windowFrames = 8
	}
	if windowFrames > n {
		windowFrames = n
	}
	if framesPerComponent < 1 {
		framesPerComponent = 1
	}
	keep := windowFrames / framesPerComponent
	if keep < 1 {
		keep = 1
	}

	hop := windowFrames / 2
	fft := fourier.NewFFT(windowFrames)

	acc := make([]float64, n)
	weight := make([]float64, n)
	seg := make([]float64, windowFrames)

	for start := 0; ; start += hop {
		if start+windowFrames > n {
			start = n - windowFrames
		}
		copy(seg, signal[start:start+windowFrames])

		coeffs := fft.Coefficients(nil, seg)
		for i := keep + 1; i < len(coeffs); i++ {
			coeffs[i] = 0
		}
		rec := fft.Sequence(nil, coeffs)

		for i := 0; i < windowFrames; i++ {
			w := triangular(i, windowFrames)
			acc[start+i] += rec[i] / float64(windowFrames) * w
			weight[start+i] += w
		}

		if start == n-windowFrames {
			break
		}
	}

	out := make([]float64, n)
	for i := range out {
		if weight[i] > 0 {
			out[i] = acc[i] / weight[i]
		} else {
			out[i] = signal[i]
		}
	}
	return out
}

// triangular is a crossfade weight peaking at the window center. The
// floor keeps edge samples from dividing by a vanishing weight.
func triangular(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	x := 2*float64(i)/float64(n-1) - 1
	if x < 0 {
		x = -x
	}
	return 1 - x + 1e-3
}

// movingAverage smooths with a centered window, shrinking it at the edges
// so the output keeps the input's length and endpoints stay anchored.
func movingAverage(signal []float64, windowFrames int) []float64 {
	n := len(signal)
	out := make([]float64, n)
	if windowFrames <= 1 || n == 0 {
		copy(out, signal)
		return out
	}
	half := windowFrames / 2
	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= n {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += signal[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
