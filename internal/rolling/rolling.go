// Package rolling provides windowed statistics over fixed numeric series.
package rolling

import "math"

// Mean computes the rolling mean of x over window w. Indices with fewer
// than w observations behind them are NaN. Window sizes below 2 yield an
// all-NaN result.
func Mean(x []float64, w int) []float64 {
	out := nanSlice(len(x))
	if w < 2 || len(x) < w {
		return out
	}
	for i := w - 1; i < len(x); i++ {
		sum := 0.0
		for j := i - w + 1; j <= i; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(w)
	}
	return out
}

// Std computes the rolling sample standard deviation of x over window w,
// dividing squared deviations by w-1. The sample convention matches the
// statistical packages consumed downstream and must not be changed to the
// population form. Undefined indices are NaN.
func Std(x []float64, w int) []float64 {
	out := nanSlice(len(x))
	if w < 2 || len(x) < w {
		return out
	}
	means := Mean(x, w)
	for i := w - 1; i < len(x); i++ {
		// A constant window has exactly zero spread; deviations from the
		// float mean would leave rounding residue instead of zero.
		if constantWindow(x, i-w+1, i) {
			out[i] = 0
			continue
		}
		mean := means[i]
		ss := 0.0
		for j := i - w + 1; j <= i; j++ {
			diff := x[j] - mean
			ss += diff * diff
		}
		out[i] = math.Sqrt(ss / float64(w-1))
	}
	return out
}

// Defined reports whether the value at an index carries a real observation.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// constantWindow reports whether x[lo..hi] holds a single repeated value.
// NaN never compares equal, so windows containing NaN are not constant.
func constantWindow(x []float64, lo, hi int) bool {
	for j := lo + 1; j <= hi; j++ {
		if x[j] != x[lo] {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
