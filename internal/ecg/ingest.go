package ecg

import "math"

// minFiniteFraction is the smallest share of finite time samples for which
// interpolation is attempted. Below it the strip is rejected outright.
const minFiniteFraction = 0.9

// Sanitize validates raw time/voltage arrays and returns a Recording safe
// for beat detection. Missing time samples (NaN/Inf, typically from blank
// CSV cells) are recovered by position-indexed linear interpolation when
// fewer than 10% of samples are missing. Voltage is never interpolated: any
// non-finite voltage fails the strip. Sanitizing an already-clean recording
// is a no-op apart from copying.
func Sanitize(time, voltage []float64) (Recording, error) {
	if len(time) != len(voltage) {
		return Recording{}, &MalformedDataError{
			FiniteFraction: finiteFraction(time),
			TimeLen:        len(time),
			VoltageLen:     len(voltage),
			Reason:         "time and voltage arrays differ in length",
		}
	}
	if len(time) == 0 {
		return Recording{}, &MalformedDataError{
			Reason: "recording contains no samples",
		}
	}

	t := append([]float64(nil), time...)
	if CanInterpolate(t) {
		t = Interpolate(t)
	}

	if frac := finiteFraction(t); !allFinite(t) {
		return Recording{}, &MalformedDataError{
			FiniteFraction: frac,
			TimeLen:        len(t),
			VoltageLen:     len(voltage),
			Reason:         "time array contains non-finite values after interpolation",
		}
	}
	if !allFinite(voltage) {
		return Recording{}, &MalformedDataError{
			FiniteFraction: finiteFraction(voltage),
			TimeLen:        len(t),
			VoltageLen:     len(voltage),
			Reason:         "voltage array contains non-finite values",
		}
	}

	return Recording{
		Time:    t,
		Voltage: append([]float64(nil), voltage...),
	}, nil
}

// CanInterpolate reports whether the time array has any missing samples and
// a finite fraction of at least 0.9. At exactly 10% missing the array is
// rejected.
func CanInterpolate(time []float64) bool {
	if len(time) == 0 {
		return false
	}
	frac := finiteFraction(time)
	return frac < 1 && frac >= minFiniteFraction
}

// Interpolate fills non-finite entries of time by fitting a piecewise-linear
// function through the finite (index, value) pairs and evaluating it at
// every index. Finite samples are preserved exactly. Gaps before the first
// or after the last finite sample cannot be extrapolated and are left
// non-finite, which fails the subsequent finite-value check in Sanitize.
func Interpolate(time []float64) []float64 {
	out := append([]float64(nil), time...)

	prev := -1 // index of the last finite sample seen
	for i, v := range out {
		if !isFinite(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			// Linear fill across the gap (prev, i).
			slope := (v - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + slope*float64(j-prev)
			}
		}
		prev = i
	}
	return out
}

// ResolveWindow returns the analysis window for a recording: the requested
// window when it is ordered and lies within [min(time), max(time)], the
// full-recording window when none is requested. A reversed or out-of-range
// request yields an InvalidWindowError; callers fall back to the full
// window on it.
func ResolveWindow(rec Recording, requested *Window) (Window, error) {
	full := Window{}
	if len(rec.Time) > 0 {
		full = Window{Start: rec.Time[0], End: rec.Duration()}
	}
	if requested == nil {
		return full, nil
	}
	if requested.Start > requested.End || requested.Start < full.Start || requested.End > full.End {
		return Window{}, &InvalidWindowError{
			Start: requested.Start,
			End:   requested.End,
			Min:   full.Start,
			Max:   full.End,
		}
	}
	return *requested, nil
}

func finiteFraction(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	finite := 0
	for _, v := range vals {
		if isFinite(v) {
			finite++
		}
	}
	return float64(finite) / float64(len(vals))
}

func allFinite(vals []float64) bool {
	for _, v := range vals {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
