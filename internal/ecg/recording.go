// Package ecg implements the signal-validation and beat-detection core of
// the heart rate monitor: CSV-decoded time/voltage sanitization, a
// thresholding QRS peak detector, windowed mean heart rate, and a
// physiological plausibility check on the result.
package ecg

// Recording is a sanitized pair of equal-length time/voltage traces.
// Time is in seconds and non-decreasing; voltage is in millivolts. Both
// arrays are finite after Sanitize.
type Recording struct {
	Time    []float64
	Voltage []float64
}

// Window is an analysis window (start, end) in seconds with Start <= End,
// both within the recording's time range.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the strip duration, defined as the last (maximum) time
// sample.
func (r Recording) Duration() float64 {
	if len(r.Time) == 0 {
		return 0
	}
	return r.Time[len(r.Time)-1]
}

// VoltageExtremes returns the (min, max) of the voltage trace.
func (r Recording) VoltageExtremes() (min, max float64) {
	if len(r.Voltage) == 0 {
		return 0, 0
	}
	min, max = r.Voltage[0], r.Voltage[0]
	for _, v := range r.Voltage[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
