package ecg

import "sort"

const (
	// thresholdFraction of the global voltage peak marks QRS territory. A
	// fixed fraction works for clean strips where the QRS complex dominates;
	// it is not an adaptive detector and degrades on noisy or
	// baseline-wandering input.
	thresholdFraction = 0.75

	// runGap is the largest index gap (in samples) still considered part of
	// one above-threshold run. Anything wider separates two beats.
	runGap = 2

	// Physiological beat-count bounds in beats per second of strip duration,
	// roughly 36 and 150 BPM.
	minBeatsPerSecond = 0.6
	maxBeatsPerSecond = 2.5

	// maxExpectedVoltage bounds the plausible signal range in mV. Extremes
	// beyond it are flagged but do not invalidate the result.
	maxExpectedVoltage = 300
)

// Flag reasons attached to Metrics for advisory or validity conditions.
const (
	FlagImplausibleBeatCount = "beat count outside physiological bounds"
	FlagVoltageOutOfRange    = "voltage extremes outside expected signal range"
	FlagBPMUndefined         = "mean_hr_bpm undefined over zero-width window"
)

// Metrics is the output aggregate for one recording and analysis window.
// It is built once and never mutated afterwards. IsValid is false when the
// detected beat count is not physiologically plausible; Flags lists every
// advisory or invalidating condition observed.
type Metrics struct {
	VoltageMin float64   `json:"voltage_min"`
	VoltageMax float64   `json:"voltage_max"`
	Duration   float64   `json:"duration"`
	Beats      []float64 `json:"beats"`
	NumBeats   int       `json:"num_beats"`
	MeanHRBPM  float64   `json:"mean_hr_bpm"`
	Window     Window    `json:"window"`
	IsValid    bool      `json:"is_valid"`
	Flags      []string  `json:"flags,omitempty"`
}

// Analyze runs beat detection over a sanitized recording and derives the
// full metrics aggregate for the given window. It is a pure function of its
// inputs; recoverable conditions (no beats, implausible count, undefined
// BPM) become flags on the result rather than errors.
func Analyze(rec Recording, win Window) Metrics {
	vmin, vmax := rec.VoltageExtremes()
	beats := DetectBeats(rec)

	m := Metrics{
		VoltageMin: vmin,
		VoltageMax: vmax,
		Duration:   rec.Duration(),
		Beats:      beats,
		NumBeats:   len(beats),
		Window:     win,
	}

	bpm, err := BPM(beats, win)
	if err != nil {
		m.Flags = append(m.Flags, FlagBPMUndefined)
	} else {
		m.MeanHRBPM = bpm
	}

	m.IsValid = PhysiologicallyPlausible(m.NumBeats, m.Duration)
	if !m.IsValid {
		m.Flags = append(m.Flags, FlagImplausibleBeatCount)
	}
	if vmin < -maxExpectedVoltage || vmax > maxExpectedVoltage {
		m.Flags = append(m.Flags, FlagVoltageOutOfRange)
	}

	return m
}

// DetectBeats locates QRS peaks in the recording and returns their
// timestamps in ascending order. A strip with no sample above threshold
// (flat or inverted signal) yields no beats.
func DetectBeats(rec Recording) []float64 {
	if len(rec.Voltage) == 0 {
		return nil
	}
	threshold := DetermineThreshold(rec.Voltage)
	above := indicesAboveThreshold(rec.Voltage, threshold)
	if len(above) == 0 {
		return nil
	}

	closings := FindRunClosings(above)
	peaks := findPeakIndices(rec.Voltage, closings)

	times := make([]float64, len(peaks))
	for i, p := range peaks {
		times[i] = rec.Time[p]
	}
	return times
}

// DetermineThreshold returns the detection threshold: 75% of the peak
// voltage.
func DetermineThreshold(voltage []float64) float64 {
	max := voltage[0]
	for _, v := range voltage[1:] {
		if v > max {
			max = v
		}
	}
	return thresholdFraction * max
}

func indicesAboveThreshold(voltage []float64, threshold float64) []int {
	var idx []int
	for i, v := range voltage {
		if v > threshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// FindRunClosings splits the sorted above-threshold indices into contiguous
// runs, one per QRS complex, and returns the index closing each run: the
// sample just before a gap wider than runGap. The final run has no explicit
// closing; it ends at the last sample of the strip.
func FindRunClosings(above []int) []int {
	var closings []int
	for i := 1; i < len(above); i++ {
		if above[i]-above[i-1] > runGap {
			closings = append(closings, above[i-1])
		}
	}
	return closings
}

// findPeakIndices locates the maximum of the original voltage trace within
// each run span. Run boundaries come from the thresholded indices, but the
// search runs over the full array so the true QRS peak is found.
func findPeakIndices(voltage []float64, closings []int) []int {
	peaks := make([]int, 0, len(closings)+1)
	start := 0
	for _, c := range closings {
		peaks = append(peaks, argmaxRange(voltage, start, c+1))
		start = c
	}
	peaks = append(peaks, argmaxRange(voltage, start, len(voltage)))
	return peaks
}

func argmaxRange(voltage []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i < hi; i++ {
		if voltage[i] > voltage[best] {
			best = i
		}
	}
	return best
}

// BPM computes the mean heart rate over the window as an index-difference
// count: the span of ranked positions between the first beat at or after
// window start and the first beat at or after window end, clamped to the
// last beat when the window extends past the recorded beats. For evenly
// distributed beats this approximates a literal count but can be off by one
// at the boundaries; the semantics are kept as-is for compatibility with
// existing recordings. A zero-width window yields a DegenerateWindowError;
// an empty beat sequence yields 0.
func BPM(beats []float64, win Window) (float64, error) {
	if win.End == win.Start {
		return 0, &DegenerateWindowError{At: win.Start}
	}
	if len(beats) == 0 {
		return 0, nil
	}

	start := firstAtOrAfter(beats, win.Start)
	end := firstAtOrAfter(beats, win.End)
	if beats[len(beats)-1] < win.End {
		end = len(beats) - 1
	}

	count := float64(end - start)
	minutes := (win.End - win.Start) / 60
	return count / minutes, nil
}

// firstAtOrAfter returns the index of the first beat >= t, or 0 when no
// beat qualifies. The zero fallback mirrors the historical behavior the BPM
// boundary tests pin down.
func firstAtOrAfter(beats []float64, t float64) int {
	i := sort.SearchFloat64s(beats, t)
	if i == len(beats) {
		return 0
	}
	return i
}

// PhysiologicallyPlausible reports whether the detected beat count is
// within the expected range for a strip of the given duration in seconds
// (roughly 36-150 BPM).
func PhysiologicallyPlausible(numBeats int, duration float64) bool {
	min := minBeatsPerSecond * duration
	max := maxBeatsPerSecond * duration
	n := float64(numBeats)
	return n >= min && n <= max
}
