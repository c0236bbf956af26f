package ecg

import "fmt"

// MalformedDataError indicates a recording that cannot be trusted after
// sanitization: non-finite samples remain or the arrays disagree in length.
type MalformedDataError struct {
	FiniteFraction float64
	TimeLen        int
	VoltageLen     int
	Reason         string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed recording: %s (finite fraction %.3f, len(time)=%d, len(voltage)=%d)",
		e.Reason, e.FiniteFraction, e.TimeLen, e.VoltageLen)
}

// InvalidWindowError indicates a requested analysis window that falls outside
// the recording's time range. Callers are expected to fall back to the
// full-recording window rather than abort.
type InvalidWindowError struct {
	Start, End float64
	Min, Max   float64
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("analysis window (%g, %g) outside recording range [%g, %g]",
		e.Start, e.End, e.Min, e.Max)
}

// DegenerateWindowError indicates a zero-width BPM window. BPM is undefined
// over such a window; the remaining metrics are unaffected.
type DegenerateWindowError struct {
	At float64
}

func (e *DegenerateWindowError) Error() string {
	return fmt.Sprintf("degenerate analysis window: start == end == %g, BPM undefined", e.At)
}
