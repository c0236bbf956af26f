package ecg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateRecoversInteriorGaps(t *testing.T) {
	in := []float64{1, 2, math.NaN(), 4, 5, math.NaN(), 7}

	out := Interpolate(in)

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7}, out)
	// Input is untouched.
	assert.True(t, math.IsNaN(in[2]))
}

func TestInterpolatePreservesFiniteSamples(t *testing.T) {
	in := []float64{0, 0.5, math.NaN(), math.NaN(), 2.0, 2.5}

	out := Interpolate(in)

	assert.Equal(t, []float64{0, 0.5, 1.0, 1.5, 2.0, 2.5}, out)
}

func TestInterpolateCannotExtrapolate(t *testing.T) {
	// Leading and trailing gaps have no finite neighbor on one side and
	// stay non-finite.
	out := Interpolate([]float64{math.NaN(), 1, 2, math.NaN()})

	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 1.0, out[1])
	assert.Equal(t, 2.0, out[2])
	assert.True(t, math.IsNaN(out[3]))
}

func TestCanInterpolateBoundary(t *testing.T) {
	// Exactly 10% missing is rejected: 2 of 20.
	atBoundary := make([]float64, 20)
	for i := range atBoundary {
		atBoundary[i] = float64(i)
	}
	atBoundary[5] = math.NaN()
	atBoundary[12] = math.NaN()
	assert.False(t, CanInterpolate(atBoundary))

	// Half missing is rejected outright.
	halfMissing := make([]float64, 20)
	for i := range halfMissing {
		if i%2 == 0 {
			halfMissing[i] = math.NaN()
		} else {
			halfMissing[i] = float64(i)
		}
	}
	assert.False(t, CanInterpolate(halfMissing))

	// 1 of 10 missing (finite fraction exactly 0.9) is accepted.
	oneMissing := []float64{0, 1, 2, 3, math.NaN(), 5, 6, 7, 8, 9}
	assert.True(t, CanInterpolate(oneMissing))

	// A fully finite array needs no interpolation.
	assert.False(t, CanInterpolate([]float64{0, 1, 2}))
}

func TestSanitizeCleanRecording(t *testing.T) {
	rec, err := Sanitize([]float64{0, 1, 2}, []float64{10, 15, 20})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, rec.Time)
	assert.Equal(t, []float64{10, 15, 20}, rec.Voltage)
}

func TestSanitizeInterpolatesRecoverableTime(t *testing.T) {
	time := []float64{1, 2, math.NaN(), 4, 5, math.NaN(), 7}
	voltage := []float64{0, 0, 1, 0, 0, 1, 0}

	rec, err := Sanitize(time, voltage)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7}, rec.Time)
}

func TestSanitizeRejectsEmptyStrip(t *testing.T) {
	// An empty CSV decodes to empty arrays; they must not pass as a
	// vacuously finite recording.
	_, err := Sanitize(nil, nil)

	var malformed *MalformedDataError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "no samples")

	_, err = Sanitize([]float64{}, []float64{})
	require.ErrorAs(t, err, &malformed)
}

func TestSanitizeRejectsLengthMismatch(t *testing.T) {
	_, err := Sanitize([]float64{0, 1, 2}, []float64{10, 20})

	var malformed *MalformedDataError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.TimeLen)
	assert.Equal(t, 2, malformed.VoltageLen)
}

func TestSanitizeRejectsUnrecoverableTime(t *testing.T) {
	// 2 of 4 samples missing: below the interpolation gate, the NaNs
	// survive and fail the finite-value check.
	_, err := Sanitize(
		[]float64{0, math.NaN(), math.NaN(), 3},
		[]float64{1, 1, 1, 1},
	)

	var malformed *MalformedDataError
	require.ErrorAs(t, err, &malformed)
	assert.InDelta(t, 0.5, malformed.FiniteFraction, 1e-9)
}

func TestSanitizeNeverInterpolatesVoltage(t *testing.T) {
	_, err := Sanitize(
		[]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		[]float64{1, 1, math.NaN(), 1, 1, 1, 1, 1, 1, 1},
	)

	var malformed *MalformedDataError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "voltage")
}

func TestSanitizeIdempotent(t *testing.T) {
	first, err := Sanitize([]float64{0, 1, 2, 3}, []float64{5, 10, 20, 10})
	require.NoError(t, err)

	second, err := Sanitize(first.Time, first.Voltage)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveWindowDefaultsToFullRecording(t *testing.T) {
	rec := Recording{Time: []float64{0, 1, 2}, Voltage: []float64{10, 15, 20}}

	win, err := ResolveWindow(rec, nil)
	require.NoError(t, err)

	assert.Equal(t, Window{Start: 0, End: 2}, win)
}

func TestResolveWindowAcceptsInRangeRequest(t *testing.T) {
	rec := Recording{Time: []float64{0, 1, 2, 3, 4}, Voltage: make([]float64, 5)}

	win, err := ResolveWindow(rec, &Window{Start: 1, End: 3})
	require.NoError(t, err)

	assert.Equal(t, Window{Start: 1, End: 3}, win)
}

func TestResolveWindowRejectsOutOfRangeRequest(t *testing.T) {
	rec := Recording{Time: []float64{0, 1, 2}, Voltage: make([]float64, 3)}

	_, err := ResolveWindow(rec, &Window{Start: 0, End: 5})

	var invalid *InvalidWindowError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 5.0, invalid.End)
	assert.Equal(t, 2.0, invalid.Max)

	_, err = ResolveWindow(rec, &Window{Start: -1, End: 2})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, -1.0, invalid.Start)
}

func TestResolveWindowRejectsReversedRequest(t *testing.T) {
	rec := Recording{Time: []float64{0, 1, 2, 3, 4}, Voltage: make([]float64, 5)}

	// Both bounds are in range but start exceeds end.
	_, err := ResolveWindow(rec, &Window{Start: 3, End: 1})

	var invalid *InvalidWindowError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 3.0, invalid.Start)
	assert.Equal(t, 1.0, invalid.End)
}
