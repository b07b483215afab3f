package timing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccampo133/auto-aor/internal/calendar"
)

func TestFormatOne(t *testing.T) {
	start := calendar.ToJulian(10, 10, 2005, 2, 34, 56)
	end := calendar.ToJulian(12, 12, 2006, 3, 45, 34)

	got, err := FormatOne(start, end)
	require.NoError(t, err)
	require.Equal(t,
		"TIMING1:  START_DATE=2005 Oct 10, START_TIME=02:34:56, END_DATE=2006 Dec 12, END_TIME=03:45:34",
		got)
}

func TestFormatSequence(t *testing.T) {
	starts := []float64{
		calendar.ToJulian(2, 1, 2009, 0, 0, 0),
		calendar.ToJulian(3, 15, 2009, 12, 30, 0),
	}
	ends := []float64{
		calendar.ToJulian(2, 1, 2009, 0, 30, 0),
		calendar.ToJulian(3, 15, 2009, 13, 0, 0),
	}

	got, err := Format(starts, ends)
	require.NoError(t, err)
	require.Equal(t, []string{
		"TIMING1:  START_DATE=2009 Feb  1, START_TIME=00:00:00, END_DATE=2009 Feb  1, END_TIME=00:30:00",
		"TIMING2:  START_DATE=2009 Mar 15, START_TIME=12:30:00, END_DATE=2009 Mar 15, END_TIME=13:00:00",
	}, got)
}

func TestFormatCarry(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		want  string
	}{
		{
			name:  "seconds carry into minutes",
			start: calendar.ToJulian(1, 1, 2009, 10, 14, 59.6),
			want:  "10:15:00",
		},
		{
			name:  "minutes carry into hours",
			start: calendar.ToJulian(1, 1, 2009, 10, 59, 59.6),
			want:  "11:00:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := Build([]float64{tt.start}, []float64{tt.start + 0.1})
			require.NoError(t, err)
			require.Equal(t, tt.want, cs[0].Start.Rounded().Clock())
			require.Contains(t, cs[0].String(), "START_TIME="+tt.want)
		})
	}

	// Carry across midnight advances the date too.
	start := calendar.ToJulian(12, 31, 2008, 23, 59, 59.8)
	line, err := FormatOne(start, start+0.5)
	require.NoError(t, err)
	require.Contains(t, line, "START_DATE=2009 Jan  1, START_TIME=00:00:00")
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name   string
		starts []float64
		ends   []float64
		want   error
	}{
		{
			name:   "mismatched lengths",
			starts: []float64{2454800, 2454801},
			ends:   []float64{2454800.5},
			want:   ErrShapeMismatch,
		},
		{
			name:   "end before start",
			starts: []float64{2454800, 2454801},
			ends:   []float64{2454800.5, 2454800.9},
			want:   ErrOrdering,
		},
		{
			name:   "end equals start",
			starts: []float64{2454800},
			ends:   []float64{2454800},
			want:   ErrOrdering,
		},
		{
			name:   "NaN",
			starts: []float64{math.NaN()},
			ends:   []float64{2454800},
			want:   ErrNonNumeric,
		},
		{
			name:   "infinite",
			starts: []float64{2454800},
			ends:   []float64{math.Inf(1)},
			want:   ErrNonNumeric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.starts, tt.ends)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, got)
		})
	}
}

func TestFormatEmpty(t *testing.T) {
	got, err := Format(nil, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}
