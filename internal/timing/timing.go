// Package timing renders observation start windows as SPOT timing constraints.
package timing

import (
	"errors"
	"fmt"
	"math"

	"github.com/ccampo133/auto-aor/internal/calendar"
)

// MaxConstraints bounds the constraints accepted from a single remote request.
const MaxConstraints = 10000

var (
	// ErrShapeMismatch is returned when the start and end sequences differ in length.
	ErrShapeMismatch = errors.New("start and end sequences must have the same length")
	// ErrOrdering is returned when an end time is not later than its start time.
	ErrOrdering = errors.New("each end time must be later than its start time")
	// ErrNonNumeric is returned for NaN or infinite Julian dates.
	ErrNonNumeric = errors.New("julian dates must be finite numbers")
)

// Constraint is one observation start window.
type Constraint struct {
	Index int
	Start calendar.Date
	End   calendar.Date
}

// String renders c in the fixed SPOT syntax.
func (c Constraint) String() string {
	s := c.Start.Rounded()
	e := c.End.Rounded()
	return fmt.Sprintf("TIMING%d:  START_DATE=%d %s %2d, START_TIME=%8s, END_DATE=%d %s %2d, END_TIME=%s",
		c.Index,
		s.Year, s.MonthAbbrev(), s.Day, s.Clock(),
		e.Year, e.MonthAbbrev(), e.Day, e.Clock(),
	)
}

// Build validates the paired sequences and converts them to constraints
// numbered from 1. On error no constraints are returned.
func Build(starts, ends []float64) ([]Constraint, error) {
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("%w: %d starts, %d ends", ErrShapeMismatch, len(starts), len(ends))
	}
	for i := range starts {
		if !finite(starts[i]) || !finite(ends[i]) {
			return nil, fmt.Errorf("%w: pair %d is (%v, %v)", ErrNonNumeric, i+1, starts[i], ends[i])
		}
		if ends[i] <= starts[i] {
			return nil, fmt.Errorf("%w: pair %d ends at %.6f, starts at %.6f", ErrOrdering, i+1, ends[i], starts[i])
		}
	}

	out := make([]Constraint, len(starts))
	for i := range starts {
		out[i] = Constraint{
			Index: i + 1,
			Start: calendar.ToCalendar(starts[i]),
			End:   calendar.ToCalendar(ends[i]),
		}
	}
	return out, nil
}

// Format renders one SPOT timing constraint line per (start, end) pair.
func Format(starts, ends []float64) ([]string, error) {
	cs, err := Build(starts, ends)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(cs))
	for i, c := range cs {
		lines[i] = c.String()
	}
	return lines, nil
}

// FormatOne renders a single constraint.
func FormatOne(start, end float64) (string, error) {
	lines, err := Format([]float64{start}, []float64{end})
	if err != nil {
		return "", err
	}
	return lines[0], nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
