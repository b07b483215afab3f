// Package window computes transit and eclipse observation windows across a
// set of telescope visibility windows.
package window

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/timing"
)

const (
	secondsPerDay = orbit.SecondsPerDay
	// minIngressOffset is the floor on the half-duration used to back the
	// ingress observation away from the event.
	minIngressOffset = 2 * 3600.0
	// defaultDurationMargin is subtracted from the observation duration when
	// no event duration is supplied.
	defaultDurationMargin = 3600.0
	// MaxOccurrences bounds the events a single request may produce.
	MaxOccurrences = 10000
)

var (
	// ErrInvalidWindow is returned for a visibility window that does not open before it closes.
	ErrInvalidWindow = errors.New("visibility window must open before it closes")
	// ErrInvalidRequest is returned for durations that cannot produce a constraint.
	ErrInvalidRequest = errors.New("invalid event window request")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("unknown output mode")
	// ErrTooManyEvents is returned when the visibility windows span more
	// orbits than MaxOccurrences.
	ErrTooManyEvents = errors.New("too many events requested")
)

// Window is a telescope visibility window in Julian dates.
type Window struct {
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
}

// Validate checks that the window opens before it closes.
func (w Window) Validate() error {
	if math.IsNaN(w.Open) || math.IsNaN(w.Close) || w.Close <= w.Open {
		return fmt.Errorf("%w: open=%.6f close=%.6f", ErrInvalidWindow, w.Open, w.Close)
	}
	return nil
}

// Mode selects which product of a computation is reported.
type Mode int

const (
	ModeIngress Mode = iota
	ModeEgress
	ModeMidTimes
)

var modeNames = map[Mode]string{
	ModeIngress:  "ingress",
	ModeEgress:   "egress",
	ModeMidTimes: "midtimes",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "ingress", "egress" or "midtimes" (also "mid-times").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ingress":
		return ModeIngress, nil
	case "egress":
		return ModeEgress, nil
	case "midtimes", "mid-times", "mid_times":
		return ModeMidTimes, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Request describes one named event to place around the visibility windows.
type Request struct {
	Planet           string
	Event            string
	Phase            float64 // orbital phase of the event, transit = 0
	PhaseUncertainty float64
	Ephemeris        orbit.Ephemeris
	Windows          []Window

	ObservationDuration float64 // seconds
	StartWindow         float64 // seconds
	CenterShift         float64 // seconds; positive puts more time before the event
	// EventDuration is the transit or eclipse duration in seconds. Zero selects
	// the observation duration minus one hour.
	EventDuration float64
}

func (r Request) validate() error {
	if err := r.Ephemeris.Validate(); err != nil {
		return err
	}
	if orbit.IsUndefined(r.Phase) || math.IsInf(r.Phase, 0) {
		return &orbit.ParameterError{Name: "phase", For: r.Event}
	}
	if r.StartWindow <= 0 {
		return fmt.Errorf("%w: start window %.1f s must be positive", ErrInvalidRequest, r.StartWindow)
	}
	if r.ObservationDuration <= 0 {
		return fmt.Errorf("%w: observation duration %.1f s must be positive", ErrInvalidRequest, r.ObservationDuration)
	}
	var orbits float64
	for _, w := range r.Windows {
		if err := w.Validate(); err != nil {
			return err
		}
		orbits += (w.Close-w.Open)/r.Ephemeris.Period.Value + 2
	}
	if math.IsInf(orbits, 0) || orbits > MaxOccurrences {
		return fmt.Errorf("%w: windows span %.0f orbits of %g d, limit %d",
			ErrTooManyEvents, orbits, r.Ephemeris.Period.Value, MaxOccurrences)
	}
	return nil
}

func (r Request) eventDuration() float64 {
	if r.EventDuration > 0 {
		return r.EventDuration
	}
	return r.ObservationDuration - defaultDurationMargin
}

// Result holds every product of a computation. Occurrences are merged across
// visibility windows in window order.
type Result struct {
	Planet      string
	Event       string
	Occurrences []orbit.Occurrence
	Ingress     []string
	Egress      []string
}

// Output is the product selected by a Mode: constraint lines for ingress and
// egress, a text report for mid-times.
type Output struct {
	Mode        Mode
	Constraints []string
	Report      string
}

// String returns the report or the constraints, one per line.
func (o Output) String() string {
	if o.Mode == ModeMidTimes {
		return o.Report
	}
	if len(o.Constraints) == 0 {
		return ""
	}
	return strings.Join(o.Constraints, "\n") + "\n"
}

// Compute propagates the event through every visibility window and derives
// the ingress and egress start-window constraints.
func Compute(req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var occ []orbit.Occurrence
	for _, w := range req.Windows {
		occ = append(occ, orbit.Occurrences(req.Ephemeris, w.Open, w.Close, req.Phase, req.PhaseUncertainty)...)
	}

	evdur := req.eventDuration()
	halfWin := req.StartWindow / 2
	winDays := req.StartWindow / secondsPerDay

	ingressLead := (math.Max(evdur/2, minIngressOffset) + req.CenterShift + evdur/2 + halfWin) / secondsPerDay
	egressLead := (req.CenterShift + halfWin) / secondsPerDay

	n := len(occ)
	iStart, iEnd := make([]float64, n), make([]float64, n)
	eStart, eEnd := make([]float64, n), make([]float64, n)
	for i, o := range occ {
		iStart[i] = o.JD - ingressLead
		iEnd[i] = iStart[i] + winDays
		eStart[i] = o.JD - egressLead
		eEnd[i] = eStart[i] + winDays
	}

	ingress, err := timing.Format(iStart, iEnd)
	if err != nil {
		return nil, fmt.Errorf("ingress constraints: %w", err)
	}
	egress, err := timing.Format(eStart, eEnd)
	if err != nil {
		return nil, fmt.Errorf("egress constraints: %w", err)
	}

	return &Result{
		Planet:      req.Planet,
		Event:       req.Event,
		Occurrences: occ,
		Ingress:     ingress,
		Egress:      egress,
	}, nil
}

// MidTimes renders the event mid-times with their uncertainties.
func (r *Result) MidTimes() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Times of %s %s, solar-system barycenter:\n", r.Planet, r.Event)
	for _, o := range r.Occurrences {
		d := calendar.ToCalendar(o.JD)
		fmt.Fprintf(&b, "%4d   %2d   %2d   %4d   %2d   %6.3f  +- %10.3f sec\n",
			d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second, o.UncertaintySeconds())
	}
	return b.String()
}

// Output returns the product selected by m.
func (r *Result) Output(m Mode) (Output, error) {
	switch m {
	case ModeIngress:
		return Output{Mode: m, Constraints: r.Ingress}, nil
	case ModeEgress:
		return Output{Mode: m, Constraints: r.Egress}, nil
	case ModeMidTimes:
		return Output{Mode: m, Report: r.MidTimes()}, nil
	}
	return Output{}, fmt.Errorf("%w: %s", ErrUnknownMode, m)
}

// ComputeMode is Compute followed by Output.
func ComputeMode(req Request, m Mode) (Output, error) {
	res, err := Compute(req)
	if err != nil {
		return Output{}, err
	}
	return res.Output(m)
}
