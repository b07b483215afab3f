// Package plan turns planning files into a Spitzer observation request: it
// resolves the target's parameters, places the observation around the next
// events and renders the AOR and its diagnostics report.
//
// Planning-file units: Julian dates for ttrans, days for period and toff,
// degrees for omega and i, solar masses and radii for ms and rs, Jupiter
// radii for rp, seconds for obsdur, startwin, ctrshift, transdur and ecldur.
package plan

import (
	"fmt"
	"strings"

	"github.com/ccampo133/auto-aor/internal/aorfile"
	"github.com/ccampo133/auto-aor/internal/irac"
	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/window"
)

// Event is the orbital event an observation is placed around.
type Event string

const (
	EventTransit Event = "transit"
	EventEclipse Event = "eclipse"
)

// ParseEvent accepts "transit" or "eclipse" in any case.
func ParseEvent(s string) (Event, error) {
	switch Event(strings.ToLower(strings.TrimSpace(s))) {
	case EventTransit:
		return EventTransit, nil
	case EventEclipse:
		return EventEclipse, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// Defaults fill in planning values an .aai file may omit.
type Defaults struct {
	StartWindow float64 // seconds
	CenterShift float64 // seconds
	Mission     string
	Timing      window.Mode
}

// Target is everything known about one planned observation, merged from
// the .tep and .aai files.
type Target struct {
	Planet  string
	AORName string
	Event   Event
	// Timing selects the ingress or egress start windows for the AOR.
	Timing window.Mode

	Ephemeris       orbit.Ephemeris
	Eccentricity    orbit.Measurement
	Omega           orbit.Measurement
	EclipsePhase    orbit.Measurement
	Inclination     float64
	ImpactParameter float64
	StarMass        float64
	StarRadius      float64
	PlanetRadius    float64
	TransitDuration float64
	EclipseDuration float64

	RA      string
	Dec     string
	PMRA    orbit.Measurement
	PMDec   orbit.Measurement
	PostRA  string
	PostDec string

	Mission             irac.Mission
	ReadMode            string
	Channel             int
	FrameTime           float64
	ObservationDuration float64
	StartWindow         float64
	CenterShift         float64
}

// TargetFromParams builds a Target from merged planning parameters.
func TargetFromParams(p aorfile.Params, d Defaults) (Target, error) {
	const purpose = "observation request"
	str := func(key string) (string, error) {
		s, ok := p.String(key)
		if !ok || s == "" || s == "-1" {
			return "", &orbit.ParameterError{Name: key, For: purpose}
		}
		return s, nil
	}
	num := func(key string) (float64, error) {
		v, ok := p.Float(key)
		if !ok || orbit.IsUndefined(v) {
			return 0, &orbit.ParameterError{Name: key, For: purpose}
		}
		return v, nil
	}

	var (
		t   Target
		err error
	)
	if t.Planet, err = str("planetname"); err != nil {
		return Target{}, err
	}
	t.AORName = p.StringOr("aorname", strings.ReplaceAll(t.Planet, " ", ""))

	ev, err := str("event")
	if err != nil {
		return Target{}, err
	}
	if t.Event, err = ParseEvent(ev); err != nil {
		return Target{}, err
	}

	t.Timing = d.Timing
	if s, ok := p.String("timing"); ok {
		if t.Timing, err = window.ParseMode(s); err != nil {
			return Target{}, err
		}
	}
	if t.Timing == window.ModeMidTimes {
		return Target{}, fmt.Errorf("%w: %s", ErrTimingMode, t.Timing)
	}

	t.Ephemeris = orbit.Ephemeris{
		Epoch:  p.Measurement("ttrans"),
		Period: p.Measurement("period"),
		Offset: p.FloatOr("toff", 0),
	}
	if err := t.Ephemeris.Validate(); err != nil {
		return Target{}, err
	}
	t.Eccentricity = p.Measurement("e")
	t.Omega = p.Measurement("omega")
	t.EclipsePhase = p.Measurement("eclphase")
	t.Inclination = p.FloatOr("i", orbit.Undefined)
	t.ImpactParameter = p.FloatOr("impactpar", orbit.Undefined)
	t.StarMass = p.FloatOr("ms", orbit.Undefined)
	t.StarRadius = p.FloatOr("rs", orbit.Undefined)
	t.PlanetRadius = p.FloatOr("rp", orbit.Undefined)
	t.TransitDuration = p.FloatOr("transdur", orbit.Undefined)
	t.EclipseDuration = p.FloatOr("ecldur", orbit.Undefined)

	if t.RA, err = str("ra"); err != nil {
		return Target{}, err
	}
	if t.Dec, err = str("dec"); err != nil {
		return Target{}, err
	}
	t.PMRA = p.Measurement("pmra")
	t.PMDec = p.Measurement("pmdec")
	t.PostRA = p.StringOr("co_ra", t.RA)
	t.PostDec = p.StringOr("co_dec", t.Dec)

	if t.Mission, err = irac.ParseMission(p.StringOr("mission", d.Mission)); err != nil {
		return Target{}, err
	}
	rm, err := str("readmode")
	if err != nil {
		return Target{}, err
	}
	if t.ReadMode, err = irac.ParseReadMode(rm); err != nil {
		return Target{}, err
	}
	ch, err := num("chan")
	if err != nil {
		return Target{}, err
	}
	t.Channel = int(ch)
	if t.FrameTime, err = num("frametime"); err != nil {
		return Target{}, err
	}
	if t.ObservationDuration, err = num("obsdur"); err != nil {
		return Target{}, err
	}
	t.StartWindow = p.FloatOr("startwin", d.StartWindow)
	t.CenterShift = p.FloatOr("ctrshift", d.CenterShift)
	return t, nil
}

// properMotion returns the value of m, or zero when undefined.
func properMotion(m orbit.Measurement) float64 {
	if !m.Defined() {
		return 0
	}
	return m.Value
}
