// Package orbit predicts when a circular orbit reaches a given phase and
// derives the physical quantities needed to place observations around those
// events.
package orbit

import (
	"math"
)

// SecondsPerDay converts day-valued uncertainties to seconds.
const SecondsPerDay = 86400.0

// Undefined is the sentinel used by planning files for a parameter that was not supplied.
const Undefined = -1.0

// IsUndefined reports whether v is the Undefined sentinel or NaN.
func IsUndefined(v float64) bool {
	return v == Undefined || math.IsNaN(v)
}

// Measurement is a value with its 1-sigma uncertainty.
type Measurement struct {
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
}

// Defined reports whether the value was supplied.
func (m Measurement) Defined() bool {
	return !IsUndefined(m.Value)
}

// Sigma returns the uncertainty, or zero when it is undefined or negative.
func (m Measurement) Sigma() float64 {
	if IsUndefined(m.Uncertainty) || m.Uncertainty < 0 {
		return 0
	}
	return m.Uncertainty
}

// Ephemeris is a transit epoch and orbital period. Offset is added to the
// epoch to obtain a Julian date when the epoch is stored relative to one.
type Ephemeris struct {
	Epoch  Measurement `json:"epoch"`  // Julian date
	Period Measurement `json:"period"` // days
	Offset float64     `json:"offset"` // days
}

// Validate returns a *ParameterError for the first missing or unusable parameter.
func (e Ephemeris) Validate() error {
	if !e.Epoch.Defined() {
		return &ParameterError{Name: "epoch"}
	}
	if !e.Period.Defined() || e.Period.Value <= 0 || math.IsInf(e.Period.Value, 0) {
		return &ParameterError{Name: "period"}
	}
	return nil
}

// Occurrence is the predicted time of one orbital event.
type Occurrence struct {
	JD          float64 `json:"jd"`
	Uncertainty float64 `json:"uncertainty_days"`
}

// UncertaintySeconds returns the 1-sigma uncertainty in seconds.
func (o Occurrence) UncertaintySeconds() float64 {
	return o.Uncertainty * SecondsPerDay
}

// ModDividend returns x modulo y with the sign of the dividend x, so the
// result for y = 1 lies in (-1, 1). math.Mod already follows this convention;
// the helper exists so callers cannot confuse it with a floor modulo.
func ModDividend(x, y float64) float64 {
	return math.Mod(x, y)
}

// ModFloor returns x modulo y with the sign of the divisor y.
func ModFloor(x, y float64) float64 {
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

// Occurrences returns every time strictly inside (start, end) at which the
// circular orbit described by eph reaches phase, paired with its propagated
// 1-sigma uncertainty in days. phaseErr is the uncertainty of phase in units
// of orbital phase; an undefined or negative value contributes nothing.
//
// The caller must have validated eph.
func Occurrences(eph Ephemeris, start, end, phase, phaseErr float64) []Occurrence {
	period := eph.Period.Value
	epoch := eph.Epoch.Value + eph.Offset

	// Phase of start relative to the epoch, kept in (-1, 1).
	phaseStart := ModDividend((start-epoch)/period, 1)
	eventPhase := ModFloor(phase, 1)

	// Adjustment from start to the first event, in (-1, 0], then one more
	// cycle so the first candidate is strictly before start.
	adj := eventPhase - phaseStart
	adj -= math.Ceil(adj)
	adj--

	first := start + adj*period
	n := int(math.Ceil((end-start)/period)) + 2

	if IsUndefined(phaseErr) || phaseErr < 0 {
		phaseErr = 0
	}
	sigmaP := eph.Period.Sigma()
	sigmaT := eph.Epoch.Sigma()
	phaseTerm := period * phaseErr

	var out []Occurrence
	for k := 0; k < n; k++ {
		t := first + period*float64(k)
		if t <= start || t >= end {
			continue
		}
		cycles := sigmaP * (t - epoch) / period
		out = append(out, Occurrence{
			JD:          t,
			Uncertainty: math.Sqrt(cycles*cycles + sigmaT*sigmaT + phaseTerm*phaseTerm),
		})
	}
	return out
}
