package orbit

import (
	"fmt"
	"math"
)

// Physical constants, SI.
const (
	G        = 6.67430e-11
	MSun     = 1.98847e30
	RSun     = 6.957e8
	RJupiter = 7.1492e7
)

// DurationParams describes the system whose transit or eclipse duration is computed.
// Unsupplied values carry the Undefined sentinel.
type DurationParams struct {
	Period          float64 // days
	Eccentricity    float64
	Omega           float64 // argument of periastron, degrees
	StarMass        float64 // solar masses
	StarRadius      float64 // solar radii
	PlanetRadius    float64 // Jupiter radii
	Inclination     float64 // degrees
	ImpactParameter float64 // transit impact parameter, stellar radii
	Eclipse         bool    // secondary eclipse instead of transit
}

func (p DurationParams) quantity() string {
	if p.Eclipse {
		return "eclipse duration"
	}
	return "transit duration"
}

// Duration returns the first-to-fourth contact duration of the event in
// seconds (Winn 2010, eqs. 14 and 16).
//
// When the impact parameter is supplied it governs the geometry and the
// inclination is derived from it; otherwise the inclination is used.
func Duration(p DurationParams) (float64, error) {
	required := []struct {
		name  string
		value float64
	}{
		{"period", p.Period},
		{"eccentricity", p.Eccentricity},
		{"omega", p.Omega},
		{"mstar", p.StarMass},
		{"rstar", p.StarRadius},
		{"rplanet", p.PlanetRadius},
	}
	for _, r := range required {
		if IsUndefined(r.value) {
			return 0, &ParameterError{Name: r.name, For: p.quantity()}
		}
	}
	useB := !IsUndefined(p.ImpactParameter)
	if !useB && IsUndefined(p.Inclination) {
		return 0, &ParameterError{Name: "inclination or impactpar", For: p.quantity()}
	}
	physical := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"period", p.Period, p.Period > 0},
		{"eccentricity", p.Eccentricity, p.Eccentricity >= 0 && p.Eccentricity < 1},
		{"mstar", p.StarMass, p.StarMass > 0},
		{"rstar", p.StarRadius, p.StarRadius > 0},
	}
	for _, c := range physical {
		if !c.ok || math.IsInf(c.value, 0) {
			return 0, fmt.Errorf("%s: %s=%g: %w", p.quantity(), c.name, c.value, ErrNonPhysical)
		}
	}

	periodSec := p.Period * SecondsPerDay
	a := math.Cbrt(G * p.StarMass * MSun * periodSec * periodSec / (4 * math.Pi * math.Pi))
	rs := p.StarRadius * RSun
	k := p.PlanetRadius * RJupiter / rs
	e := p.Eccentricity
	esw := e * math.Sin(p.Omega*deg2rad)
	ecc := 1 - e*e

	var cosi float64
	if useB {
		cosi = p.ImpactParameter * rs / a * (1 + esw) / ecc
		if cosi > 1 {
			return 0, fmt.Errorf("%s: impact parameter %g: %w", p.quantity(), p.ImpactParameter, ErrNoTransit)
		}
	} else {
		cosi = math.Cos(p.Inclination * deg2rad)
	}
	sini := math.Sqrt(1 - cosi*cosi)

	// Eclipse geometry mirrors the transit with the sign of e sin(omega) flipped.
	factor := 1 + esw
	if p.Eclipse {
		factor = 1 - esw
	}
	b := a * cosi / rs * ecc / factor

	arg := (1+k)*(1+k) - b*b
	if arg <= 0 || sini == 0 {
		return 0, fmt.Errorf("%s: b=%.3f k=%.3f: %w", p.quantity(), b, k, ErrNoTransit)
	}
	x := rs / a * math.Sqrt(arg) / sini
	if x > 1 {
		x = 1
	}

	dur := periodSec / math.Pi * math.Asin(x) * math.Sqrt(ecc) / factor
	if dur <= 0 || math.IsNaN(dur) {
		return 0, fmt.Errorf("%s: %w", p.quantity(), ErrNoTransit)
	}
	return dur, nil
}
