package orbit

import "math"

const deg2rad = math.Pi / 180.0

// meanAnomaly converts a true anomaly f (radians) to the mean anomaly for eccentricity e.
func meanAnomaly(f, e float64) float64 {
	E := 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(f/2), math.Sqrt(1+e)*math.Cos(f/2))
	return E - e*math.Sin(E)
}

// EclipsePhase returns the orbital phase of secondary eclipse, with transit at
// phase 0, for eccentricity e and argument of periastron omega (degrees).
// The orbit is taken edge-on; inclination shifts the result only at second
// order in e.
func EclipsePhase(e, omega float64) float64 {
	w := omega * deg2rad
	ft := math.Pi/2 - w
	fe := 3*math.Pi/2 - w
	dm := meanAnomaly(fe, e) - meanAnomaly(ft, e)
	return ModFloor(dm/(2*math.Pi), 1)
}

// EclipsePhaseError propagates the uncertainties of e and omega (degrees)
// into the eclipse phase by central differences.
func EclipsePhaseError(e, sigmaE, omega, sigmaOmega float64) float64 {
	if IsUndefined(sigmaE) || sigmaE < 0 {
		sigmaE = 0
	}
	if IsUndefined(sigmaOmega) || sigmaOmega < 0 {
		sigmaOmega = 0
	}

	const (
		he = 1e-6
		hw = 1e-4
	)
	lo := math.Max(e-he, 0)
	hi := math.Min(e+he, 1-1e-9)
	dPdE := phaseDelta(EclipsePhase(hi, omega), EclipsePhase(lo, omega)) / (hi - lo)
	dPdW := phaseDelta(EclipsePhase(e, omega+hw), EclipsePhase(e, omega-hw)) / (2 * hw)

	a := dPdE * sigmaE
	b := dPdW * sigmaOmega
	return math.Sqrt(a*a + b*b)
}

// phaseDelta returns a-b wrapped into [-0.5, 0.5).
func phaseDelta(a, b float64) float64 {
	return ModFloor(a-b+0.5, 1) - 0.5
}
