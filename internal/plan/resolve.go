package plan

import (
	"errors"
	"log/slog"

	"github.com/ccampo133/auto-aor/internal/orbit"
)

// Phase is a resolved event phase with its 1-sigma uncertainty.
type Phase struct {
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
	// Computed is set when the phase was derived from e and omega.
	Computed bool `json:"computed"`
}

// ResolvePhase returns the orbital phase of the target's event.
func ResolvePhase(t Target, logger *slog.Logger) (Phase, error) {
	if t.Event == EventTransit {
		return Phase{}, nil
	}
	return resolveEclipsePhase(t, logger)
}

// resolveEclipsePhase prefers a supplied eclipse phase and otherwise derives
// one from the eccentricity and argument of periastron.
func resolveEclipsePhase(t Target, logger *slog.Logger) (Phase, error) {
	if t.EclipsePhase.Defined() {
		logger.Warn("using eclipse phase from input files; confirm it for eccentric orbits",
			"eclphase", t.EclipsePhase.Value)
		return Phase{Value: t.EclipsePhase.Value, Uncertainty: t.EclipsePhase.Sigma()}, nil
	}
	if !t.Eccentricity.Defined() || !t.Omega.Defined() {
		name := "e"
		if t.Eccentricity.Defined() {
			name = "omega"
		}
		return Phase{}, &orbit.ParameterError{Name: name, For: "eclipse phase"}
	}

	ph := Phase{
		Value: orbit.EclipsePhase(t.Eccentricity.Value, t.Omega.Value),
		Uncertainty: orbit.EclipsePhaseError(
			t.Eccentricity.Value, t.Eccentricity.Sigma(),
			t.Omega.Value, t.Omega.Sigma(),
		),
		Computed: true,
	}
	logger.Info("eclipse phase computed from e and omega", "phase", ph.Value, "uncertainty", ph.Uncertainty)
	return ph, nil
}

// diagnosticEclipsePhase is the eclipse phase reported alongside a plan. A
// circular orbit is assumed when it cannot be resolved.
func diagnosticEclipsePhase(t Target, resolved Phase, logger *slog.Logger) Phase {
	if t.Event == EventEclipse {
		return resolved
	}
	ph, err := resolveEclipsePhase(t, logger)
	if err != nil {
		logger.Warn("eclipse phase unresolved; assuming a circular orbit", "error", err)
		return Phase{Value: 0.5}
	}
	return ph
}

func (t Target) durationParams() orbit.DurationParams {
	return orbit.DurationParams{
		Period:          t.Ephemeris.Period.Value,
		Eccentricity:    t.Eccentricity.Value,
		Omega:           t.Omega.Value,
		StarMass:        t.StarMass,
		StarRadius:      t.StarRadius,
		PlanetRadius:    t.PlanetRadius,
		Inclination:     t.Inclination,
		ImpactParameter: t.ImpactParameter,
		Eclipse:         t.Event == EventEclipse,
	}
}

// ResolveDuration returns the event duration in seconds: the supplied value,
// or one computed from the system geometry. When the geometry is incomplete
// it returns zero, which leaves the choice to the window calculator.
func ResolveDuration(t Target, logger *slog.Logger) (float64, error) {
	supplied := t.TransitDuration
	key := "transdur"
	if t.Event == EventEclipse {
		supplied, key = t.EclipseDuration, "ecldur"
	}
	if !orbit.IsUndefined(supplied) && supplied > 0 {
		return supplied, nil
	}

	dur, err := orbit.Duration(t.durationParams())
	if err != nil {
		if errors.Is(err, orbit.ErrMissingParameter) {
			logger.Warn("event duration undefined; using observation duration less one hour",
				"key", key, "error", err)
			return 0, nil
		}
		return 0, err
	}
	logger.Info("event duration computed", "key", key, "seconds", dur)
	return dur, nil
}

// CheckUncertainties logs every uncertainty the timing propagation needs but
// that was not supplied, and returns their names.
func CheckUncertainties(t Target, ph Phase, logger *slog.Logger) []string {
	checks := []struct {
		name  string
		m     orbit.Measurement
		apply bool
	}{
		{"ttrans", t.Ephemeris.Epoch, true},
		{"period", t.Ephemeris.Period, true},
		{"eclphase", t.EclipsePhase, t.Event == EventEclipse && !ph.Computed},
		{"e", t.Eccentricity, ph.Computed},
		{"omega", t.Omega, ph.Computed},
	}

	var missing []string
	for _, c := range checks {
		if !c.apply {
			continue
		}
		if orbit.IsUndefined(c.m.Uncertainty) {
			logger.Warn("parameter uncertainty undefined", "param", c.name)
			missing = append(missing, c.name)
		}
	}
	if len(missing) == 0 {
		logger.Debug("all needed parameter uncertainties defined")
	}
	return missing
}
