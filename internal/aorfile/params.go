// Package aorfile reads the observation-planning input files: the .tep and
// .aai parameter files and SPOT .vis visibility windows.
package aorfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ccampo133/auto-aor/internal/orbit"
)

// Value is one parameter from a planning file. Numeric is false when the value
// could not be parsed as a number, in which case only Raw is meaningful.
type Value struct {
	Raw            string
	Number         float64
	Numeric        bool
	Uncertainty    float64
	HasUncertainty bool
}

// Params holds the parameters of one or more planning files keyed by
// lower-cased name.
type Params map[string]Value

// ParseParams reads a key/value planning file. Each line is
//
//	key value [uncertainty] [# comment]
//
// Blank lines and lines starting with '#' are ignored. Lines that cannot be
// interpreted are skipped with a warning.
func ParseParams(r io.Reader, logger *slog.Logger) (Params, error) {
	params := make(Params)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := stripComment(strings.Fields(line))
		if len(parts) < 2 {
			logger.Warn("skipping parameter line without a value", "line", lineNo, "text", line)
			continue
		}

		key := strings.ToLower(parts[0])
		v := Value{Raw: parts[1], Uncertainty: orbit.Undefined}
		if n, err := strconv.ParseFloat(parts[1], 64); err == nil {
			v.Number, v.Numeric = n, true
		}
		if len(parts) == 3 {
			u, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				logger.Warn("skipping parameter with invalid uncertainty", "line", lineNo, "key", key, "uncertainty", parts[2])
				continue
			}
			v.Uncertainty, v.HasUncertainty = u, true
		}
		if _, dup := params[key]; dup {
			logger.Debug("parameter redefined", "line", lineNo, "key", key)
		}
		params[key] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parameter file: %w", err)
	}
	return params, nil
}

// stripComment drops every field from the first one starting with '#'.
func stripComment(parts []string) []string {
	for i, p := range parts {
		if strings.HasPrefix(p, "#") {
			return parts[:i]
		}
	}
	return parts
}

// Merge returns a new Params holding p overlaid with each of others in order.
func (p Params) Merge(others ...Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Has reports whether key was present.
func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}

// Measurement returns the value and uncertainty of key. Missing or
// non-numeric values, and absent uncertainties, are orbit.Undefined.
func (p Params) Measurement(key string) orbit.Measurement {
	v, ok := p[strings.ToLower(key)]
	if !ok {
		return orbit.Measurement{Value: orbit.Undefined, Uncertainty: orbit.Undefined}
	}
	m := orbit.Measurement{Value: orbit.Undefined, Uncertainty: v.Uncertainty}
	if v.Numeric {
		m.Value = v.Number
	}
	return m
}

// Float returns the numeric value of key, or orbit.Undefined with ok false.
func (p Params) Float(key string) (value float64, ok bool) {
	v, found := p[strings.ToLower(key)]
	if !found || !v.Numeric {
		return orbit.Undefined, false
	}
	return v.Number, true
}

// FloatOr returns the numeric value of key or def when it is missing.
func (p Params) FloatOr(key string, def float64) float64 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

// String returns the raw text of key.
func (p Params) String(key string) (string, bool) {
	v, ok := p[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return v.Raw, true
}

// StringOr returns the raw text of key or def when it is missing.
func (p Params) StringOr(key, def string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return def
}
