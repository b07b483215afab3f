package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ccampo133/auto-aor/internal/aor"
	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/httputil"
	"github.com/ccampo133/auto-aor/internal/irac"
	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/internal/timing"
	"github.com/ccampo133/auto-aor/internal/window"
)

const (
	maxRequestBytes = 1 << 20
	// maxPlanBytes covers three inline planning files.
	maxPlanBytes = 8 << 20
)

// windowsRequest is the JSON form of window.Request. Phase defaults to zero
// for transits and is required otherwise.
type windowsRequest struct {
	Planet              string          `json:"planet"`
	Event               string          `json:"event"`
	Phase               *float64        `json:"phase"`
	PhaseUncertainty    float64         `json:"phase_uncertainty"`
	Ephemeris           orbit.Ephemeris `json:"ephemeris"`
	Windows             []window.Window `json:"windows"`
	ObservationDuration float64         `json:"observation_duration"`
	StartWindow         float64         `json:"start_window"`
	CenterShift         float64         `json:"center_shift"`
	EventDuration       float64         `json:"event_duration"`
	Mode                *window.Mode    `json:"mode,omitempty"`
}

func (wr windowsRequest) request() window.Request {
	phase := orbit.Undefined
	switch {
	case wr.Phase != nil:
		phase = *wr.Phase
	case wr.Event == "" || wr.Event == string(plan.EventTransit):
		phase = 0
	}
	event := wr.Event
	if event == "" {
		event = string(plan.EventTransit)
	}
	return window.Request{
		Planet:              wr.Planet,
		Event:               event,
		Phase:               phase,
		PhaseUncertainty:    wr.PhaseUncertainty,
		Ephemeris:           wr.Ephemeris,
		Windows:             wr.Windows,
		ObservationDuration: wr.ObservationDuration,
		StartWindow:         wr.StartWindow,
		CenterShift:         wr.CenterShift,
		EventDuration:       wr.EventDuration,
	}
}

type occurrenceJSON struct {
	JD                 float64 `json:"jd"`
	Date               string  `json:"date"`
	UncertaintySeconds float64 `json:"uncertainty_seconds"`
}

type windowsResponse struct {
	Planet      string           `json:"planet"`
	Event       string           `json:"event"`
	Occurrences []occurrenceJSON `json:"occurrences"`
	Ingress     []string         `json:"ingress"`
	Egress      []string         `json:"egress"`
	MidTimes    string           `json:"midtimes"`
}

type modeResponse struct {
	Mode        window.Mode `json:"mode"`
	Constraints []string    `json:"constraints,omitempty"`
	Report      string      `json:"report,omitempty"`
}

func occurrencesJSON(occ []orbit.Occurrence) []occurrenceJSON {
	out := make([]occurrenceJSON, len(occ))
	for i, o := range occ {
		out[i] = occurrenceJSON{
			JD:                 o.JD,
			Date:               calendar.ToCalendar(o.JD).String(),
			UncertaintySeconds: o.UncertaintySeconds(),
		}
	}
	return out
}

func windowsHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body windowsRequest
		if !decode(w, r, maxRequestBytes, &body) {
			return
		}

		res, err := window.Compute(body.request())
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		if body.Mode != nil {
			out, err := res.Output(*body.Mode)
			if err != nil {
				writeDomainError(w, r, logger, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, modeResponse{Mode: out.Mode, Constraints: out.Constraints, Report: out.Report})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, windowsResponse{
			Planet:      res.Planet,
			Event:       res.Event,
			Occurrences: occurrencesJSON(res.Occurrences),
			Ingress:     nonNil(res.Ingress),
			Egress:      nonNil(res.Egress),
			MidTimes:    res.MidTimes(),
		})
	})
}

type constraintsRequest struct {
	Starts []float64 `json:"starts"`
	Ends   []float64 `json:"ends"`
}

type constraintsResponse struct {
	Constraints []string `json:"constraints"`
}

func constraintsHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body constraintsRequest
		if !decode(w, r, maxRequestBytes, &body) {
			return
		}
		if len(body.Starts) > timing.MaxConstraints {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("at most %d constraints per request", timing.MaxConstraints))
			return
		}
		lines, err := timing.Format(body.Starts, body.Ends)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, constraintsResponse{Constraints: nonNil(lines)})
	})
}

type calendarResponse struct {
	JD     float64 `json:"jd"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Day    int     `json:"day"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Second float64 `json:"second"`
	Text   string  `json:"text"`
}

// calendarHandler converts ?jd=<julian date> to a calendar date, or
// ?time=<RFC 3339> to a Julian date.
func calendarHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var jd float64
		switch {
		case q.Get("jd") != "":
			v, err := strconv.ParseFloat(q.Get("jd"), 64)
			if err != nil || !isFinite(v) {
				httputil.WriteError(w, http.StatusBadRequest, "jd must be a finite number")
				return
			}
			jd = v
		case q.Get("time") != "":
			t, err := time.Parse(time.RFC3339Nano, q.Get("time"))
			if err != nil {
				httputil.WriteError(w, http.StatusBadRequest, "time must be RFC 3339")
				return
			}
			jd = calendar.FromTime(t)
		default:
			httputil.WriteError(w, http.StatusBadRequest, "jd or time query parameter is required")
			return
		}

		d := calendar.ToCalendar(jd)
		httputil.WriteJSON(w, http.StatusOK, calendarResponse{
			JD:     jd,
			Year:   d.Year,
			Month:  d.Month,
			Day:    d.Day,
			Hour:   d.Hour,
			Minute: d.Minute,
			Second: d.Second,
			Text:   d.String(),
		})
	})
}

type planResponse struct {
	RunID       string `json:"run_id"`
	Planet      string `json:"planet"`
	Event       string `json:"event"`
	Timing      string `json:"timing"`
	Occurrences int    `json:"occurrences"`
	Frames      int    `json:"frames"`
	AORFile     string `json:"aor_file"`
	AOR         string `json:"aor"`
	DiagFile    string `json:"diag_file"`
	Diagnostics string `json:"diagnostics"`
}

func plansHandler(logger *slog.Logger, planner *plan.Planner) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body plan.DocumentInput
		if !decode(w, r, maxPlanBytes, &body) {
			return
		}
		out, err := planner.PlanDocuments(body)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, planResponse{
			RunID:       out.RunID,
			Planet:      out.Target.Planet,
			Event:       string(out.Target.Event),
			Timing:      out.Target.Timing.String(),
			Occurrences: len(out.Result.Occurrences),
			Frames:      out.Frames,
			AORFile:     out.AORFile,
			AOR:         out.AOR,
			DiagFile:    out.DiagFile,
			Diagnostics: out.Diagnostics,
		})
	})
}

func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// clientErrors are reported to the caller as 400.
var clientErrors = []error{
	orbit.ErrMissingParameter,
	orbit.ErrNoTransit,
	orbit.ErrNonPhysical,
	window.ErrInvalidWindow,
	window.ErrTooManyEvents,
	window.ErrInvalidRequest,
	window.ErrUnknownMode,
	timing.ErrShapeMismatch,
	timing.ErrOrdering,
	timing.ErrNonNumeric,
	plan.ErrUnknownEvent,
	plan.ErrTimingMode,
	irac.ErrUnsupported,
	aor.ErrCoordinate,
}

func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, plan.ErrNoEvents) {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	logger.Error("request failed",
		"component", "api",
		"request_id", httputil.RequestIDFrom(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	httputil.WriteError(w, http.StatusInternalServerError, "internal error")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
