package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/internal/timing"
	"github.com/ccampo133/auto-aor/internal/window"
)

// EventWindowsInput is the compute_event_windows argument.
type EventWindowsInput struct {
	Planet              string          `json:"planet" jsonschema:"planet name used in reports"`
	Event               string          `json:"event,omitempty" jsonschema:"event name, transit by default"`
	Phase               *float64        `json:"phase,omitempty" jsonschema:"orbital phase of the event, 0 for transit and about 0.5 for eclipse"`
	PhaseUncertainty    float64         `json:"phase_uncertainty,omitempty" jsonschema:"1-sigma phase uncertainty"`
	Epoch               float64         `json:"epoch" jsonschema:"transit epoch, Julian date"`
	EpochUncertainty    float64         `json:"epoch_uncertainty,omitempty" jsonschema:"epoch 1-sigma uncertainty in days"`
	Period              float64         `json:"period" jsonschema:"orbital period in days"`
	PeriodUncertainty   float64         `json:"period_uncertainty,omitempty" jsonschema:"period 1-sigma uncertainty in days"`
	Windows             []window.Window `json:"windows" jsonschema:"visibility windows as Julian date open/close pairs"`
	ObservationDuration float64         `json:"observation_duration" jsonschema:"observation length in seconds"`
	StartWindow         float64         `json:"start_window" jsonschema:"width of each start window in seconds"`
	CenterShift         float64         `json:"center_shift,omitempty" jsonschema:"seconds to move the observation earlier relative to the event"`
	EventDuration       float64         `json:"event_duration,omitempty" jsonschema:"event duration in seconds, observation length minus one hour when omitted"`
	Mode                string          `json:"mode,omitempty" jsonschema:"ingress, egress or midtimes; all products when omitted"`
}

// Occurrence is one predicted event.
type Occurrence struct {
	JD                 float64 `json:"jd"`
	Date               string  `json:"date"`
	UncertaintySeconds float64 `json:"uncertainty_seconds"`
}

// EventWindowsOutput is the compute_event_windows result. With a mode only
// the selected product is filled in.
type EventWindowsOutput struct {
	Occurrences []Occurrence `json:"occurrences"`
	Ingress     []string     `json:"ingress,omitempty"`
	Egress      []string     `json:"egress,omitempty"`
	MidTimes    string       `json:"midtimes,omitempty"`
}

func (in EventWindowsInput) request() window.Request {
	event := in.Event
	if event == "" {
		event = string(plan.EventTransit)
	}
	phase := orbit.Undefined
	switch {
	case in.Phase != nil:
		phase = *in.Phase
	case event == string(plan.EventTransit):
		phase = 0
	}
	return window.Request{
		Planet:           in.Planet,
		Event:            event,
		Phase:            phase,
		PhaseUncertainty: in.PhaseUncertainty,
		Ephemeris: orbit.Ephemeris{
			Epoch:  orbit.Measurement{Value: in.Epoch, Uncertainty: in.EpochUncertainty},
			Period: orbit.Measurement{Value: in.Period, Uncertainty: in.PeriodUncertainty},
		},
		Windows:             in.Windows,
		ObservationDuration: in.ObservationDuration,
		StartWindow:         in.StartWindow,
		CenterShift:         in.CenterShift,
		EventDuration:       in.EventDuration,
	}
}

func computeEventWindows(_ context.Context, _ *sdkmcp.CallToolRequest, in EventWindowsInput) (*sdkmcp.CallToolResult, EventWindowsOutput, error) {
	res, err := window.Compute(in.request())
	if err != nil {
		return nil, EventWindowsOutput{}, err
	}

	out := EventWindowsOutput{Occurrences: make([]Occurrence, len(res.Occurrences))}
	for i, o := range res.Occurrences {
		out.Occurrences[i] = Occurrence{
			JD:                 o.JD,
			Date:               calendar.ToCalendar(o.JD).String(),
			UncertaintySeconds: o.UncertaintySeconds(),
		}
	}
	if in.Mode == "" {
		out.Ingress, out.Egress, out.MidTimes = res.Ingress, res.Egress, res.MidTimes()
		return nil, out, nil
	}

	mode, err := window.ParseMode(in.Mode)
	if err != nil {
		return nil, EventWindowsOutput{}, err
	}
	switch mode {
	case window.ModeIngress:
		out.Ingress = res.Ingress
	case window.ModeEgress:
		out.Egress = res.Egress
	case window.ModeMidTimes:
		out.MidTimes = res.MidTimes()
	}
	return nil, out, nil
}

// ConstraintsInput is the format_constraints argument.
type ConstraintsInput struct {
	Starts []float64 `json:"starts" jsonschema:"start window openings, Julian dates"`
	Ends   []float64 `json:"ends" jsonschema:"start window closings, Julian dates"`
}

// ConstraintsOutput is the format_constraints result.
type ConstraintsOutput struct {
	Constraints []string `json:"constraints"`
}

func formatConstraints(_ context.Context, _ *sdkmcp.CallToolRequest, in ConstraintsInput) (*sdkmcp.CallToolResult, ConstraintsOutput, error) {
	if len(in.Starts) > timing.MaxConstraints {
		return nil, ConstraintsOutput{}, fmt.Errorf("at most %d constraints per call, got %d", timing.MaxConstraints, len(in.Starts))
	}
	lines, err := timing.Format(in.Starts, in.Ends)
	if err != nil {
		return nil, ConstraintsOutput{}, err
	}
	if lines == nil {
		lines = []string{}
	}
	return nil, ConstraintsOutput{Constraints: lines}, nil
}

// CalendarInput is the calendar_date argument.
type CalendarInput struct {
	JD float64 `json:"jd" jsonschema:"Julian date"`
}

// CalendarOutput is a Gregorian UTC date.
type CalendarOutput struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Day    int     `json:"day"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Second float64 `json:"second"`
	Text   string  `json:"text"`
}

func calendarDate(_ context.Context, _ *sdkmcp.CallToolRequest, in CalendarInput) (*sdkmcp.CallToolResult, CalendarOutput, error) {
	d := calendar.ToCalendar(in.JD)
	return nil, CalendarOutput{
		Year:   d.Year,
		Month:  d.Month,
		Day:    d.Day,
		Hour:   d.Hour,
		Minute: d.Minute,
		Second: d.Second,
		Text:   d.String(),
	}, nil
}

// PlanInput is the plan_observation argument.
type PlanInput struct {
	Tep      plan.Document `json:"tep" jsonschema:"target ephemeris parameter file"`
	Aai      plan.Document `json:"aai" jsonschema:"AOR parameter file"`
	Vis      plan.Document `json:"vis" jsonschema:"SPOT visibility file"`
	KeepPast bool          `json:"keep_past,omitempty" jsonschema:"keep visibility windows that have already closed"`
}

// PlanOutput is the plan_observation result.
type PlanOutput struct {
	RunID       string `json:"run_id"`
	AORFile     string `json:"aor_file"`
	AOR         string `json:"aor"`
	DiagFile    string `json:"diag_file"`
	Diagnostics string `json:"diagnostics"`
	Occurrences int    `json:"occurrences"`
	Frames      int    `json:"frames"`
}

func planObservation(planner *plan.Planner) sdkmcp.ToolHandlerFor[PlanInput, PlanOutput] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in PlanInput) (*sdkmcp.CallToolResult, PlanOutput, error) {
		out, err := planner.PlanDocuments(plan.DocumentInput{Tep: in.Tep, Aai: in.Aai, Vis: in.Vis, KeepPast: in.KeepPast})
		if err != nil {
			return nil, PlanOutput{}, err
		}
		return nil, PlanOutput{
			RunID:       out.RunID,
			AORFile:     out.AORFile,
			AOR:         out.AOR,
			DiagFile:    out.DiagFile,
			Diagnostics: out.Diagnostics,
			Occurrences: len(out.Result.Occurrences),
			Frames:      out.Frames,
		}, nil
	}
}

func registerTools(server *sdkmcp.Server, planner *plan.Planner) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "compute_event_windows",
		Description: "Predict transit or eclipse mid-times inside visibility windows and derive the SPOT ingress and egress timing constraints",
	}, computeEventWindows)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "format_constraints",
		Description: "Render Julian date start/end pairs as numbered SPOT TIMING constraint lines",
	}, formatConstraints)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "calendar_date",
		Description: "Convert a Julian date to a Gregorian UTC calendar date",
	}, calendarDate)
	if planner != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "plan_observation",
			Description: "Build a Spitzer AOR and its timing diagnostics from .tep, .aai and .vis file contents",
		}, planObservation(planner))
	}
}
