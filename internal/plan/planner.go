package plan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ccampo133/auto-aor/internal/aor"
	"github.com/ccampo133/auto-aor/internal/aorfile"
	"github.com/ccampo133/auto-aor/internal/irac"
	"github.com/ccampo133/auto-aor/internal/metrics"
	"github.com/ccampo133/auto-aor/internal/window"
)

// Input names the three planning files for one target. Each may be a local
// path or an http(s) URL.
type Input struct {
	Tep string `json:"tep"`
	Aai string `json:"aai"`
	Vis string `json:"vis"`
	// KeepPast keeps visibility windows that have already closed.
	KeepPast bool `json:"keep_past,omitempty"`
}

// Sources are the planning file names recorded in the AOR and diagnostics.
type Sources struct {
	Tep string
	Aai string
	Vis string
}

// Output is a complete observation plan for one target.
type Output struct {
	RunID         string
	Target        Target
	Phase         Phase
	EventDuration float64 // seconds; zero when defaulted by the window calculator
	Windows       []window.Window
	Result        *window.Result
	Exposure      irac.Exposure
	Frames        int
	AORFile       string
	AOR           string
	DiagFile      string
	Diagnostics   string
}

// Planner builds observation plans.
type Planner struct {
	fetcher  *aorfile.Fetcher
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
}

// NewPlanner creates a Planner that reads planning files through fetcher.
func NewPlanner(fetcher *aorfile.Fetcher, defaults Defaults, logger *slog.Logger) *Planner {
	return &Planner{
		fetcher:  fetcher,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for the AOR header and for dropping past
// visibility windows.
func (p *Planner) SetClock(now func() time.Time) {
	p.now = now
}

// Plan reads the planning files named by in and builds the plan.
func (p *Planner) Plan(ctx context.Context, in Input) (*Output, error) {
	tep, err := p.fetcher.LoadParams(ctx, in.Tep)
	if err != nil {
		return nil, fmt.Errorf("loading tep: %w", err)
	}
	aai, err := p.fetcher.LoadParams(ctx, in.Aai)
	if err != nil {
		return nil, fmt.Errorf("loading aai: %w", err)
	}
	opts := aorfile.VisibilityOptions{}
	if !in.KeepPast {
		opts.Now = p.now()
	}
	windows, err := p.fetcher.LoadVisibility(ctx, in.Vis, opts)
	if err != nil {
		return nil, fmt.Errorf("loading vis: %w", err)
	}

	return p.plan(tep, aai, windows, Sources{
		Tep: filepath.Base(in.Tep),
		Aai: filepath.Base(in.Aai),
		Vis: filepath.Base(in.Vis),
	})
}

// Document is a planning file supplied by content rather than location.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DocumentInput carries the three planning files inline.
type DocumentInput struct {
	Tep      Document `json:"tep"`
	Aai      Document `json:"aai"`
	Vis      Document `json:"vis"`
	KeepPast bool     `json:"keep_past,omitempty"`
}

// PlanDocuments builds the plan from inline planning files.
func (p *Planner) PlanDocuments(in DocumentInput) (*Output, error) {
	tep, err := aorfile.ParseParams(strings.NewReader(in.Tep.Content), p.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing tep: %w", err)
	}
	aai, err := aorfile.ParseParams(strings.NewReader(in.Aai.Content), p.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing aai: %w", err)
	}
	opts := aorfile.VisibilityOptions{}
	if !in.KeepPast {
		opts.Now = p.now()
	}
	windows, err := aorfile.ParseVisibility(strings.NewReader(in.Vis.Content), opts, p.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing vis: %w", err)
	}
	return p.plan(tep, aai, windows, Sources{Tep: in.Tep.Name, Aai: in.Aai.Name, Vis: in.Vis.Name})
}

// plan merges the target files, the aai taking precedence, and builds the plan.
func (p *Planner) plan(tep, aai aorfile.Params, windows []window.Window, src Sources) (*Output, error) {
	target, err := TargetFromParams(tep.Merge(aai), p.defaults)
	if err != nil {
		return nil, err
	}
	return p.Build(target, windows, src)
}

// Build plans target over the given visibility windows.
func (p *Planner) Build(target Target, windows []window.Window, src Sources) (out *Output, err error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID, "planet", target.Planet, "event", string(target.Event))
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
			logger.Error("planning failed", "error", err)
		}
		metrics.RecordPlan(string(target.Event), outcome, time.Since(start))
	}()

	phase, err := ResolvePhase(target, logger)
	if err != nil {
		return nil, err
	}
	evdur, err := ResolveDuration(target, logger)
	if err != nil {
		return nil, err
	}
	CheckUncertainties(target, phase, logger)

	req := window.Request{
		Planet:              target.Planet,
		Event:               string(target.Event),
		Phase:               phase.Value,
		PhaseUncertainty:    phase.Uncertainty,
		Ephemeris:           target.Ephemeris,
		Windows:             windows,
		ObservationDuration: target.ObservationDuration,
		StartWindow:         target.StartWindow,
		CenterShift:         target.CenterShift,
		EventDuration:       evdur,
	}
	res, err := window.Compute(req)
	if err != nil {
		return nil, err
	}
	metrics.RecordOccurrences(string(target.Event), len(res.Occurrences))
	if len(res.Occurrences) == 0 {
		return nil, fmt.Errorf("%s %s: %w", target.Planet, target.Event, ErrNoEvents)
	}

	exp, err := irac.ExposureParams(target.ReadMode, target.FrameTime)
	if err != nil {
		return nil, err
	}
	offset, err := irac.Offsets(target.Channel)
	if err != nil {
		return nil, err
	}
	frames := exp.Frames(target.ObservationDuration)
	constraints, err := res.Output(target.Timing)
	if err != nil {
		return nil, err
	}

	doc := aor.Document{
		Science: aor.Observation{
			Mission:     target.Mission,
			Label:       target.AORName,
			Target:      target.AORName,
			RA:          target.RA,
			Dec:         target.Dec,
			PMRA:        properMotion(target.PMRA),
			PMDec:       properMotion(target.PMDec),
			Offset:      offset,
			ReadMode:    target.ReadMode,
			Channel:     target.Channel,
			FrameTime:   target.FrameTime,
			Frames:      frames,
			Constraints: constraints.Constraints,
		},
		PostRA:     target.PostRA,
		PostDec:    target.PostDec,
		PostFrames: exp.PostFrames(),
		TepName:    src.Tep,
		AaiName:    src.Aai,
		VisName:    src.Vis,
	}
	text, err := doc.String(p.now())
	if err != nil {
		return nil, err
	}

	eclipse, transit, err := p.diagnosticTimes(target, phase, req, logger)
	if err != nil {
		return nil, err
	}
	aorFile := target.AORName + ".aor"

	logger.Info("observation planned",
		"aor", aorFile,
		"occurrences", len(res.Occurrences),
		"frames", frames,
		"timing", target.Timing.String(),
	)

	return &Output{
		RunID:         runID,
		Target:        target,
		Phase:         phase,
		EventDuration: evdur,
		Windows:       windows,
		Result:        res,
		Exposure:      exp,
		Frames:        frames,
		AORFile:       aorFile,
		AOR:           text,
		DiagFile:      target.AORName + ".diag.txt",
		Diagnostics: Diagnostics(DiagnosticsInput{
			RunID:   runID,
			AORFile: aorFile,
			TepFile: src.Tep,
			AaiFile: src.Aai,
			VisFile: src.Vis,
			Planet:  target.Planet,
			Eclipse: eclipse,
			Transit: transit,
		}),
	}, nil
}

// diagnosticTimes computes the eclipse and transit mid-times reported with
// every plan, regardless of which event the AOR targets.
func (p *Planner) diagnosticTimes(t Target, resolved Phase, req window.Request, logger *slog.Logger) (eclipse, transit *window.Result, err error) {
	ecl := diagnosticEclipsePhase(t, resolved, logger)
	req.Event = string(EventEclipse)
	req.Phase, req.PhaseUncertainty = ecl.Value, ecl.Uncertainty
	if eclipse, err = window.Compute(req); err != nil {
		return nil, nil, fmt.Errorf("eclipse times: %w", err)
	}

	req.Event = string(EventTransit)
	req.Phase, req.PhaseUncertainty = 0, 0
	if transit, err = window.Compute(req); err != nil {
		return nil, nil, fmt.Errorf("transit times: %w", err)
	}
	return eclipse, transit, nil
}

// BatchResult pairs a batch input with its plan or error.
type BatchResult struct {
	Input  Input
	Output *Output
	Err    error
}

// RunBatch plans every input concurrently, bounded by concurrency (the
// number of CPUs when non-positive). Results keep the order of inputs.
func (p *Planner) RunBatch(ctx context.Context, inputs []Input, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	results := make([]BatchResult, len(inputs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, in := range inputs {
		wg.Add(1)
		go func(idx int, in Input) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = BatchResult{Input: in, Err: ctx.Err()}
				return
			}

			out, err := p.Plan(ctx, in)
			results[idx] = BatchResult{Input: in, Output: out, Err: err}
		}(i, in)
	}

	wg.Wait()
	return results
}
