// Package aor renders Spitzer SPOT observation request (AOR) files.
package aor

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/ccampo133/auto-aor/internal/irac"
)

//go:embed templates/aor.tmpl
var templateFS embed.FS

var tmpl = template.Must(template.New("aor").Funcs(template.FuncMap{
	"sig":     significant,
	"decimal": decimal,
}).ParseFS(templateFS, "templates/aor.tmpl"))

// HeaderTimeLayout is the generation timestamp layout in the AOR header.
const HeaderTimeLayout = "01/02/2006  15:04:05"

// PostSuffix is appended to the science label to name the post-observation AOR.
const PostSuffix = "-co"

// ErrCoordinate is returned for a right ascension or declination that is not
// colon-separated sexagesimal.
var ErrCoordinate = errors.New("coordinate must be in dd:mm:ss form")

// Observation is one AOR body.
type Observation struct {
	Mission   irac.Mission
	Label     string
	Target    string
	RA        string // hh:mm:ss.ss
	Dec       string // dd:mm:ss.ss
	PMRA      float64
	PMDec     float64
	Offset    irac.Offset
	ReadMode  string
	Channel   int
	FrameTime float64
	Frames    int
	// Constraints are pre-rendered timing constraint lines.
	Constraints []string
}

type bodyView struct {
	TypePrefix  string
	Label       string
	Target      string
	RA          string
	Dec         string
	PMRA        float64
	PMDec       float64
	Offset      irac.Offset
	ReadoutMode string
	Array       string
	FrameTime   float64
	Frames      int
	Constraints []string
}

// Header renders the file header stamped with now.
func Header(now time.Time) (string, error) {
	var b strings.Builder
	if err := writeHeader(&b, now); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeHeader(w io.Writer, now time.Time) error {
	return tmpl.ExecuteTemplate(w, "header", now.Format(HeaderTimeLayout))
}

// Body renders one observation.
func Body(o Observation) (string, error) {
	var b strings.Builder
	if err := writeBody(&b, o); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeBody(w io.Writer, o Observation) error {
	ra, err := SexagesimalRA(o.RA)
	if err != nil {
		return fmt.Errorf("%s: ra: %w", o.Label, err)
	}
	dec, err := SexagesimalDec(o.Dec)
	if err != nil {
		return fmt.Errorf("%s: dec: %w", o.Label, err)
	}
	view := bodyView{
		Label:       o.Label,
		Target:      o.Target,
		RA:          ra,
		Dec:         dec,
		PMRA:        o.PMRA,
		PMDec:       o.PMDec,
		Offset:      o.Offset,
		ReadoutMode: strings.ToUpper(o.ReadMode),
		Array:       irac.ArraySelection(o.Channel),
		FrameTime:   o.FrameTime,
		Frames:      o.Frames,
		Constraints: o.Constraints,
	}
	if o.Mission == irac.Warm {
		view.TypePrefix = "Post-Cryo "
	}
	return tmpl.ExecuteTemplate(w, "body", view)
}

// FooterParams names the chained AORs and the planning files they came from.
type FooterParams struct {
	Science string
	Post    string
	Tep     string
	Aai     string
	Vis     string
}

// Footer renders the CHAIN constraint linking the science and post AORs.
func Footer(p FooterParams) (string, error) {
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, "footer", p); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Document is a complete AOR file: the science observation followed by a
// short post-observation pointing, chained together.
type Document struct {
	Science Observation
	// PostRA and PostDec point the post-observation AOR.
	PostRA  string
	PostDec string
	// PostFrames is the post-observation frame count.
	PostFrames int

	TepName string
	AaiName string
	VisName string
}

// Post returns the post-observation AOR derived from the science one: same
// instrument setup, no proper motion and no timing constraints.
func (d Document) Post() Observation {
	p := d.Science
	p.Label = d.Science.Label + PostSuffix
	p.Target = p.Label
	p.RA, p.Dec = d.PostRA, d.PostDec
	p.PMRA, p.PMDec = 0, 0
	p.Frames = d.PostFrames
	p.Constraints = nil
	return p
}

// Render writes the document to w, stamping the header with now.
func (d Document) Render(w io.Writer, now time.Time) error {
	if err := writeHeader(w, now); err != nil {
		return err
	}
	if err := writeBody(w, d.Science); err != nil {
		return err
	}
	if err := writeBody(w, d.Post()); err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "footer", FooterParams{
		Science: d.Science.Label,
		Post:    d.Science.Label + PostSuffix,
		Tep:     d.TepName,
		Aai:     d.AaiName,
		Vis:     d.VisName,
	})
}

// String renders the document stamped with now.
func (d Document) String(now time.Time) (string, error) {
	var b strings.Builder
	if err := d.Render(&b, now); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SexagesimalRA converts "14:33:06.36" to "14h33m06.36s".
func SexagesimalRA(s string) (string, error) {
	return sexagesimal(s, "h")
}

// SexagesimalDec converts "+21:53:41.0" to "+21d53m41.0s".
func SexagesimalDec(s string) (string, error) {
	return sexagesimal(s, "d")
}

func sexagesimal(s, unit string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrCoordinate, s)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: %q", ErrCoordinate, s)
		}
	}
	return parts[0] + unit + parts[1] + "m" + parts[2] + "s", nil
}

// significant formats v with prec significant digits, switching to exponent
// form for large or small magnitudes and always showing a decimal point in
// fixed form: 0 -> "0.0", -0.0512 -> "-0.051", 129.241 -> "129.24".
func significant(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if prec < 1 {
		prec = 1
	}
	e := strconv.FormatFloat(v, 'e', prec-1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	decpt := exp + 1

	if decpt <= -4 || decpt > prec-1 {
		mant, expPart, _ := strings.Cut(e, "e")
		if strings.Contains(mant, ".") {
			mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
		}
		sign := expPart[0]
		digits := strings.TrimLeft(expPart[1:], "0")
		for len(digits) < 2 {
			digits = "0" + digits
		}
		return mant + "e" + string(sign) + digits
	}

	f := strconv.FormatFloat(v, 'f', prec-decpt, 64)
	if strings.Contains(f, ".") {
		f = strings.TrimRight(f, "0")
	}
	if strings.HasSuffix(f, ".") || !strings.Contains(f, ".") {
		f = strings.TrimSuffix(f, ".") + ".0"
	}
	return f
}

// decimal formats v with the shortest exact decimal and at least one
// fractional digit: 12 -> "12.0", 0.02 -> "0.02".
func decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
