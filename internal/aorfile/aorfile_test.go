package aorfile

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/orbit"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const tepSample = `# WASP-14b transiting exoplanet parameters
planetname  WASP-14b
ttrans      2454746.28890   0.0007   # BJD
period      2.2437563       0.000009
e           0.087           0.002
omega       -1              -1
RA          14:33:06.36
impactpar   0.535
rs 1.306 # no uncertainty
orphan
`

func TestParseParams(t *testing.T) {
	p, err := ParseParams(strings.NewReader(tepSample), testLogger)
	require.NoError(t, err)

	require.Equal(t, orbit.Measurement{Value: 2454746.28890, Uncertainty: 0.0007}, p.Measurement("ttrans"))
	require.Equal(t, orbit.Measurement{Value: 0.087, Uncertainty: 0.002}, p.Measurement("E"))

	// Undefined values stay as the sentinel.
	w := p.Measurement("omega")
	require.False(t, w.Defined())
	require.Zero(t, w.Sigma())

	// Keys are lower-cased; strings are kept raw.
	name, ok := p.String("planetname")
	require.True(t, ok)
	require.Equal(t, "WASP-14b", name)
	ra, ok := p.String("ra")
	require.True(t, ok)
	require.Equal(t, "14:33:06.36", ra)
	_, ok = p.Float("ra")
	require.False(t, ok)

	// Scalars have no uncertainty.
	b, ok := p.Float("impactpar")
	require.True(t, ok)
	require.InDelta(t, 0.535, b, 1e-12)
	require.Equal(t, orbit.Undefined, p.Measurement("impactpar").Uncertainty)

	// A trailing comment does not become an uncertainty.
	require.InDelta(t, 1.306, p.FloatOr("rs", 0), 1e-12)
	require.Equal(t, orbit.Undefined, p.Measurement("rs").Uncertainty)

	// A key with no value is skipped.
	require.False(t, p.Has("orphan"))

	missing := p.Measurement("nothere")
	require.False(t, missing.Defined())
	require.Equal(t, "dflt", p.StringOr("nothere", "dflt"))
}

func TestParseParamsBadUncertainty(t *testing.T) {
	p, err := ParseParams(strings.NewReader("period 2.2 abc\n"), testLogger)
	require.NoError(t, err)
	require.False(t, p.Has("period"))
}

func TestParamsMerge(t *testing.T) {
	tep, err := ParseParams(strings.NewReader("period 2.2 0.1\nra 1:2:3\n"), testLogger)
	require.NoError(t, err)
	aai, err := ParseParams(strings.NewReader("ra 4:5:6\nchan 2\n"), testLogger)
	require.NoError(t, err)

	m := tep.Merge(aai)
	require.Equal(t, "4:5:6", m.StringOr("ra", ""))
	require.InDelta(t, 2.2, m.FloatOr("period", 0), 1e-12)
	require.InDelta(t, 2, m.FloatOr("chan", 0), 1e-12)
	// Inputs are untouched.
	require.Equal(t, "1:2:3", tep.StringOr("ra", ""))
}

const visSample = `# Target visibility, generated by SPOT
Target:  WASP-14
Windows
2010 Jan 05 12:00:00  to  2010 Jan 10 00:00:00   4.50
2010 Jan 25 06:30:00      2010 Feb 03 08:30:00   9.08
2010 Feb 30 00:00:00  to  2010 Mar 03 00:00:00   1.00
2010 Xyz 01 00:00:00  to  2010 Mar 03 00:00:00   1.00
too short
`

func TestParseVisibility(t *testing.T) {
	ws, err := ParseVisibility(strings.NewReader(visSample), VisibilityOptions{}, testLogger)
	require.NoError(t, err)
	// The "Feb 30" row still converts (the Julian formula is proleptic and
	// lenient); only the unknown month and short row are skipped.
	require.Len(t, ws, 3)

	require.InDelta(t, 2455202.0, ws[0].Open, 1e-9)
	require.InDelta(t, 2455206.5, ws[0].Close, 1e-9)
	require.InDelta(t, calendar.ToJulian(1, 25, 2010, 6, 30, 0), ws[1].Open, 1e-9)
	require.InDelta(t, calendar.ToJulian(2, 3, 2010, 8, 30, 0), ws[1].Close, 1e-9)
}

func TestParseVisibilityDropsPastWindows(t *testing.T) {
	now := time.Date(2010, time.January, 20, 0, 0, 0, 0, time.UTC)
	ws, err := ParseVisibility(strings.NewReader(visSample), VisibilityOptions{Now: now}, testLogger)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	require.InDelta(t, calendar.ToJulian(1, 25, 2010, 6, 30, 0), ws[0].Open, 1e-9)
}

func TestParseVisibilityNoTable(t *testing.T) {
	ws, err := ParseVisibility(strings.NewReader("2010 Jan 05 12:00:00 2010 Jan 10 00:00:00 4.5\n"), VisibilityOptions{}, testLogger)
	require.NoError(t, err)
	require.Empty(t, ws)
}

func TestFetcherLocalFiles(t *testing.T) {
	dir := t.TempDir()
	tep := filepath.Join(dir, "wasp14.tep")
	vis := filepath.Join(dir, "wasp14.vis")
	require.NoError(t, os.WriteFile(tep, []byte(tepSample), 0o644))
	require.NoError(t, os.WriteFile(vis, []byte(visSample), 0o644))

	f := NewFetcher(0, testLogger)
	p, err := f.LoadParams(context.Background(), tep)
	require.NoError(t, err)
	require.True(t, p.Has("ttrans"))

	ws, err := f.LoadVisibility(context.Background(), vis, VisibilityOptions{})
	require.NoError(t, err)
	require.Len(t, ws, 3)

	_, err = f.LoadParams(context.Background(), filepath.Join(dir, "missing.tep"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetcherRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(tepSample))
	}))
	defer server.Close()

	p, err := NewFetcher(0, testLogger).LoadParams(context.Background(), server.URL+"/wasp14.tep")
	require.NoError(t, err)
	require.Equal(t, "WASP-14b", p.StringOr("planetname", ""))
}

func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewFetcher(0, testLogger).Open(context.Background(), server.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.ErrorIs(t, err, ErrFetch)
}

func TestFetcherBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("A", 2048)))
	}))
	defer server.Close()

	_, err := NewFetcher(1024, testLogger).Open(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrTooLarge)
}
