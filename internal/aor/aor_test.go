package aor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccampo133/auto-aor/internal/irac"
)

func wasp14Observation() Observation {
	return Observation{
		Mission:   irac.Warm,
		Label:     "wa014bs41",
		Target:    "wa014bs41",
		RA:        "14:33:06.36",
		Dec:       "+21:53:41.0",
		PMRA:      0.02,
		PMDec:     -0.0512,
		Offset:    irac.Offset{Row: 129.241, Column: -125.245},
		ReadMode:  irac.Subarray,
		Channel:   1,
		FrameTime: 0.1,
		Frames:    2544,
		Constraints: []string{
			"TIMING1:  START_DATE=2010 Mar 15, START_TIME=08:45:30, END_DATE=2010 Mar 15, END_TIME=09:15:30",
			"TIMING2:  START_DATE=2010 Mar 17, START_TIME=14:36:25, END_DATE=2010 Mar 17, END_TIME=15:06:25",
		},
	}
}

func TestHeader(t *testing.T) {
	now := time.Date(2010, time.May, 17, 19, 35, 48, 0, time.UTC)
	want := "#  Please edit this file with care to maintain the\n" +
		"#  correct format so that SPOT can still read it\n" +
		"#  Generated by auto_aor on: 05/17/2010  19:35:48\n" +
		"\n" +
		"HEADER: FILE_VERSION=17.0, STATUS=PROPOSAL\n"
	got, err := Header(now)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestBody(t *testing.T) {
	got, err := Body(wasp14Observation())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(got, "\n      AOT_TYPE:  IRAC Post-Cryo Mapping\n"))
	for _, line := range []string{
		"     AOR_LABEL:  wa014bs41\n",
		"   TARGET_NAME:  wa014bs41\n",
		`     POSITION1:  RA_LON=14h33m06.36s, DEC_LAT=+21d53m41.0s, PM_RA=0.02", PM_DEC=-0.051", EPOCH=2000.0` + "\n",
		`     OFFSET_P2:  EAST_ROW_PERP=129.24", NORTH_COL_PARA=-125.25"` + "\n",
		"          READOUT_MODE: SUBARRAY\n",
		"                 ARRAY: 36u=YES, 45u=NO\n",
		"       DATA_COLLECTION: 36u=YES, 45u=NO\n",
		"            FRAME_TIME: 0.1\n",
		" N_FRAMES_PER_POINTING: 2544\n",
	} {
		require.Contains(t, got, line)
	}

	// Constraints follow the SPECIAL line, then six blank lines.
	require.True(t, strings.HasSuffix(got,
		"SPECIAL:  IMPACT = none, LATE_EPHEMERIS = NO,SECOND_LOOK = NO\n"+
			"TIMING1:  START_DATE=2010 Mar 15, START_TIME=08:45:30, END_DATE=2010 Mar 15, END_TIME=09:15:30\n"+
			"TIMING2:  START_DATE=2010 Mar 17, START_TIME=14:36:25, END_DATE=2010 Mar 17, END_TIME=15:06:25\n"+
			"\n\n\n\n\n\n"), got)
}

func TestBodyColdMission(t *testing.T) {
	o := wasp14Observation()
	o.Mission = irac.Cold
	o.Channel = 2
	o.ReadMode = irac.FullArray
	o.FrameTime = 12
	got, err := Body(o)
	require.NoError(t, err)
	require.Contains(t, got, "AOT_TYPE:  IRAC Mapping\n")
	require.Contains(t, got, "ARRAY: 36u=NO, 45u=YES\n")
	require.Contains(t, got, "READOUT_MODE: FULL_ARRAY\n")
	require.Contains(t, got, "FRAME_TIME: 12.0\n")
}

func TestBodyBadCoordinate(t *testing.T) {
	o := wasp14Observation()
	o.Dec = "21.8947"
	_, err := Body(o)
	require.ErrorIs(t, err, ErrCoordinate)
}

func TestFooter(t *testing.T) {
	got, err := Footer(FooterParams{
		Science: "wa014bs41",
		Post:    "wa014bs41-co",
		Tep:     "wa014b.tep",
		Aai:     "wa014bs41.aai",
		Vis:     "wa014b.vis",
	})
	want := "CONSTRAINT: TYPE=CHAIN, NAME=ch-wa014bs41\n" +
		"AORS: AOR1=wa014bs41,\n" +
		"      AOR2=wa014bs41-co\n" +
		"COMMENT_START:\n" +
		"tep used: wa014b.tep \n" +
		"aai used: wa014bs41.aai\n" +
		"vis used: wa014b.vis\n" +
		"COMMENT_END:\n" +
		"\n\n\n\n\n\n"
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDocument(t *testing.T) {
	doc := Document{
		Science:    wasp14Observation(),
		PostRA:     "14:33:10.00",
		PostDec:    "+21:54:00.0",
		PostFrames: 1,
		TepName:    "wa014b.tep",
		AaiName:    "wa014bs41.aai",
		VisName:    "wa014b.vis",
	}
	now := time.Date(2010, time.May, 17, 19, 35, 48, 0, time.UTC)
	got, err := doc.String(now)
	require.NoError(t, err)

	header, err := Header(now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, header))
	sci := strings.Index(got, "AOR_LABEL:  wa014bs41\n")
	post := strings.Index(got, "AOR_LABEL:  wa014bs41-co\n")
	chain := strings.Index(got, "CONSTRAINT: TYPE=CHAIN")
	require.Positive(t, sci)
	require.Greater(t, post, sci)
	require.Greater(t, chain, post)

	postBody := got[post:chain]
	require.Contains(t, postBody, "RA_LON=14h33m10.00s, DEC_LAT=+21d54m00.0s, PM_RA=0.0\", PM_DEC=0.0\"")
	require.Contains(t, postBody, "N_FRAMES_PER_POINTING: 1\n")
	require.NotContains(t, postBody, "TIMING")
	require.Equal(t, 2, strings.Count(got, "TIMING"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderWriteError(t *testing.T) {
	doc := Document{Science: wasp14Observation(), PostRA: "14:33:10.00", PostDec: "+21:54:00.0"}
	err := doc.Render(failingWriter{}, time.Now())
	require.ErrorContains(t, err, "disk full")
}

func TestSignificant(t *testing.T) {
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{0, 2, "0.0"},
		{1, 2, "1.0"},
		{0.5, 2, "0.5"},
		{-0.0512, 2, "-0.051"},
		{0.123, 2, "0.12"},
		{12.3, 2, "1.2e+01"},
		{10, 2, "1e+01"},
		{0.00001234, 2, "1.2e-05"},
		{129.241, 5, "129.24"},
		{120.709, 5, "120.71"},
		{0, 5, "0.0"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, significant(tt.v, tt.prec), "v=%v prec=%d", tt.v, tt.prec)
	}
}

func TestDecimal(t *testing.T) {
	require.Equal(t, "12.0", decimal(12))
	require.Equal(t, "0.4", decimal(0.4))
	require.Equal(t, "0.02", decimal(0.02))
}
