package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/internal/window"
)

const tepText = `planetname  WASP-14b
ttrans      2454746.28890   0.0007
period      2.2437563       0.000009
e           0.087           0.002
omega       -106.0          5.0
ms          1.211
rs          1.306
rp          1.281
i           84.32
impactpar   0.535
ra          14:33:06.36
dec         +21:53:41.0
pmra        0.02            0.01
pmdec       -0.0512         0.01
`

const aaiText = `aorname    wa014bs41
event      eclipse
readmode   subarray
chan       2
frametime  0.1
obsdur     21600
`

const visText = `Windows
2010 Jan 05 12:00:00  to  2010 Jan 20 00:00:00   14.50
`

func writeFiles(t *testing.T, aai string) (dir string, files []string) {
	t.Helper()
	dir = t.TempDir()
	files = []string{
		filepath.Join(dir, "wa014b.tep"),
		filepath.Join(dir, "wa014bs41.aai"),
		filepath.Join(dir, "wa014b.vis"),
	}
	for i, text := range []string{tepText, aai, visText} {
		require.NoError(t, os.WriteFile(files[i], []byte(text), 0o644))
	}
	return dir, files
}

func TestRunPlanWritesFiles(t *testing.T) {
	_, files := writeFiles(t, aaiText)
	out := t.TempDir()

	args := append([]string{"-o", out, "-keep-past"}, files...)
	require.NoError(t, run(args, io.Discard, io.Discard))

	aor, err := os.ReadFile(filepath.Join(out, "wa014bs41.aor"))
	require.NoError(t, err)
	require.Contains(t, string(aor), "AOR_LABEL:  wa014bs41\n")
	require.Contains(t, string(aor), "tep used: wa014b.tep \n")

	diag, err := os.ReadFile(filepath.Join(out, "wa014bs41.diag.txt"))
	require.NoError(t, err)
	require.Contains(t, string(diag), "Filename of AOR generated:\nwa014bs41.aor\n")
}

func TestRunPlanStdout(t *testing.T) {
	_, files := writeFiles(t, aaiText)
	var stdout bytes.Buffer
	args := append([]string{"-stdout", "-keep-past"}, files...)
	require.NoError(t, run(args, &stdout, io.Discard))
	require.Contains(t, stdout.String(), "AOR_LABEL:  wa014bs41-co\n")
	require.Contains(t, stdout.String(), "Object: WASP-14b    Event: TRANSIT\n")
}

func TestRunPlanErrors(t *testing.T) {
	_, files := writeFiles(t, aaiText)
	_, badFiles := writeFiles(t, "aorname x\nevent eclipse\nreadmode subarray\nchan 2\nframetime 0.1\nobsdur 21600\nra -1\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no files", nil, EINVALID},
		{"incomplete triple", files[:2], EINVALID},
		{"unknown flag", []string{"-bogus"}, EINVALID},
		{"all windows past", files, NoEventsErrCode},
		{"missing file", []string{files[0], files[1], filepath.Join(t.TempDir(), "none.vis")}, EIO},
		{"missing parameter", append([]string{"-keep-past"}, badFiles...), ParameterErrCode},
		{"batch with a failure", append(append([]string{"-keep-past", "-stdout"}, files...), badFiles...), BatchErrCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, io.Discard, io.Discard)
			require.Error(t, err)
			require.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestRunTimes(t *testing.T) {
	_, files := writeFiles(t, aaiText)

	var stdout bytes.Buffer
	args := append([]string{"-mode", "midtimes", "-keep-past"}, files...)
	require.NoError(t, run(append([]string{"times"}, args...), &stdout, io.Discard))
	require.True(t, strings.HasPrefix(stdout.String(), "Times of WASP-14b eclipse, solar-system barycenter:\n"))

	stdout.Reset()
	args = append([]string{"-mode", "egress", "-keep-past"}, files...)
	require.NoError(t, run(append([]string{"times"}, args...), &stdout, io.Discard))
	require.True(t, strings.HasPrefix(stdout.String(), "TIMING1:  START_DATE=2010 Jan"))

	err := run([]string{"times", "-mode", "sideways"}, io.Discard, io.Discard)
	require.Equal(t, EINVALID, exitCode(err))
}

func TestRunCalendar(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"calendar", "2451545.0"}, &stdout, io.Discard))
	require.Equal(t, "2451545.0  2000-01-01 12:00:00.000\n", stdout.String())

	err := run([]string{"calendar", "noon"}, io.Discard, io.Discard)
	require.Equal(t, EINVALID, exitCode(err))
}

func TestRunHelp(t *testing.T) {
	err := run([]string{"-h"}, io.Discard, io.Discard)
	require.ErrorIs(t, err, flag.ErrHelp)

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"help"}, &stdout, io.Discard))
	require.Contains(t, stdout.String(), "Usage:")
}

func TestCheckError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&orbit.ParameterError{Name: "period"}, ParameterErrCode},
		{fmt.Errorf("transit duration: mstar=0: %w", orbit.ErrNonPhysical), ParameterErrCode},
		{window.ErrTooManyEvents, EINVALID},
		{plan.ErrNoEvents, NoEventsErrCode},
		{plan.ErrUnknownEvent, EINVALID},
		{os.ErrNotExist, EIO},
		{errors.New("something else"), GenericErrCode},
		{badUsage("bad"), EINVALID},
	}
	for _, tt := range tests {
		require.Equal(t, tt.code, exitCode(checkError(tt.err)), tt.err.Error())
	}
}
