package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/timing"
	"github.com/ccampo133/auto-aor/internal/window"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func tenDayInput() EventWindowsInput {
	return EventWindowsInput{
		Planet:              "WASP-14 b",
		Epoch:               calendar.ToJulian(3, 15, 2009, 12, 0, 30),
		Period:              10,
		Windows:             []window.Window{{Open: 2454900, Close: 2454910}},
		ObservationDuration: 4 * 3600,
		StartWindow:         1800,
		EventDuration:       7200,
	}
}

func TestComputeEventWindows(t *testing.T) {
	_, out, err := computeEventWindows(context.Background(), nil, tenDayInput())
	require.NoError(t, err)
	require.Len(t, out.Occurrences, 1)
	require.Equal(t, []string{
		"TIMING1:  START_DATE=2009 Mar 15, START_TIME=08:45:30, END_DATE=2009 Mar 15, END_TIME=09:15:30",
	}, out.Ingress)
	require.Len(t, out.Egress, 1)
	require.Contains(t, out.MidTimes, "Times of WASP-14 b transit")
}

func TestComputeEventWindowsMode(t *testing.T) {
	in := tenDayInput()
	in.Mode = "egress"
	_, out, err := computeEventWindows(context.Background(), nil, in)
	require.NoError(t, err)
	require.Empty(t, out.Ingress)
	require.Empty(t, out.MidTimes)
	require.Contains(t, out.Egress[0], "START_TIME=11:45:30")

	in.Mode = "upside-down"
	_, _, err = computeEventWindows(context.Background(), nil, in)
	require.ErrorIs(t, err, window.ErrUnknownMode)
}

func TestComputeEventWindowsTooManyEvents(t *testing.T) {
	in := tenDayInput()
	in.Period = 1e-4
	in.Windows = []window.Window{{Open: 2454900, Close: 2455100}}
	_, _, err := computeEventWindows(context.Background(), nil, in)
	require.ErrorIs(t, err, window.ErrTooManyEvents)
}

func TestComputeEventWindowsEclipseNeedsPhase(t *testing.T) {
	in := tenDayInput()
	in.Event = "eclipse"
	_, _, err := computeEventWindows(context.Background(), nil, in)
	require.ErrorIs(t, err, orbit.ErrMissingParameter)

	phase := 0.5
	in.Phase = &phase
	_, out, err := computeEventWindows(context.Background(), nil, in)
	require.NoError(t, err)
	require.Len(t, out.Occurrences, 1)
	require.InDelta(t, in.Epoch-5, out.Occurrences[0].JD, 1e-6)
}

func TestFormatConstraints(t *testing.T) {
	_, out, err := formatConstraints(context.Background(), nil, ConstraintsInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Constraints)
	require.Empty(t, out.Constraints)

	_, _, err = formatConstraints(context.Background(), nil, ConstraintsInput{Starts: []float64{1}})
	require.ErrorIs(t, err, timing.ErrShapeMismatch)

	many := make([]float64, timing.MaxConstraints+1)
	_, _, err = formatConstraints(context.Background(), nil, ConstraintsInput{Starts: many, Ends: many})
	require.ErrorContains(t, err, "at most 10000 constraints")
}

func TestServerTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer(Config{Logger: testLogger})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"compute_event_windows", "format_constraints", "calendar_date"}, names)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "calendar_date",
		Arguments: map[string]any{"jd": 2451545.0},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var got CalendarOutput
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, 2000, got.Year)
	require.Equal(t, 1, got.Month)
	require.Equal(t, 1, got.Day)
	require.Equal(t, 12, got.Hour)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "format_constraints",
		Arguments: map[string]any{"starts": []float64{2}, "ends": []float64{1}},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
}
