package aorfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/window"
)

// VisibilityOptions controls ParseVisibility.
type VisibilityOptions struct {
	// Now drops windows that closed before it. The zero value keeps every window.
	Now time.Time
}

// ParseVisibility reads a SPOT target visibility file. Rows following the
// line whose first word is "Windows" are read as
//
//	YYYY Mon DD HH:MM:SS ... YYYY Mon DD HH:MM:SS <duration>
//
// The open date is taken from the first four fields and the close date from
// the four fields before the last. Malformed rows are skipped with a warning.
func ParseVisibility(r io.Reader, opts VisibilityOptions, logger *slog.Logger) ([]window.Window, error) {
	var now float64
	if !opts.Now.IsZero() {
		now = calendar.FromTime(opts.Now)
	}

	scanner := bufio.NewScanner(r)
	var (
		windows []window.Window
		inTable bool
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if strings.EqualFold(parts[0], "windows") {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}

		if len(parts) < 9 {
			logger.Warn("skipping short visibility row", "line", lineNo, "fields", len(parts))
			continue
		}
		n := len(parts)
		open, err := parseStamp(parts[0], parts[1], parts[2], parts[3])
		if err != nil {
			logger.Warn("skipping visibility row with invalid open date", "line", lineNo, "error", err)
			continue
		}
		closing, err := parseStamp(parts[n-5], parts[n-4], parts[n-3], parts[n-2])
		if err != nil {
			logger.Warn("skipping visibility row with invalid close date", "line", lineNo, "error", err)
			continue
		}
		w := window.Window{Open: open, Close: closing}
		if err := w.Validate(); err != nil {
			logger.Warn("skipping visibility row", "line", lineNo, "error", err)
			continue
		}
		if now != 0 && closing < now {
			logger.Debug("dropping past visibility window", "line", lineNo, "close_jd", closing)
			continue
		}
		windows = append(windows, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading visibility file: %w", err)
	}
	return windows, nil
}

// parseStamp converts "2010 Jun 05 12:34:56.7" fields to a Julian date.
func parseStamp(year, month, day, clock string) (float64, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, fmt.Errorf("year %q: %w", year, err)
	}
	m, ok := calendar.MonthNumber(month)
	if !ok {
		return 0, fmt.Errorf("unknown month %q", month)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return 0, fmt.Errorf("day %q: %w", day, err)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("time %q is not HH:MM:SS", clock)
	}
	h, err := strconv.Atoi(hms[0])
	if err != nil {
		return 0, fmt.Errorf("hour %q: %w", hms[0], err)
	}
	mi, err := strconv.Atoi(hms[1])
	if err != nil {
		return 0, fmt.Errorf("minute %q: %w", hms[1], err)
	}
	s, err := strconv.ParseFloat(hms[2], 64)
	if err != nil {
		return 0, fmt.Errorf("second %q: %w", hms[2], err)
	}
	return calendar.ToJulian(m, d, y, h, mi, s), nil
}
