package plan

import (
	"fmt"
	"strings"

	"github.com/ccampo133/auto-aor/internal/window"
)

// DiagnosticsInput is everything reported alongside a generated AOR.
type DiagnosticsInput struct {
	RunID   string
	AORFile string
	TepFile string
	AaiFile string
	VisFile string
	Planet  string
	Eclipse *window.Result
	Transit *window.Result
}

// Diagnostics renders the timing report written next to an AOR: the files
// involved, then the eclipse and transit mid-times in every visibility window.
func Diagnostics(in DiagnosticsInput) string {
	var b strings.Builder
	if in.RunID != "" {
		fmt.Fprintf(&b, "Planning run: %s\n\n", in.RunID)
	}
	fmt.Fprintf(&b, "Filename of AOR generated:\n%s\n\n", in.AORFile)
	fmt.Fprintf(&b, "Filename of .tep file used in auto generation:\n%s\n\n", in.TepFile)
	fmt.Fprintf(&b, "Filename of .aai file used in auto generation:\n%s\n\n", in.AaiFile)
	fmt.Fprintf(&b, "Filename of .vis file used in auto generation:\n%s\n\n", in.VisFile)
	fmt.Fprintf(&b, "Object: %s    Event: %s\n%s\n", in.Planet, "ECLIPSE", midTimes(in.Eclipse))
	fmt.Fprintf(&b, "Object: %s    Event: %s\n%s\n", in.Planet, "TRANSIT", midTimes(in.Transit))
	return b.String()
}

func midTimes(r *window.Result) string {
	if r == nil {
		return ""
	}
	return r.MidTimes()
}
