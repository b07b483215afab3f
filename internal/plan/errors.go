package plan

import "errors"

var (
	// ErrUnknownEvent is returned for an event other than transit or eclipse.
	ErrUnknownEvent = errors.New("event must be transit or eclipse")
	// ErrTimingMode is returned when the AOR timing mode is not ingress or egress.
	ErrTimingMode = errors.New("AOR timing must be ingress or egress")
	// ErrNoEvents is returned when no event falls inside any visibility window.
	ErrNoEvents = errors.New("no events inside the visibility windows")
)
