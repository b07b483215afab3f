package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/ccampo133/auto-aor/internal/aor"
	"github.com/ccampo133/auto-aor/internal/aorfile"
	"github.com/ccampo133/auto-aor/internal/irac"
	"github.com/ccampo133/auto-aor/internal/orbit"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/internal/timing"
	"github.com/ccampo133/auto-aor/internal/window"
)

const (
	EINVALID = 22
	EIO      = 5
)

const (
	GenericErrCode = 5000 + iota
	ParameterErrCode
	NoEventsErrCode
	InstrumentErrCode
	BatchErrCode
)

type Error struct {
	Cause error
	Code  int
}

func (e *Error) Error() string {
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Exit(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINVALID
}

func badUsage(format string, args ...any) error {
	return &Error{
		Cause: fmt.Errorf(format, args...),
		Code:  EINVALID,
	}
}

// checkError assigns an exit code to a planning error.
func checkError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	code := GenericErrCode
	switch {
	case errors.Is(err, orbit.ErrMissingParameter), errors.Is(err, orbit.ErrNoTransit),
		errors.Is(err, orbit.ErrNonPhysical):
		code = ParameterErrCode
	case errors.Is(err, plan.ErrNoEvents):
		code = NoEventsErrCode
	case errors.Is(err, irac.ErrUnsupported), errors.Is(err, aor.ErrCoordinate):
		code = InstrumentErrCode
	case errors.Is(err, plan.ErrUnknownEvent), errors.Is(err, plan.ErrTimingMode),
		errors.Is(err, window.ErrUnknownMode), errors.Is(err, window.ErrInvalidRequest),
		errors.Is(err, window.ErrInvalidWindow), errors.Is(err, window.ErrTooManyEvents),
		errors.Is(err, timing.ErrOrdering):
		code = EINVALID
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, aorfile.ErrTooLarge), errors.Is(err, aorfile.ErrFetch):
		code = EIO
	default:
		var errno syscall.Errno
		if errors.As(err, &errno) {
			code = int(errno)
		}
	}
	return &Error{Cause: err, Code: code}
}
