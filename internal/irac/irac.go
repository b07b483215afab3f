// Package irac holds the IRAC instrument calibration used to size an
// observation: readout and overhead times per readout mode and frame time,
// and the default pointing offsets per channel.
package irac

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Readout modes.
const (
	FullArray = "full_array"
	Subarray  = "subarray"
)

// baseOverhead is the slew and setup overhead SPOT reports for every AOR.
const baseOverhead = 215.0

// ErrUnsupported is wrapped by every ConfigError.
var ErrUnsupported = errors.New("unsupported IRAC configuration")

// ConfigError reports a readout mode, frame time or channel with no calibration.
type ConfigError struct {
	ReadMode  string
	FrameTime float64
	Channel   int
}

func (e *ConfigError) Error() string {
	if e.Channel != 0 {
		return fmt.Sprintf("%s: channel %d", ErrUnsupported, e.Channel)
	}
	return fmt.Sprintf("%s: read mode %q with frame time %gs", ErrUnsupported, e.ReadMode, e.FrameTime)
}

func (e *ConfigError) Unwrap() error { return ErrUnsupported }

// Exposure is the timing model of one readout configuration:
// duration = frames*(FrameTime+Readout) + Overhead, all in seconds.
type Exposure struct {
	ReadMode  string  `json:"read_mode"`
	FrameTime float64 `json:"frame_time"`
	Readout   float64 `json:"readout"`
	Overhead  float64 `json:"overhead"`
}

type calibration struct {
	readout, extra float64
}

// Values fitted against SPOT frame counts and durations.
var calibrations = map[string]map[float64]calibration{
	FullArray: {
		12:  {1.20, 20.50},
		6:   {1.20, 20.50},
		2:   {1.40, 17.40},
		0.4: {2.00, 17.40},
	},
	Subarray: {
		2:    {127.40, 18.4},
		0.4:  {27.00, 18.4},
		0.1:  {8.30, 18.4},
		0.02: {3.38, 18.4},
	},
}

// ParseReadMode normalizes a readout mode name.
func ParseReadMode(s string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(s))
	m = strings.ReplaceAll(m, " ", "_")
	switch m {
	case FullArray, "fullarray", "full":
		return FullArray, nil
	case Subarray, "sub_array", "sub":
		return Subarray, nil
	}
	return "", &ConfigError{ReadMode: s}
}

// ExposureParams returns the calibrated readout time and overhead for the
// given readout mode and frame time.
func ExposureParams(readMode string, frameTime float64) (Exposure, error) {
	table, ok := calibrations[readMode]
	if !ok {
		return Exposure{}, &ConfigError{ReadMode: readMode, FrameTime: frameTime}
	}
	c, ok := table[frameTime]
	if !ok {
		return Exposure{}, &ConfigError{ReadMode: readMode, FrameTime: frameTime}
	}
	return Exposure{
		ReadMode:  readMode,
		FrameTime: frameTime,
		Readout:   c.readout,
		Overhead:  baseOverhead + c.extra,
	}, nil
}

// Frames returns the number of frames needed to fill an observation of
// duration seconds.
func (e Exposure) Frames(duration float64) int {
	return int(math.Ceil((duration - e.Overhead) / (e.FrameTime + e.Readout)))
}

// Duration returns the length in seconds of an observation of n frames.
func (e Exposure) Duration(n int) float64 {
	return float64(n)*(e.FrameTime+e.Readout) + e.Overhead
}

// PostFrames is the frame count of the short post-observation AOR:
// one 64-frame cycle in subarray mode, ten frames otherwise.
func (e Exposure) PostFrames() int {
	if e.ReadMode == Subarray {
		return 1
	}
	return 10
}

// Offset is a pointing offset in arcseconds from the array center to the
// default well-behaved pixel of a channel.
type Offset struct {
	Row    float64 `json:"row"`
	Column float64 `json:"column"`
}

// Channels 3 and 4 have no measured pixel and point at the array center.
var offsets = map[int]Offset{
	1:  {129.241, -125.245},
	2:  {124.164, -125.515},
	3:  {0, 0},
	4:  {0, 0},
	12: {120.709, -125.532},
	13: {120.709, -125.532},
	24: {124.424, -125.245},
}

// Offsets returns the pointing offset for an IRAC channel.
func Offsets(channel int) (Offset, error) {
	o, ok := offsets[channel]
	if !ok {
		return Offset{}, &ConfigError{Channel: channel}
	}
	return o, nil
}

// Mission is the Spitzer mission phase, which changes the AOR vocabulary.
type Mission int

const (
	Warm Mission = iota
	Cold
)

// ParseMission accepts "warm" or "cold"; empty selects Warm.
func ParseMission(s string) (Mission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warm", "post-cryo", "postcryo":
		return Warm, nil
	case "cold", "cryo":
		return Cold, nil
	}
	return Warm, fmt.Errorf("%w: mission %q", ErrUnsupported, s)
}

func (m Mission) String() string {
	if m == Cold {
		return "cold"
	}
	return "warm"
}

// ArraySelection returns the SPOT ARRAY/DATA_COLLECTION value for a channel.
// Only the 3.6 and 4.5 micron arrays are available; channel 1 (and the
// 1+3 / 1+2 pairs) selects 3.6 micron, anything else 4.5 micron.
func ArraySelection(channel int) string {
	if channel == 1 {
		return "36u=YES, 45u=NO"
	}
	return "36u=NO, 45u=YES"
}
