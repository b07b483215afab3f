// Package calendar converts between Julian dates and proleptic Gregorian
// calendar dates.
package calendar

import (
	"fmt"
	"math"
	"time"
)

const (
	// UnixEpoch is the Julian date of 1970-01-01T00:00:00 UTC.
	UnixEpoch = 2440587.5

	secondsPerDay = 86400.0
)

var monthAbbrev = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Date is a Gregorian calendar date with time of day. Second may be fractional.
type Date struct {
	Month  int
	Day    int
	Year   int
	Hour   int
	Minute int
	Second float64
}

// VerboseDate is a Date whose month is rendered as a three-letter abbreviation.
type VerboseDate struct {
	Month  string
	Day    int
	Year   int
	Hour   int
	Minute int
	Second float64
}

// ToCalendar converts a Julian date to a Gregorian calendar date.
//
// The conversion uses the fixed integer/fractional arithmetic of the standard
// astronomical routine (Meeus, ch. 7) without the Julian calendar switch, so
// every date is proleptic Gregorian.
func ToCalendar(jd float64) Date {
	jd += 0.5
	z := float64(int64(jd))
	f := jd - z

	alpha := float64(int64((z - 1867216.25) / 36524.25))
	a := z + 1 + alpha - float64(int64(alpha/4))
	b := a + 1524
	c := float64(int64((b - 122.1) / 365.25))
	d := float64(int64(365.25 * c))
	e := float64(int64((b - d) / 30.6001))

	dd := b - d - float64(int64(30.6001*e)) + f

	month := e - 1
	if e >= 13.5 {
		month = e - 13
	}
	year := c - 4715
	if month > 2.5 {
		year = c - 4716
	}

	day := float64(int64(dd))
	frac := dd - day
	h := float64(int64(frac * 24))
	m := float64(int64((frac*24 - h) * 60))
	s := secondsPerDay*frac - h*3600 - m*60

	return Date{
		Month:  int(month),
		Day:    int(day),
		Year:   int(year),
		Hour:   int(h),
		Minute: int(m),
		Second: s,
	}
}

// ToCalendarAll converts every Julian date in jds, preserving order.
func ToCalendarAll(jds []float64) []Date {
	dates := make([]Date, len(jds))
	for i, jd := range jds {
		dates[i] = ToCalendar(jd)
	}
	return dates
}

// ToJulian converts a Gregorian calendar date and time of day to a Julian date.
// It is the inverse of ToCalendar.
func ToJulian(month, day, year, hour, minute int, second float64) float64 {
	y := float64(year)
	m := float64(month)

	// Jan/Feb are months 13/14 of the previous year.
	if m <= 2 {
		y--
		m += 12
	}

	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	jd := math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + float64(day) + B - 1524.5
	jd += (float64(hour) + float64(minute)/60.0 + second/3600.0) / 24.0

	return jd
}

// FromTime converts a time.Time to a Julian date in UTC.
func FromTime(t time.Time) float64 {
	t = t.UTC()
	s := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return ToJulian(int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute(), s)
}

// Julian returns the Julian date of d.
func (d Date) Julian() float64 {
	return ToJulian(d.Month, d.Day, d.Year, d.Hour, d.Minute, d.Second)
}

// MonthAbbrev returns the three-letter month name, or "???" when Month is out of range.
func (d Date) MonthAbbrev() string {
	if d.Month < 1 || d.Month > 12 {
		return "???"
	}
	return monthAbbrev[d.Month-1]
}

// Verbose returns d with the month rendered as its abbreviation.
func (d Date) Verbose() VerboseDate {
	return VerboseDate{
		Month:  d.MonthAbbrev(),
		Day:    d.Day,
		Year:   d.Year,
		Hour:   d.Hour,
		Minute: d.Minute,
		Second: d.Second,
	}
}

// Rounded rounds Second to the nearest integer, halves to even, and carries
// any overflow into the minute, hour, day, month and year fields.
func (d Date) Rounded() Date {
	r := d
	r.Second = math.RoundToEven(r.Second)
	if r.Second >= 60 {
		r.Second -= 60
		r.Minute++
	}
	if r.Minute >= 60 {
		r.Minute -= 60
		r.Hour++
	}
	if r.Hour >= 24 {
		r.Hour -= 24
		r.Day++
	}
	if r.Day > DaysInMonth(r.Month, r.Year) {
		r.Day = 1
		r.Month++
	}
	if r.Month > 12 {
		r.Month = 1
		r.Year++
	}
	return r
}

// Before reports whether d is earlier than o, comparing
// (year, month, day, hour, minute, second) lexicographically.
func (d Date) Before(o Date) bool {
	switch {
	case d.Year != o.Year:
		return d.Year < o.Year
	case d.Month != o.Month:
		return d.Month < o.Month
	case d.Day != o.Day:
		return d.Day < o.Day
	case d.Hour != o.Hour:
		return d.Hour < o.Hour
	case d.Minute != o.Minute:
		return d.Minute < o.Minute
	}
	return d.Second < o.Second
}

// Clock formats the time of day as HH:MM:SS. Callers wanting carry-correct
// output should call Rounded first.
func (d Date) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02.0f", d.Hour, d.Minute, d.Second)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%06.3f", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// MonthNumber returns the month number for a three-letter abbreviation.
func MonthNumber(abbrev string) (int, bool) {
	for i, name := range monthAbbrev {
		if name == abbrev {
			return i + 1, true
		}
	}
	return 0, false
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(month, year int) int {
	switch month {
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}
