// Package dates provides calendar dates with explicit precision.
//
// Career data arrives with uneven precision: full dates from appointment
// announcements, month+year from profile pages, bare years from historical
// records. A Date remembers how precise its source was so that later
// comparisons can treat a coarse date as containing the finer ones.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Precision describes how much of a date was actually known at the source.
type Precision int

const (
	PrecisionNone Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

// String returns the precision name for logging.
func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	default:
		return "none"
	}
}

// ParsePrecision maps a stored precision name back to a Precision.
// Unknown names mean the date was never known.
func ParsePrecision(s string) Precision {
	switch s {
	case "day":
		return PrecisionDay
	case "month":
		return PrecisionMonth
	case "year":
		return PrecisionYear
	default:
		return PrecisionNone
	}
}

// Date is a calendar date normalized to its first covered day.
// A month-precision date is the first of that month, a year-precision
// date is January 1st. The zero Date means "unknown" or "open".
type Date struct {
	Time      time.Time
	Precision Precision
}

// IsZero reports whether the date is unknown/open.
func (d Date) IsZero() bool {
	return d.Precision == PrecisionNone || d.Time.IsZero()
}

// Year returns the calendar year, or 0 for an unknown date.
func (d Date) Year() int {
	if d.IsZero() {
		return 0
	}
	return d.Time.Year()
}

// Before reports whether d is strictly before other, comparing the
// normalized first-day instants.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether both dates normalize to the same instant.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Contains reports whether other falls inside the span covered by d at
// its precision (the whole year for year precision, the whole month for
// month precision). A day-precision date only contains an equal date.
func (d Date) Contains(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	switch d.Precision {
	case PrecisionYear:
		return d.Time.Year() == other.Time.Year()
	case PrecisionMonth:
		return d.Time.Year() == other.Time.Year() && d.Time.Month() == other.Time.Month()
	default:
		return d.Time.Equal(other.Time)
	}
}

// String formats the date at its native precision.
func (d Date) String() string {
	switch d.Precision {
	case PrecisionYear:
		return d.Time.Format("2006")
	case PrecisionMonth:
		return d.Time.Format("2006-01")
	case PrecisionDay:
		return d.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// New builds a day-precision date.
func New(year int, month time.Month, day int) Date {
	return Date{
		Time:      time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Precision: PrecisionDay,
	}
}

// NewMonth builds a month-precision date (first day of the month).
func NewMonth(year int, month time.Month) Date {
	return Date{
		Time:      time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		Precision: PrecisionMonth,
	}
}

// NewYear builds a year-precision date (January 1st).
func NewYear(year int) Date {
	return Date{
		Time:      time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Precision: PrecisionYear,
	}
}

// Parse accepts the date shapes seen in career feeds:
//
//	"2015-01-01"   full ISO date
//	"2015-01"      ISO month
//	"01.2015"      German month.year notation
//	"Jul 1, 2024"  appointment-page English dates
//	"2015"         bare year
//
// An empty string parses to the zero Date with no error; that is how
// open-ended tenures arrive.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "open") {
		return Date{}, nil
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t.UTC(), Precision: PrecisionDay}, nil
	}
	if t, err := time.Parse("Jan 2, 2006", s); err == nil {
		return Date{Time: t.UTC(), Precision: PrecisionDay}, nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return NewMonth(t.Year(), t.Month()), nil
	}
	if t, err := time.Parse("01.2006", s); err == nil {
		return NewMonth(t.Year(), t.Month()), nil
	}
	if year, err := strconv.Atoi(s); err == nil && year >= 1800 && year <= 2200 {
		return NewYear(year), nil
	}

	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// FromTime wraps a stored timestamp back into a Date. The precision is
// carried separately in storage because the timestamp alone cannot
// distinguish "January 1st" from "sometime that year".
func FromTime(t *time.Time, precision Precision) Date {
	if t == nil || t.IsZero() || precision == PrecisionNone {
		return Date{}
	}
	return Date{Time: t.UTC(), Precision: precision}
}

// Finer returns the more precisely known of two dates that describe the
// same moment. When a year-only record and a month+year record disagree
// only in precision, the finer one is the better assertion.
func Finer(a, b Date) Date {
	if b.Precision > a.Precision {
		return b
	}
	return a
}
