package schema

import (
	"fmt"
	"time"
)

// DateLayout is the text form of a CalendarDate.
const DateLayout = "2006-01-02"

// CalendarDate is a day on the civil calendar with no time component.
// It is derived from an instant in exactly one location and compares by value,
// so it can be used directly as a map key.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date that the instant t falls on in loc.
func DateOf(t time.Time, loc *time.Location) CalendarDate {
	y, m, d := t.In(loc).Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// NewCalendarDate builds a normalized date, so NewCalendarDate(2024, 2, 30) is March 1.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return fromUTC(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseCalendarDate parses the YYYY-MM-DD form.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid calendar date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return fromUTC(t), nil
}

func fromUTC(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// utc anchors the date at UTC midnight. Day arithmetic happens on this value
// because UTC has no DST, so every day is exactly 24 hours long.
func (d CalendarDate) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns local midnight of the date in loc.
func (d CalendarDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n calendar days later (earlier when n is negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return fromUTC(d.utc().AddDate(0, 0, n))
}

// AddDate mirrors time.Time.AddDate, including its normalization of overflowing days.
func (d CalendarDate) AddDate(years, months, days int) CalendarDate {
	return fromUTC(d.utc().AddDate(years, months, days))
}

// DaysUntil returns the number of calendar days from d to other.
// It is negative when other is before d.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int((other.utc().Unix() - d.utc().Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Weekday returns the day of the week of the date.
func (d CalendarDate) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d CalendarDate) After(other CalendarDate) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// String returns the YYYY-MM-DD form.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler, which also makes the date a valid JSON map key.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := ParseCalendarDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
