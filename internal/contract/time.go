package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/streakline/schema"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %s", matches[1])
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// ParseInstant parses a --now value. It accepts RFC3339, a bare YYYY-MM-DD date
// (noon in loc, so the date is unambiguous), or a relative "N units ago" string.
func ParseInstant(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := schema.ParseCalendarDate(s); err == nil {
		return d.In(loc).Add(12 * time.Hour), nil
	}
	if t, err := ParseRelativeTime(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q. Use RFC3339, YYYY-MM-DD or 'N days ago'", s)
}

// Define the regular expression to capture "N [units]" for grid ranges.
var gridRangeRe = regexp.MustCompile(`^(\d+)\s*(day|week|month|year)s?$`)

// ParseGridRange parses a named grid range such as "6 months", "52 weeks", "1 year" or "ytd".
func ParseGridRange(s string) (schema.GridRange, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "ytd" || s == "year to date" {
		return schema.GridRange{YearToDate: true}, nil
	}

	matches := gridRangeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return schema.GridRange{}, fmt.Errorf("invalid grid range %q. Use 'N days', 'N weeks', 'N months', 'N years' or 'ytd'", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil || value <= 0 || value > MaxGridDays {
		return schema.GridRange{}, fmt.Errorf("grid range amount must be a positive number: %s", matches[1])
	}

	r := schema.GridRange{Amount: value, Unit: matches[2]}
	if approx := approximateDays(r); approx > MaxGridDays {
		return schema.GridRange{}, fmt.Errorf("grid range %q spans about %d days, more than the maximum of %d", s, approx, MaxGridDays)
	}
	return r, nil
}

// approximateDays gives an upper bound on the days a relative range covers.
func approximateDays(r schema.GridRange) int {
	switch r.Unit {
	case "year":
		return r.Amount * 366
	case "month":
		return r.Amount * 31
	case "week":
		return r.Amount * 7
	default:
		return r.Amount
	}
}
