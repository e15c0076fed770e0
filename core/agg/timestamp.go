package agg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errEmptyTimestamp = errors.New("empty timestamp")

// zonedLayouts carry their own offset, so the reference location only matters
// when the instant is later converted to a calendar date.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST", // time.Time.String, emitted by some drivers
	"2006-01-02 15:04:05 -0700",
	time.RFC1123Z,
}

// localLayouts have no offset and are read as wall-clock time in the reference location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// unixMillisThreshold separates Unix seconds from Unix milliseconds.
// 1e12 seconds is the year 33658; 1e12 milliseconds is September 2001.
const unixMillisThreshold = 1_000_000_000_000

// ParseTimestamp parses the timestamp forms journal sources produce. Fractional
// seconds are accepted on every layout. Purely numeric input is a Unix time in
// seconds, or milliseconds once it reaches unixMillisThreshold.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}

	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid unix timestamp %q: %w", s, err)
		}
		if n >= unixMillisThreshold {
			return time.UnixMilli(n), nil
		}
		return time.Unix(n, 0), nil
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
