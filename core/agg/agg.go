// Package agg turns raw journal entries into per-day activity.
package agg

import (
	"errors"
	"time"

	"github.com/huangsam/streakline/schema"
)

// ErrNilLocation is returned when no reference timezone is supplied.
var ErrNilLocation = errors.New("a reference timezone is required to derive calendar dates")

// Skip reasons recorded on SkippedEntry.
const (
	reasonEmpty        = "empty timestamp"
	reasonUnrecognized = "unrecognized timestamp format"
)

// Normalize buckets entries into calendar dates of loc and counts entries per date.
// Entries with empty or unparseable timestamps are recorded in Skipped and never
// fail the call. The same location is applied to every entry.
func Normalize(entries []schema.Entry, loc *time.Location) (schema.NormalizeResult, error) {
	if loc == nil {
		return schema.NormalizeResult{}, ErrNilLocation
	}

	result := schema.NormalizeResult{Activity: make(schema.ActivityMap)}
	for i, entry := range entries {
		ts, err := ParseTimestamp(entry.CreatedAt, loc)
		if err != nil {
			result.Skipped = append(result.Skipped, schema.SkippedEntry{
				Index:  i,
				ID:     entry.ID,
				Raw:    entry.CreatedAt,
				Reason: skipReason(err),
			})
			continue
		}
		addInstant(result.Activity, ts, loc)
		result.TotalEntries++
	}
	return result, nil
}

// NormalizeTimes is Normalize for instants that are already typed. Zero times are skipped.
func NormalizeTimes(times []time.Time, loc *time.Location) (schema.NormalizeResult, error) {
	if loc == nil {
		return schema.NormalizeResult{}, ErrNilLocation
	}

	result := schema.NormalizeResult{Activity: make(schema.ActivityMap)}
	for i, ts := range times {
		if ts.IsZero() {
			result.Skipped = append(result.Skipped, schema.SkippedEntry{Index: i, Reason: reasonEmpty})
			continue
		}
		addInstant(result.Activity, ts, loc)
		result.TotalEntries++
	}
	return result, nil
}

// addInstant increments the count of the date ts falls on.
func addInstant(activity schema.ActivityMap, ts time.Time, loc *time.Location) {
	date := schema.DateOf(ts, loc)
	day := activity[date]
	day.Date = date
	day.Count++
	activity[date] = day
}

func skipReason(err error) string {
	if errors.Is(err, errEmptyTimestamp) {
		return reasonEmpty
	}
	return reasonUnrecognized
}
