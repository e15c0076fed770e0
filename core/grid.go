package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/streakline/schema"
)

// ErrInvalidRange is returned when a grid is requested with start after end.
var ErrInvalidRange = errors.New("invalid grid range")

// ActivityLevelFor buckets an entry count into a heat map level.
func ActivityLevelFor(count int) schema.ActivityLevel {
	switch {
	case count <= 0:
		return schema.LevelNone
	case count == 1:
		return schema.LevelLow
	case count <= 3:
		return schema.LevelMedium
	case count <= 6:
		return schema.LevelHigh
	default:
		return schema.LevelVeryHigh
	}
}

// BuildContributionGrid returns one cell per day of [start, end] inclusive, oldest first.
// Days without entries are present with a zero count.
func BuildContributionGrid(activity schema.ActivityMap, start, end schema.CalendarDate) (schema.ContributionGrid, error) {
	if start.After(end) {
		return schema.ContributionGrid{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}

	days := start.DaysUntil(end) + 1
	grid := schema.ContributionGrid{
		Start: start,
		End:   end,
		Cells: make([]schema.ContributionCell, 0, days),
	}
	for date := start; !date.After(end); date = date.AddDays(1) {
		count := activity.Count(date)
		grid.Cells = append(grid.Cells, schema.ContributionCell{
			Date:  date,
			Count: count,
			Level: ActivityLevelFor(count),
		})
		if count > 0 {
			grid.TotalEntries += count
			grid.ActiveDays++
			grid.MaxCount = max(grid.MaxCount, count)
		}
	}
	return grid, nil
}

// ResolveGridRange turns a configured range into concrete dates ending today.
// Explicit dates are returned as given, even when start is after end; the grid
// builder rejects that case.
func ResolveGridRange(r schema.GridRange, today schema.CalendarDate) (schema.CalendarDate, schema.CalendarDate, error) {
	if r.IsExplicit() {
		return r.Start, r.End, nil
	}
	if r.YearToDate {
		return schema.NewCalendarDate(today.Year, 1, 1), today, nil
	}
	if r.Amount <= 0 {
		return schema.CalendarDate{}, schema.CalendarDate{}, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidRange, r.Amount)
	}

	var from schema.CalendarDate
	switch r.Unit {
	case "day":
		from = today.AddDays(-r.Amount)
	case "week":
		from = today.AddDays(-7 * r.Amount)
	case "month":
		from = today.AddDate(0, -r.Amount, 0)
	case "year":
		from = today.AddDate(-r.Amount, 0, 0)
	default:
		return schema.CalendarDate{}, schema.CalendarDate{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidRange, r.Unit)
	}
	return from.AddDays(1), today, nil
}
