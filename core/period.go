package core

import (
	"fmt"
	"time"

	"github.com/huangsam/streakline/schema"
)

// AggregatePeriods counts distinct active dates in the current week, the current
// calendar month and overall. The week window follows weekStart.
func AggregatePeriods(activity schema.ActivityMap, now time.Time, loc *time.Location, weekStart schema.WeekStart) (schema.PeriodCounts, error) {
	today := schema.DateOf(now, loc)
	weekFrom, err := WeekWindowStart(today, weekStart)
	if err != nil {
		return schema.PeriodCounts{}, err
	}
	monthFrom := schema.NewCalendarDate(today.Year, today.Month, 1)

	var counts schema.PeriodCounts
	for _, date := range activity.ActiveDates() {
		counts.TotalActiveDays++
		if date.After(today) {
			continue
		}
		if !date.Before(weekFrom) {
			counts.EntriesThisWeek++
		}
		if !date.Before(monthFrom) {
			counts.EntriesThisMonth++
		}
	}
	return counts, nil
}

// WeekWindowStart returns the first day of the week window that contains today.
// The window always ends on today.
func WeekWindowStart(today schema.CalendarDate, weekStart schema.WeekStart) (schema.CalendarDate, error) {
	switch weekStart {
	case schema.MondayWeekStart:
		// time.Weekday counts from Sunday, shift so Monday is 0
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDays(-offset), nil
	case schema.SundayWeekStart:
		return today.AddDays(-int(today.Weekday())), nil
	case schema.RollingWeekStart:
		return today.AddDays(-6), nil
	default:
		return schema.CalendarDate{}, fmt.Errorf("%w: unknown week start %q", ErrInvalidOptions, weekStart)
	}
}
