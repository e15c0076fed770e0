package core

import (
	"time"

	"github.com/huangsam/streakline/schema"
)

// CalculateStreaks derives the current and longest streak of consecutive active days.
//
// The current streak stays alive while the most recent active date on or before
// today is today or yesterday, so a user who has not written yet today keeps their
// streak. Any larger gap resets it to zero. Dates after today still count toward
// Longest and LastActive. All day arithmetic uses calendar dates in loc.
func CalculateStreaks(activity schema.ActivityMap, now time.Time, loc *time.Location) schema.StreakResult {
	dates := activity.ActiveDates()
	if len(dates) == 0 {
		return schema.StreakResult{}
	}

	today := schema.DateOf(now, loc)
	latest := dates[len(dates)-1]

	return schema.StreakResult{
		Current:    currentStreak(dates, today),
		Longest:    longestStreak(dates),
		LastActive: &latest,
	}
}

// currentStreak walks back from the latest of the ascending dates that is not
// after today. Dates after today never extend the current streak.
func currentStreak(dates []schema.CalendarDate, today schema.CalendarDate) int {
	last := len(dates) - 1
	for last >= 0 && dates[last].After(today) {
		last--
	}
	if last < 0 || dates[last].DaysUntil(today) > 1 {
		return 0
	}

	streak := 1
	for i := last; i > 0; i-- {
		if dates[i-1].DaysUntil(dates[i]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// longestStreak scans the ascending dates once, including the trailing run.
func longestStreak(dates []schema.CalendarDate) int {
	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].DaysUntil(dates[i]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}
