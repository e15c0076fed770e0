package core

import "github.com/huangsam/streakline/schema"

// weeklyProgressDays is the length of the progress strip.
const weeklyProgressDays = 7

// WeeklyProgress returns the last seven days ending today, oldest first.
func WeeklyProgress(activity schema.ActivityMap, today schema.CalendarDate) []schema.DayProgress {
	days := make([]schema.DayProgress, 0, weeklyProgressDays)
	for i := weeklyProgressDays - 1; i >= 0; i-- {
		date := today.AddDays(-i)
		days = append(days, schema.DayProgress{
			Date:    date,
			Active:  activity.IsActive(date),
			IsToday: i == 0,
		})
	}
	return days
}
