// Package schema has the data types shared by the streak engine and its surfaces.
package schema

import (
	"slices"
	"time"
)

// Entry is a single journal entry as seen by the engine. Only its creation
// instant matters; CreatedAt is kept as raw text so parse failures can be recorded.
type Entry struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ActivityDay is the number of entries created on one calendar date.
type ActivityDay struct {
	Date  CalendarDate `json:"date"`
	Count int          `json:"count"`
}

// ActivityMap holds at most one ActivityDay per calendar date.
type ActivityMap map[CalendarDate]ActivityDay

// Count returns the number of entries on date, zero when the date is absent.
func (m ActivityMap) Count(date CalendarDate) int {
	return m[date].Count
}

// IsActive reports whether at least one entry exists on date.
func (m ActivityMap) IsActive(date CalendarDate) bool {
	return m[date].Count > 0
}

// ActiveDates returns every date with a positive count in ascending order.
func (m ActivityMap) ActiveDates() []CalendarDate {
	dates := make([]CalendarDate, 0, len(m))
	for date, day := range m {
		if day.Count > 0 {
			dates = append(dates, date)
		}
	}
	slices.SortFunc(dates, func(a, b CalendarDate) int { return a.Compare(b) })
	return dates
}

// TotalEntries sums the counts of every day.
func (m ActivityMap) TotalEntries() int {
	total := 0
	for _, day := range m {
		total += day.Count
	}
	return total
}

// SkippedEntry records an entry whose timestamp could not be used.
type SkippedEntry struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// NormalizeResult is the output of the activity normalizer.
type NormalizeResult struct {
	Activity     ActivityMap    `json:"activity"`
	Skipped      []SkippedEntry `json:"skipped,omitempty"`
	TotalEntries int            `json:"total_entries"` // entries that were counted
}

// StreakResult is the output of the streak calculator.
type StreakResult struct {
	Current    int
	Longest    int
	LastActive *CalendarDate
}

// PeriodCounts is the output of the period aggregator.
type PeriodCounts struct {
	EntriesThisWeek  int
	EntriesThisMonth int
	TotalActiveDays  int
}

// StreakSnapshot is the combined statistics for a user at one instant.
type StreakSnapshot struct {
	CurrentStreak    int           `json:"current_streak"`
	LongestStreak    int           `json:"longest_streak"`
	TotalActiveDays  int           `json:"total_active_days"`
	EntriesThisWeek  int           `json:"entries_this_week"`
	EntriesThisMonth int           `json:"entries_this_month"`
	LastActiveDate   *CalendarDate `json:"last_active_date"`
}

// ContributionCell is one day of the contribution grid.
type ContributionCell struct {
	Date  CalendarDate  `json:"date"`
	Count int           `json:"count"`
	Level ActivityLevel `json:"level"`
}

// ContributionGrid covers every day of [Start, End] in chronological order.
type ContributionGrid struct {
	Start        CalendarDate       `json:"start"`
	End          CalendarDate       `json:"end"`
	Cells        []ContributionCell `json:"cells"`
	TotalEntries int                `json:"total_entries"`
	ActiveDays   int                `json:"active_days"`
	MaxCount     int                `json:"max_count"`
}

// DayProgress is one day of the weekly progress strip.
type DayProgress struct {
	Date    CalendarDate `json:"date"`
	Active  bool         `json:"active"`
	IsToday bool         `json:"is_today"`
}

// MotivationTier maps a minimum streak length to an encouragement message.
type MotivationTier struct {
	MinStreak int    `json:"min_streak" yaml:"min_streak" mapstructure:"min_streak"`
	Message   string `json:"message" yaml:"message" mapstructure:"message"`
}

// Snapshot is everything the presentation layer shows on a dashboard.
type Snapshot struct {
	StreakSnapshot
	Message        string         `json:"message"`
	WeeklyProgress []DayProgress  `json:"weekly_progress"`
	Skipped        []SkippedEntry `json:"skipped,omitempty"`
	TotalEntries   int            `json:"total_entries"`
	ComputedAt     time.Time      `json:"computed_at"`
	Timezone       string         `json:"timezone"`
	WeekStart      WeekStart      `json:"week_start"`
}

// GridRange describes which days a contribution grid covers, relative to today
// unless Start and End are both set.
type GridRange struct {
	Amount     int          `json:"amount,omitempty"`
	Unit       string       `json:"unit,omitempty"` // day, week, month or year
	YearToDate bool         `json:"year_to_date,omitempty"`
	Start      CalendarDate `json:"start,omitzero"`
	End        CalendarDate `json:"end,omitzero"`
}

// IsExplicit reports whether the range is pinned to fixed dates.
func (r GridRange) IsExplicit() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}
