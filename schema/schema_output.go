package schema

import "time"

// GridWeek is one column of a heat map: seven slots starting on the week's first day.
// Slots outside the grid range are nil.
type GridWeek struct {
	Start CalendarDate         `json:"start"`
	Days  [7]*ContributionCell `json:"days"`
}

// GroupByWeek lays the grid out in week columns whose first day is firstDay.
// The grid itself stays a flat chronological list; this is only for rendering.
func GroupByWeek(grid ContributionGrid, firstDay time.Weekday) []GridWeek {
	if len(grid.Cells) == 0 {
		return nil
	}

	offset := (int(grid.Start.Weekday()) - int(firstDay) + 7) % 7
	weekStart := grid.Start.AddDays(-offset)

	var weeks []GridWeek
	current := GridWeek{Start: weekStart}
	for i := range grid.Cells {
		cell := &grid.Cells[i]
		slot := weekStart.DaysUntil(cell.Date) - 7*len(weeks)
		if slot >= 7 {
			weeks = append(weeks, current)
			current = GridWeek{Start: current.Start.AddDays(7)}
			slot -= 7
		}
		current.Days[slot] = cell
	}
	return append(weeks, current)
}

// LevelCounts tallies how many cells fall into each activity level.
func LevelCounts(grid ContributionGrid) map[ActivityLevel]int {
	counts := make(map[ActivityLevel]int, len(AllActivityLevels))
	for _, level := range AllActivityLevels {
		counts[level] = 0
	}
	for _, cell := range grid.Cells {
		counts[cell.Level]++
	}
	return counts
}
