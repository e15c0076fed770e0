package schema

import "time"

// SnapshotRecord represents a row from the streakline_snapshots table.
type SnapshotRecord struct {
	SnapshotID       int64
	RunKey           string
	ComputedAt       time.Time
	Source           string
	Timezone         string
	WeekStart        string
	CurrentStreak    int32
	LongestStreak    int32
	TotalActiveDays  int32
	EntriesThisWeek  int32
	EntriesThisMonth int32
	TotalEntries     int32
	SkippedEntries   int32
	LastActiveDate   *string
	Message          string
}

// GridCellRecord represents a row from the streakline_grid_cells table.
type GridCellRecord struct {
	SnapshotID int64
	CellDate   string
	EntryCount int32
	Level      string
}

// NewSnapshotRecord flattens a snapshot into a history row.
func NewSnapshotRecord(snap Snapshot, runKey, source string) SnapshotRecord {
	rec := SnapshotRecord{
		RunKey:           runKey,
		ComputedAt:       snap.ComputedAt,
		Source:           source,
		Timezone:         snap.Timezone,
		WeekStart:        string(snap.WeekStart),
		CurrentStreak:    int32(snap.CurrentStreak),
		LongestStreak:    int32(snap.LongestStreak),
		TotalActiveDays:  int32(snap.TotalActiveDays),
		EntriesThisWeek:  int32(snap.EntriesThisWeek),
		EntriesThisMonth: int32(snap.EntriesThisMonth),
		TotalEntries:     int32(snap.TotalEntries),
		SkippedEntries:   int32(len(snap.Skipped)),
		Message:          snap.Message,
	}
	if snap.LastActiveDate != nil {
		last := snap.LastActiveDate.String()
		rec.LastActiveDate = &last
	}
	return rec
}
