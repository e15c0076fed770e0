package schema

import "time"

// CacheStatus represents the status of the activity cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the snapshot history store.
type HistoryStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalSnapshots   int              `json:"total_snapshots"`
	LastSnapshotID   int64            `json:"last_snapshot_id"`
	LastSnapshotTime time.Time        `json:"last_snapshot_time"`
	OldestSnapshot   time.Time        `json:"oldest_snapshot_time"`
	LongestRecorded  int              `json:"longest_recorded_streak"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}
