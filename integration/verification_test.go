//go:build integration

// Package integration contains end-to-end tests for the streakline binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeJournal writes one JSON line per timestamp and returns the file path.
func writeJournal(t *testing.T, timestamps []time.Time) string {
	t.Helper()
	var sb strings.Builder
	for i, ts := range timestamps {
		fmt.Fprintf(&sb, "{\"id\":\"e%d\",\"created_at\":%q}\n", i, ts.Format(time.RFC3339))
	}
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

// TestSnapshotVerification builds a journal with a known shape and checks the
// snapshot against counts derived directly from the fixture.
func TestSnapshotVerification(t *testing.T) {
	now := time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC) // a Wednesday
	day := func(offset, hour int) time.Time {
		return time.Date(2024, 3, 20+offset, hour, 0, 0, 0, time.UTC)
	}

	// A 4 day run ending today (two entries on one day), a gap, then a 6 day run.
	timestamps := []time.Time{
		day(0, 8), day(0, 21), day(-1, 9), day(-2, 9), day(-3, 9),
		day(-6, 7), day(-7, 7), day(-8, 7), day(-9, 7), day(-10, 7), day(-11, 7),
	}
	path := writeJournal(t, timestamps)

	out := runStreakline(t, map[string]string{"STREAKLINE_CACHE_BACKEND": "none"},
		"snapshot", path, "--now", now.Format(time.RFC3339), "--timezone", "UTC", "--output", "json")

	var snap struct {
		CurrentStreak    int `json:"current_streak"`
		LongestStreak    int `json:"longest_streak"`
		TotalActiveDays  int `json:"total_active_days"`
		EntriesThisWeek  int `json:"entries_this_week"`
		EntriesThisMonth int `json:"entries_this_month"`
		TotalEntries     int `json:"total_entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))

	// Monday March 18 starts the week; periods count distinct days, not entries.
	weekStart := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	weekDays := map[string]bool{}
	monthDays := map[string]bool{}
	for _, ts := range timestamps {
		key := ts.Format(time.DateOnly)
		monthDays[key] = true
		if !ts.Before(weekStart) {
			weekDays[key] = true
		}
	}

	assert.Equal(t, 4, snap.CurrentStreak)
	assert.Equal(t, 6, snap.LongestStreak)
	assert.Equal(t, 10, snap.TotalActiveDays)
	assert.Equal(t, len(weekDays), snap.EntriesThisWeek)
	assert.Equal(t, len(monthDays), snap.EntriesThisMonth)
	assert.Equal(t, len(timestamps), snap.TotalEntries)
}

// TestGridVerification checks that the grid covers the requested days and sums to the fixture.
func TestGridVerification(t *testing.T) {
	timestamps := []time.Time{
		time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 3, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), // outside the window
	}
	path := writeJournal(t, timestamps)

	out := runStreakline(t, map[string]string{"STREAKLINE_CACHE_BACKEND": "none"},
		"grid", path, "--start", "2024-02-01", "--end", "2024-02-07", "--timezone", "UTC", "--output", "csv")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "date,count,level", lines[0])
	assert.Equal(t, "2024-02-01,1,low", lines[1])
	assert.Equal(t, "2024-02-02,0,none", lines[2])
	assert.Equal(t, "2024-02-03,2,medium", lines[3])
	assert.Equal(t, "2024-02-07,0,none", lines[7])
}

// TestSQLiteHistoryRoundTrip records runs into a SQLite history and exports them.
func TestSQLiteHistoryRoundTrip(t *testing.T) {
	path := writeJournal(t, []time.Time{time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)})
	dir := t.TempDir()
	env := map[string]string{
		"STREAKLINE_CACHE_BACKEND":      "sqlite",
		"STREAKLINE_CACHE_DB_CONNECT":   filepath.Join(dir, "cache.db"),
		"STREAKLINE_HISTORY_BACKEND":    "sqlite",
		"STREAKLINE_HISTORY_DB_CONNECT": filepath.Join(dir, "history.db"),
	}

	for range 2 {
		runStreakline(t, env, "snapshot", path, "--now", "2024-01-15", "--output", "json")
	}

	status := runStreakline(t, env, "history", "status")
	assert.Contains(t, status, "2")

	prefix := filepath.Join(dir, "export")
	runStreakline(t, env, "history", "export", "--output-file", prefix)
	for _, suffix := range []string{".snapshots.parquet", ".grid_cells.parquet"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
