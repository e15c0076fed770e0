package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) schema.CalendarDate {
	return schema.NewCalendarDate(2024, time.January, d)
}

func sampleSnapshot() schema.Snapshot {
	last := day(15)
	progress := make([]schema.DayProgress, 0, 7)
	for i := 9; i <= 15; i++ {
		progress = append(progress, schema.DayProgress{Date: day(i), Active: i >= 13, IsToday: i == 15})
	}
	return schema.Snapshot{
		StreakSnapshot: schema.StreakSnapshot{
			CurrentStreak:    3,
			LongestStreak:    5,
			TotalActiveDays:  9,
			EntriesThisWeek:  1,
			EntriesThisMonth: 6,
			LastActiveDate:   &last,
		},
		Message:        "Three days in a row!",
		WeeklyProgress: progress,
		Skipped:        []schema.SkippedEntry{{Index: 2, ID: "e3", Raw: "yesterday", Reason: "unrecognized timestamp"}},
		TotalEntries:   11,
		ComputedAt:     time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC),
		Timezone:       "UTC",
		WeekStart:      schema.MondayWeekStart,
	}
}

// sampleGrid is Monday 2024-01-15 through Sunday 2024-01-21.
func sampleGrid() schema.ContributionGrid {
	levels := []schema.ActivityLevel{
		schema.LevelLow, schema.LevelNone, schema.LevelVeryHigh, schema.LevelNone,
		schema.LevelMedium, schema.LevelNone, schema.LevelHigh,
	}
	counts := []int{1, 0, 4, 0, 2, 0, 3}
	grid := schema.ContributionGrid{Start: day(15), End: day(21), MaxCount: 4, ActiveDays: 4}
	for i, level := range levels {
		grid.Cells = append(grid.Cells, schema.ContributionCell{Date: day(15 + i), Count: counts[i], Level: level})
		grid.TotalEntries += counts[i]
	}
	return grid
}

func TestWriteSnapshotText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshotText(&buf, sampleSnapshot(), "journal.jsonl", false))
	output := buf.String()

	for _, want := range []string{
		"Current streak", "Longest streak", "2024-01-15",
		"Last 7 days: Tue ○ Wed ○ Thu ○ Fri ○ Sat ● Sun ● [Mon ●]",
		"Three days in a row!",
		"1 entries could not be read",
		`#2 (e3) "yesterday": unrecognized timestamp`,
		"for journal.jsonl (timezone UTC, week starts monday)",
	} {
		assert.Contains(t, output, want)
	}
}

func TestWriteSkipped_Truncates(t *testing.T) {
	skipped := make([]schema.SkippedEntry, 7)
	for i := range skipped {
		skipped[i] = schema.SkippedEntry{Index: i, Raw: "bad", Reason: "empty"}
	}
	var buf bytes.Buffer
	require.NoError(t, writeSkipped(&buf, skipped))
	assert.Contains(t, buf.String(), "... and 2 more")
	assert.Equal(t, 1+maxSkippedShown+1, strings.Count(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, writeSkipped(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteSnapshotCSV(t *testing.T) {
	snap := sampleSnapshot()
	snap.LastActiveDate = nil

	var buf bytes.Buffer
	require.NoError(t, writeSnapshotCSV(&buf, snap))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "metric,value", lines[0])
	assert.Contains(t, lines, "current_streak,3")
	assert.Contains(t, lines, "last_active_date,never")
	assert.Contains(t, lines, "skipped_entries,1")
}

func TestPrintSnapshot_Formats(t *testing.T) {
	captureStatus(t)
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "snap.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
		require.NoError(t, PrintSnapshot(sampleSnapshot(), "journal.jsonl", cfg))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var got schema.Snapshot
		require.NoError(t, json.Unmarshal(content, &got))
		assert.Equal(t, 3, got.CurrentStreak)
		assert.Equal(t, day(15), *got.LastActiveDate)
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "snap.parquet")
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path}
		require.NoError(t, PrintSnapshot(sampleSnapshot(), "journal.jsonl", cfg))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("PAR1")))
	})

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "snap.txt")
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: path}
		require.NoError(t, PrintSnapshot(sampleSnapshot(), "journal.jsonl", cfg))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Three days in a row!")
	})
}

func TestFirstWeekday(t *testing.T) {
	wed := day(17)
	assert.Equal(t, time.Monday, firstWeekday(schema.MondayWeekStart, wed))
	assert.Equal(t, time.Sunday, firstWeekday(schema.SundayWeekStart, wed))
	assert.Equal(t, time.Wednesday, firstWeekday(schema.RollingWeekStart, wed))
}

func TestWriteGridText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGridText(&buf, sampleGrid(), time.Monday, 80, false))
	lines := strings.Split(buf.String(), "\n")

	assert.Equal(t, "    Jan", lines[0])
	assert.Equal(t, "Mon ░", lines[1])
	assert.Equal(t, "Tue ·", lines[2])
	assert.Equal(t, "Wed █", lines[3])
	assert.Equal(t, "Sun ▓", lines[7])
	assert.Contains(t, buf.String(), "Less · ░ ▒ ▓ █ More")
	assert.Contains(t, buf.String(), "10 entries on 4 of 7 days from 2024-01-15 to 2024-01-21 (busiest day: 4)")
	assert.Contains(t, buf.String(), "very_high")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestWriteGridText_SundayFirstSplitsWeeks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGridText(&buf, sampleGrid(), time.Sunday, 80, false))
	lines := strings.Split(buf.String(), "\n")

	// Sunday 14th is outside the range so the first column starts blank
	assert.Equal(t, "Sun   ▓", lines[1])
	assert.Equal(t, "Mon ░", lines[2])
}

func TestWriteGridText_NarrowTerminal(t *testing.T) {
	grid := schema.ContributionGrid{Start: day(1), End: day(31)}
	for i := 1; i <= 31; i++ {
		grid.Cells = append(grid.Cells, schema.ContributionCell{Date: day(i), Level: schema.LevelNone})
	}

	var buf bytes.Buffer
	// room for two week columns
	require.NoError(t, writeGridText(&buf, grid, time.Monday, 8, false))
	assert.Contains(t, buf.String(), "(3 older weeks hidden")
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Mon · ·", lines[1])
	assert.Equal(t, "Thu ·", lines[4])
}

func TestWriteGridText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGridText(&buf, schema.ContributionGrid{}, time.Monday, 80, false))
	assert.Equal(t, "No days in range.\n", buf.String())
}

func TestMonthHeader(t *testing.T) {
	grid := schema.ContributionGrid{Start: schema.NewCalendarDate(2024, time.January, 22), End: schema.NewCalendarDate(2024, time.February, 18)}
	for d := grid.Start; !d.After(grid.End); d = d.AddDays(1) {
		grid.Cells = append(grid.Cells, schema.ContributionCell{Date: d, Level: schema.LevelNone})
	}
	weeks := schema.GroupByWeek(grid, time.Monday)
	require.Len(t, weeks, 4)

	// Feb is placed on the first column that begins in February
	assert.Equal(t, "    Jan Feb", monthHeader(weeks))
}

func TestWriteGridCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGridCSV(&buf, sampleGrid()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, "date,count,level", lines[0])
	assert.Equal(t, "2024-01-17,4,very_high", lines[3])
}

func TestPrintGrid_JSON(t *testing.T) {
	captureStatus(t)
	path := filepath.Join(t.TempDir(), "grid.json")
	require.NoError(t, PrintGrid(sampleGrid(), &contract.Config{Output: schema.JSONOut, OutputFile: path}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var got schema.ContributionGrid
	require.NoError(t, json.Unmarshal(content, &got))
	assert.Equal(t, sampleGrid(), got)
}

func TestPrintMessage(t *testing.T) {
	captureStatus(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		output schema.OutputMode
		streak int
		want   string
	}{
		{"text", schema.TextOut, 1, "🔥 1 day  Nice start\n"},
		{"text plural", schema.TextOut, 0, "🔥 0 days  Nice start\n"},
		{"csv", schema.CSVOut, 4, "current_streak,message\n4,Nice start\n"},
		{"json", schema.JSONOut, 4, "{\n  \"current_streak\": 4,\n  \"message\": \"Nice start\"\n}\n"},
		{"parquet falls back to json", schema.ParquetOut, 4, "{\n  \"current_streak\": 4,\n  \"message\": \"Nice start\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_"))
			cfg := &contract.Config{Output: tt.output, OutputFile: path}
			require.NoError(t, PrintMessage(tt.streak, "Nice start", cfg))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(content))
		})
	}
}

func TestGetTerminalWidth_Override(t *testing.T) {
	assert.Equal(t, 120, GetTerminalWidth(&contract.Config{Width: 120}))
	assert.Positive(t, GetTerminalWidth(&contract.Config{}))
}
