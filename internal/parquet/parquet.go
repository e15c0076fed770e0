// Package parquet provides data structures and functions for exporting streak
// snapshots and contribution cells to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/streakline/schema"
	"github.com/parquet-go/parquet-go"
)

// SnapshotRun represents one recorded streak snapshot.
// This struct maps to the streakline_snapshots database table.
type SnapshotRun struct {
	// SnapshotID is the unique identifier for this snapshot
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// RunKey is the UUID assigned when the snapshot was computed
	RunKey string `parquet:"run_key,snappy"`

	// ComputedAt is the reference instant of the computation
	ComputedAt time.Time `parquet:"computed_at,snappy"`

	Source    string `parquet:"source,snappy"`
	Timezone  string `parquet:"timezone,snappy"`
	WeekStart string `parquet:"week_start,snappy"`

	CurrentStreak    int32 `parquet:"current_streak,snappy"`
	LongestStreak    int32 `parquet:"longest_streak,snappy"`
	TotalActiveDays  int32 `parquet:"total_active_days,snappy"`
	EntriesThisWeek  int32 `parquet:"entries_this_week,snappy"`
	EntriesThisMonth int32 `parquet:"entries_this_month,snappy"`
	TotalEntries     int32 `parquet:"total_entries,snappy"`
	SkippedEntries   int32 `parquet:"skipped_entries,snappy"`

	// LastActiveDate is YYYY-MM-DD, or null when there was no activity
	LastActiveDate *string `parquet:"last_active_date,optional,snappy"`

	Message string `parquet:"message,snappy"`
}

// GridCell represents one day of a contribution grid.
// This struct maps to the streakline_grid_cells database table.
type GridCell struct {
	// SnapshotID references the parent snapshot, zero for grids that were never recorded
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// CellDate is the calendar day in YYYY-MM-DD form
	CellDate string `parquet:"cell_date,snappy"`

	EntryCount int32  `parquet:"entry_count,snappy"`
	Level      string `parquet:"level,snappy"`
}

// WriteSnapshotRuns writes snapshot rows to w in Parquet format.
func WriteSnapshotRuns(w io.Writer, data []SnapshotRun) error {
	return writeRows(w, data)
}

// WriteGridCells writes grid rows to w in Parquet format.
func WriteGridCells(w io.Writer, data []GridCell) error {
	return writeRows(w, data)
}

// WriteSnapshotRunsParquet writes a slice of SnapshotRun structs to a Parquet file.
func WriteSnapshotRunsParquet(data []SnapshotRun, outputPath string) error {
	return writeFile(outputPath, data)
}

// WriteGridCellsParquet writes a slice of GridCell structs to a Parquet file.
func WriteGridCellsParquet(data []GridCell, outputPath string) error {
	return writeFile(outputPath, data)
}

func writeFile[T any](outputPath string, data []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return writeRows(file, data)
}

// writeRows infers the schema from the struct tags of T.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertSnapshotRecords converts schema.SnapshotRecord to SnapshotRun for Parquet export.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []SnapshotRun {
	result := make([]SnapshotRun, len(records))
	for i, record := range records {
		result[i] = SnapshotRun{
			SnapshotID:       record.SnapshotID,
			RunKey:           record.RunKey,
			ComputedAt:       record.ComputedAt,
			Source:           record.Source,
			Timezone:         record.Timezone,
			WeekStart:        record.WeekStart,
			CurrentStreak:    record.CurrentStreak,
			LongestStreak:    record.LongestStreak,
			TotalActiveDays:  record.TotalActiveDays,
			EntriesThisWeek:  record.EntriesThisWeek,
			EntriesThisMonth: record.EntriesThisMonth,
			TotalEntries:     record.TotalEntries,
			SkippedEntries:   record.SkippedEntries,
			LastActiveDate:   record.LastActiveDate,
			Message:          record.Message,
		}
	}
	return result
}

// ConvertGridCellRecords converts stored grid rows for Parquet export.
func ConvertGridCellRecords(records []schema.GridCellRecord) []GridCell {
	result := make([]GridCell, len(records))
	for i, record := range records {
		result[i] = GridCell{
			SnapshotID: record.SnapshotID,
			CellDate:   record.CellDate,
			EntryCount: record.EntryCount,
			Level:      record.Level,
		}
	}
	return result
}

// ConvertGrid converts a freshly computed grid, which has no snapshot yet.
func ConvertGrid(grid schema.ContributionGrid) []GridCell {
	result := make([]GridCell, len(grid.Cells))
	for i, cell := range grid.Cells {
		result[i] = GridCell{
			CellDate:   cell.Date.String(),
			EntryCount: int32(cell.Count),
			Level:      string(cell.Level),
		}
	}
	return result
}
