package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/parquet"
	"github.com/huangsam/streakline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// maxSkippedShown caps how many skipped entries the text view lists.
const maxSkippedShown = 5

// PrintSnapshot outputs a snapshot, dispatching based on the output format configured.
func PrintSnapshot(snap schema.Snapshot, source string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, snap)
		}, "Wrote JSON snapshot")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotCSV(w, snap)
		}, "Wrote CSV snapshot")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotParquet(w, snap, source)
		}, "Wrote Parquet snapshot")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotText(w, snap, source, cfg.UseColors)
		}, "Wrote snapshot")
	}
}

// snapshotRows lists the snapshot metrics as label/value pairs.
func snapshotRows(snap schema.Snapshot) [][]string {
	lastActive := "never"
	if snap.LastActiveDate != nil {
		lastActive = snap.LastActiveDate.String()
	}
	return [][]string{
		{"current_streak", strconv.Itoa(snap.CurrentStreak)},
		{"longest_streak", strconv.Itoa(snap.LongestStreak)},
		{"total_active_days", strconv.Itoa(snap.TotalActiveDays)},
		{"entries_this_week", strconv.Itoa(snap.EntriesThisWeek)},
		{"entries_this_month", strconv.Itoa(snap.EntriesThisMonth)},
		{"last_active_date", lastActive},
		{"total_entries", strconv.Itoa(snap.TotalEntries)},
		{"skipped_entries", strconv.Itoa(len(snap.Skipped))},
		{"message", snap.Message},
	}
}

var snapshotLabels = map[string]string{
	"current_streak":     "Current streak",
	"longest_streak":     "Longest streak",
	"total_active_days":  "Active days",
	"entries_this_week":  "Days this week",
	"entries_this_month": "Days this month",
	"last_active_date":   "Last active",
	"total_entries":      "Entries counted",
	"skipped_entries":    "Entries skipped",
}

func writeSnapshotCSV(w io.Writer, snap schema.Snapshot) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		return cw.WriteAll(snapshotRows(snap))
	})
}

func writeSnapshotParquet(w io.Writer, snap schema.Snapshot, source string) error {
	record := schema.NewSnapshotRecord(snap, "", source)
	return parquet.WriteSnapshotRuns(w, parquet.ConvertSnapshotRecords([]schema.SnapshotRecord{record}))
}

// writeSnapshotText renders the metrics table, the weekly strip and the message.
func writeSnapshotText(w io.Writer, snap schema.Snapshot, source string, useColors bool) error {
	streak := colorizer(useColors, contract.StreakColor.SprintFunc())

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})

	var data [][]string
	for _, row := range snapshotRows(snap) {
		label, ok := snapshotLabels[row[0]]
		if !ok {
			continue
		}
		value := row[1]
		if row[0] == "current_streak" && snap.CurrentStreak > 0 {
			value = streak(value)
		}
		data = append(data, []string{label, value})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Last 7 days: %s\n", formatWeeklyProgress(snap.WeeklyProgress)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%s\n\n", streak(snap.Message)); err != nil {
		return err
	}

	if err := writeSkipped(w, snap.Skipped); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Computed %s for %s (timezone %s, week starts %s)\n",
		snap.ComputedAt.Format(contract.DateTimeFormat), source, snap.Timezone, snap.WeekStart)
	return err
}

// formatWeeklyProgress renders the strip oldest day first, e.g. "Mon ● Tue ○ [Wed ●]".
func formatWeeklyProgress(days []schema.DayProgress) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		mark := "○"
		if d.Active {
			mark = "●"
		}
		part := d.Date.Weekday().String()[:3] + " " + mark
		if d.IsToday {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func writeSkipped(w io.Writer, skipped []schema.SkippedEntry) error {
	if len(skipped) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "⚠️  %d entries could not be read:\n", len(skipped)); err != nil {
		return err
	}
	for i, s := range skipped {
		if i == maxSkippedShown {
			_, err := fmt.Fprintf(w, "  ... and %d more\n", len(skipped)-maxSkippedShown)
			return err
		}
		ref := "#" + strconv.Itoa(s.Index)
		if s.ID != "" {
			ref += " (" + s.ID + ")"
		}
		if _, err := fmt.Fprintf(w, "  %s %q: %s\n", ref, contract.TruncateText(s.Raw, 40), s.Reason); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
