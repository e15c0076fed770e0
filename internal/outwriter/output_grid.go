package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/parquet"
	"github.com/huangsam/streakline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Each heat map column is a glyph plus a space; rows are prefixed by a weekday label.
const (
	gridLabelWidth  = 4
	gridColumnWidth = 2
)

// PrintGrid outputs a contribution grid, dispatching based on the output format configured.
func PrintGrid(grid schema.ContributionGrid, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, grid)
		}, "Wrote JSON grid")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGridCSV(w, grid)
		}, "Wrote CSV grid")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteGridCells(w, parquet.ConvertGrid(grid))
		}, "Wrote Parquet grid")
	default:
		width := GetTerminalWidth(cfg)
		first := firstWeekday(cfg.WeekStart, grid.Start)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGridText(w, grid, first, width, cfg.UseColors)
		}, "Wrote grid")
	}
}

// firstWeekday picks the top row of the heat map. A rolling week has no fixed
// first day, so the grid's own start day is used.
func firstWeekday(ws schema.WeekStart, start schema.CalendarDate) time.Weekday {
	switch ws {
	case schema.SundayWeekStart:
		return time.Sunday
	case schema.RollingWeekStart:
		return start.Weekday()
	default:
		return time.Monday
	}
}

func writeGridCSV(w io.Writer, grid schema.ContributionGrid) error {
	return writeCSVWithHeader(w, []string{"date", "count", "level"}, func(cw *csv.Writer) error {
		for _, cell := range grid.Cells {
			if err := cw.Write([]string{cell.Date.String(), strconv.Itoa(cell.Count), string(cell.Level)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeGridText draws the heat map with one column per week, newest weeks kept
// when the terminal is too narrow for the full range.
func writeGridText(w io.Writer, grid schema.ContributionGrid, first time.Weekday, width int, useColors bool) error {
	if len(grid.Cells) == 0 {
		_, err := fmt.Fprintln(w, "No days in range.")
		return err
	}

	weeks := schema.GroupByWeek(grid, first)
	maxWeeks := max((width-gridLabelWidth)/gridColumnWidth, 1)
	hidden := 0
	if len(weeks) > maxWeeks {
		hidden = len(weeks) - maxWeeks
		weeks = weeks[hidden:]
	}

	glyph := contract.GetLevelGlyph
	if useColors {
		glyph = contract.GetColorGlyph
	}

	var sb strings.Builder
	sb.WriteString(monthHeader(weeks))
	sb.WriteByte('\n')
	for row := range 7 {
		day := time.Weekday((int(first) + row) % 7)
		cells := make([]string, 0, len(weeks))
		for _, week := range weeks {
			if cell := week.Days[row]; cell != nil {
				cells = append(cells, glyph(cell.Level))
			} else {
				cells = append(cells, " ")
			}
		}
		sb.WriteString(day.String()[:3] + " " + strings.TrimRight(strings.Join(cells, " "), " "))
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	legend := make([]string, 0, len(schema.AllActivityLevels))
	for _, level := range schema.AllActivityLevels[1:] {
		legend = append(legend, glyph(level))
	}
	if _, err := fmt.Fprintf(w, "\nLess %s %s More\n", glyph(schema.LevelNone), strings.Join(legend, " ")); err != nil {
		return err
	}
	if hidden > 0 {
		if _, err := fmt.Fprintf(w, "(%d older weeks hidden; widen the terminal or use --width)\n", hidden); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n%d entries on %d of %d days from %s to %s (busiest day: %d)\n\n",
		grid.TotalEntries, grid.ActiveDays, len(grid.Cells), grid.Start, grid.End, grid.MaxCount); err != nil {
		return err
	}
	return writeLevelTable(w, grid, useColors)
}

// monthHeader labels the first week column of each month shown.
func monthHeader(weeks []schema.GridWeek) string {
	line := []rune(strings.Repeat(" ", gridLabelWidth+len(weeks)*gridColumnWidth))
	nextFree := 0
	lastMonth := time.Month(0)
	for i, week := range weeks {
		month := firstMonth(week)
		if month == 0 || month == lastMonth {
			continue
		}
		lastMonth = month
		pos := gridLabelWidth + i*gridColumnWidth
		label := []rune(month.String()[:3])
		if pos < nextFree || pos+len(label) > len(line) {
			continue
		}
		copy(line[pos:], label)
		nextFree = pos + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}

func firstMonth(week schema.GridWeek) time.Month {
	for _, cell := range week.Days {
		if cell != nil {
			return cell.Date.Month
		}
	}
	return 0
}

func writeLevelTable(w io.Writer, grid schema.ContributionGrid, useColors bool) error {
	counts := schema.LevelCounts(grid)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Level", "Days"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})

	data := make([][]string, 0, len(schema.AllActivityLevels))
	for _, level := range schema.AllActivityLevels {
		label := string(level)
		if useColors {
			label = contract.GetColorLabel(level)
		}
		data = append(data, []string{label, strconv.Itoa(counts[level])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
