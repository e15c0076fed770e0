package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// MessageResult is the structured form of a motivation message.
type MessageResult struct {
	CurrentStreak int    `json:"current_streak"`
	Message       string `json:"message"`
}

// PrintMessage outputs the motivation message for a streak.
// Parquet has no sensible shape for a single message, so it falls back to JSON.
func PrintMessage(streak int, message string, cfg *contract.Config) error {
	result := MessageResult{CurrentStreak: streak, Message: message}
	switch cfg.Output {
	case schema.JSONOut, schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON message")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"current_streak", "message"}, func(cw *csv.Writer) error {
				return cw.Write([]string{strconv.Itoa(streak), message})
			})
		}, "Wrote CSV message")
	default:
		paint := colorizer(cfg.UseColors, contract.StreakColor.SprintFunc())
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "🔥 %s  %s\n", paint(formatStreak(streak)), message)
			return err
		}, "Wrote message")
	}
}

func formatStreak(streak int) string {
	if streak == 1 {
		return "1 day"
	}
	return strconv.Itoa(streak) + " days"
}
