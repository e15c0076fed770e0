// Package outwriter renders snapshots, grids and messages as text, CSV, JSON or Parquet.
package outwriter

import (
	"os"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSnapshot prints a snapshot using the configured output format.
func (ow *OutWriter) WriteSnapshot(snap schema.Snapshot, source string, cfg *contract.Config) error {
	return PrintSnapshot(snap, source, cfg)
}

// WriteGrid prints a contribution grid using the configured output format.
func (ow *OutWriter) WriteGrid(grid schema.ContributionGrid, cfg *contract.Config) error {
	return PrintGrid(grid, cfg)
}

// WriteMessage prints a motivation message using the configured output format.
func (ow *OutWriter) WriteMessage(streak int, message string, cfg *contract.Config) error {
	return PrintMessage(streak, message, cfg)
}

// defaultTermWidth is used when the terminal size cannot be detected, e.g. in CI.
const defaultTermWidth = 80

// GetTerminalWidth returns the --width override, the detected terminal width, or 80.
func GetTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return defaultTermWidth
	}
	return detected
}
