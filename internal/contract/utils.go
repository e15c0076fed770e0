package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/streakline/schema"
)

// Color variables for console output, one per activity level.
var (
	VeryHighColor = color.New(color.FgGreen, color.Bold) // VeryHighColor marks the busiest days.
	HighColor     = color.New(color.FgGreen)
	MediumColor   = color.New(color.FgHiGreen)
	LowColor      = color.New(color.FgCyan)
	NoneColor     = color.New(color.FgHiBlack)
	StreakColor   = color.New(color.FgYellow, color.Bold)
)

// levelGlyphs are the heat map symbols, from none to very_high.
var levelGlyphs = map[schema.ActivityLevel]string{
	schema.LevelNone:     "·",
	schema.LevelLow:      "░",
	schema.LevelMedium:   "▒",
	schema.LevelHigh:     "▓",
	schema.LevelVeryHigh: "█",
}

// GetLevelGlyph returns the plain heat map symbol for an activity level.
func GetLevelGlyph(level schema.ActivityLevel) string {
	if g, ok := levelGlyphs[level]; ok {
		return g
	}
	return "?"
}

// GetColorGlyph returns the heat map symbol with the color of its level applied.
func GetColorGlyph(level schema.ActivityLevel) string {
	return levelColor(level).Sprint(GetLevelGlyph(level))
}

// GetColorLabel returns a colored level name for console output (table).
func GetColorLabel(level schema.ActivityLevel) string {
	return levelColor(level).Sprint(string(level))
}

func levelColor(level schema.ActivityLevel) *color.Color {
	switch level {
	case schema.LevelVeryHigh:
		return VeryHighColor
	case schema.LevelHigh:
		return HighColor
	case schema.LevelMedium:
		return MediumColor
	case schema.LevelLow:
		return LowColor
	default:
		return NoneColor
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for activity caching.
func GetCacheDBFilePath() string {
	return homeFile(".streakline_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for snapshot history.
func GetHistoryDBFilePath() string {
	return homeFile(".streakline_history.db")
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// identifierRe matches plain or schema-qualified SQL identifiers.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateIdentifier rejects table and column names that cannot be safely
// interpolated into a query.
func ValidateIdentifier(name string) error {
	if len(name) > 128 || !identifierRe.MatchString(name) {
		return fmt.Errorf("%q is not a valid SQL identifier", name)
	}
	return nil
}

// TruncateText truncates text to a maximum width with an ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// An empty string means true. Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
