package contract

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/streakline/schema"
	"gopkg.in/yaml.v3"
)

// Default values for configuration.
const (
	DefaultTimezone     = "Local"
	DefaultWeekStart    = schema.MondayWeekStart
	DefaultGridRange    = "6 months"
	DefaultSourceTable  = "journal_entries"
	DefaultSourceColumn = "created_at"
	DefaultServeAddr    = "127.0.0.1:8080"
	MaxGridDays         = 3660
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Source           string
	SourceFormat     schema.SourceFormat
	SourceTable      string
	SourceColumn     string
	SourceIDColumn   string
	SourceUserColumn string
	SourceUser       string

	Location  *time.Location
	FixedNow  time.Time // zero means the wall clock is read per computation
	WeekStart schema.WeekStart
	GridRange schema.GridRange
	Tiers     []schema.MotivationTier

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Addr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Entry source ---
	Source           string `mapstructure:"source"`
	SourceFormat     string `mapstructure:"source-format"`
	SourceTable      string `mapstructure:"source-table"`
	SourceColumn     string `mapstructure:"source-column"`
	SourceIDColumn   string `mapstructure:"source-id-column"`
	SourceUserColumn string `mapstructure:"source-user-column"`
	SourceUser       string `mapstructure:"source-user"`

	// --- Computation ---
	Timezone  string `mapstructure:"timezone"`
	Now       string `mapstructure:"now"`
	WeekStart string `mapstructure:"week-start"`
	Range     string `mapstructure:"range"`
	Start     string `mapstructure:"start"`
	End       string `mapstructure:"end"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Persistence ---
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Motivation messages from config file or a dedicated YAML file ---
	MessagesFile string                  `mapstructure:"messages-file"`
	Messages     []schema.MotivationTier `mapstructure:"messages"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Tiers != nil {
		clone.Tiers = slices.Clone(c.Tiers)
	}
	return &clone
}

// CurrentTime returns the pinned instant when --now was given, and the wall clock otherwise.
func (c *Config) CurrentTime() time.Time {
	if !c.FixedNow.IsZero() {
		return c.FixedNow
	}
	return time.Now()
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processClock(cfg, input); err != nil {
		return err
	}
	if err := processGridRange(cfg, input); err != nil {
		return err
	}
	if err := processMotivationTiers(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates output and backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultServeAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when --output is parquet")
	}

	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or be a postgres:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share a SQLite file since clearing one removes the file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// processSource validates where entries are read from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = strings.TrimSpace(input.Source)
	cfg.SourceUser = input.SourceUser

	cfg.SourceFormat = schema.SourceFormat(strings.ToLower(input.SourceFormat))
	if cfg.SourceFormat == "" {
		cfg.SourceFormat = schema.AutoFormat
	}
	if _, ok := schema.ValidSourceFormats[cfg.SourceFormat]; !ok {
		return fmt.Errorf("invalid source format '%s'. must be auto, json, jsonl, csv, text, sqlite, mysql, postgresql", input.SourceFormat)
	}

	cfg.SourceTable = orDefault(input.SourceTable, DefaultSourceTable)
	cfg.SourceColumn = orDefault(input.SourceColumn, DefaultSourceColumn)
	cfg.SourceIDColumn = input.SourceIDColumn
	cfg.SourceUserColumn = input.SourceUserColumn

	if !cfg.SourceFormat.IsSQL() {
		return nil
	}
	for flag, ident := range map[string]string{
		"source-table":       cfg.SourceTable,
		"source-column":      cfg.SourceColumn,
		"source-id-column":   cfg.SourceIDColumn,
		"source-user-column": cfg.SourceUserColumn,
	} {
		if ident == "" {
			continue
		}
		if err := ValidateIdentifier(ident); err != nil {
			return fmt.Errorf("invalid --%s: %w", flag, err)
		}
	}
	if cfg.SourceUser != "" && cfg.SourceUserColumn == "" {
		return fmt.Errorf("--source-user requires --source-user-column")
	}
	return nil
}

// processClock resolves the reference timezone, the optional pinned "now" and the week rule.
func processClock(cfg *Config, input *ConfigRawInput) error {
	tz := orDefault(strings.TrimSpace(input.Timezone), DefaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s'. Expected an IANA name such as 'America/New_York' or 'UTC': %w", tz, err)
	}
	cfg.Location = loc

	cfg.FixedNow = time.Time{}
	if input.Now != "" {
		now, err := ParseInstant(input.Now, time.Now(), loc)
		if err != nil {
			return fmt.Errorf("invalid --now value: %w", err)
		}
		cfg.FixedNow = now
	}

	weekStart, err := ParseWeekStart(input.WeekStart)
	if err != nil {
		return err
	}
	cfg.WeekStart = weekStart
	return nil
}

// ParseWeekStart validates a week start name, falling back to DefaultWeekStart when empty.
func ParseWeekStart(s string) (schema.WeekStart, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultWeekStart, nil
	}
	ws := schema.WeekStart(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidWeekStarts[ws]; !ok {
		return "", fmt.Errorf("invalid week start '%s'. must be monday, sunday, rolling", s)
	}
	return ws, nil
}

// processGridRange parses the contribution grid range, with --start/--end taking precedence.
func processGridRange(cfg *Config, input *ConfigRawInput) error {
	r, err := ParseGridRangeFlags(input.Range, input.Start, input.End)
	if err != nil {
		return err
	}
	cfg.GridRange = r
	return nil
}

// ParseGridRangeFlags combines a named range with optional explicit dates.
// Both explicit dates must be given together.
func ParseGridRangeFlags(rangeStr, start, end string) (schema.GridRange, error) {
	if start != "" || end != "" {
		if start == "" || end == "" {
			return schema.GridRange{}, fmt.Errorf("--start and --end must be given together")
		}
		startDate, err := schema.ParseCalendarDate(start)
		if err != nil {
			return schema.GridRange{}, fmt.Errorf("invalid --start: %w", err)
		}
		endDate, err := schema.ParseCalendarDate(end)
		if err != nil {
			return schema.GridRange{}, fmt.Errorf("invalid --end: %w", err)
		}
		if span := startDate.DaysUntil(endDate) + 1; span > MaxGridDays {
			return schema.GridRange{}, fmt.Errorf("grid range spans %d days, more than the maximum of %d", span, MaxGridDays)
		}
		return schema.GridRange{Start: startDate, End: endDate}, nil
	}
	return ParseGridRange(orDefault(rangeStr, DefaultGridRange))
}

// processMotivationTiers loads the message table from --messages-file, the config file, or defaults.
func processMotivationTiers(cfg *Config, input *ConfigRawInput) error {
	switch {
	case input.MessagesFile != "":
		tiers, err := LoadMotivationTiers(input.MessagesFile)
		if err != nil {
			return err
		}
		cfg.Tiers = tiers
	case len(input.Messages) > 0:
		cfg.Tiers = slices.Clone(input.Messages)
	default:
		cfg.Tiers = schema.DefaultMotivationTiers()
	}
	slices.SortStableFunc(cfg.Tiers, func(a, b schema.MotivationTier) int { return a.MinStreak - b.MinStreak })
	return nil
}

// messagesFile is the layout of a --messages-file document.
type messagesFile struct {
	Messages []schema.MotivationTier `yaml:"messages"`
}

// LoadMotivationTiers reads a YAML message table. The document is either a
// top-level list of tiers or a mapping with a "messages" list.
func LoadMotivationTiers(path string) ([]schema.MotivationTier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	return ParseMotivationTiers(data)
}

// ParseMotivationTiers decodes the YAML forms accepted by LoadMotivationTiers.
func ParseMotivationTiers(data []byte) ([]schema.MotivationTier, error) {
	var list []schema.MotivationTier
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var doc messagesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	if len(doc.Messages) == 0 {
		return nil, fmt.Errorf("messages file defines no tiers")
	}
	return doc.Messages, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
