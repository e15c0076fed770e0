package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// ActivityLevel represents the intensity bucket of a contribution cell.
	ActivityLevel string

	// WeekStart names the rule that decides which days belong to "this week".
	WeekStart string

	// SourceFormat represents the encoding of a journal entry source.
	SourceFormat string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Activity levels, ordered from no activity to the most intense bucket.
const (
	LevelNone     ActivityLevel = "none"
	LevelLow      ActivityLevel = "low"
	LevelMedium   ActivityLevel = "medium"
	LevelHigh     ActivityLevel = "high"
	LevelVeryHigh ActivityLevel = "very_high"
)

// Week start rules.
const (
	MondayWeekStart  WeekStart = "monday" // ISO 8601 week
	SundayWeekStart  WeekStart = "sunday"
	RollingWeekStart WeekStart = "rolling" // trailing seven days ending today
)

// Entry source formats.
const (
	AutoFormat       SourceFormat = "auto" // default, inferred from the file extension
	JSONFormat       SourceFormat = "json"
	JSONLinesFormat  SourceFormat = "jsonl"
	CSVFormat        SourceFormat = "csv"
	TextFormat       SourceFormat = "text"
	SQLiteFormat     SourceFormat = "sqlite"
	MySQLFormat      SourceFormat = "mysql"
	PostgreSQLFormat SourceFormat = "postgresql"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidWeekStarts lists all valid week start rules.
var ValidWeekStarts = map[WeekStart]struct{}{
	MondayWeekStart:  {},
	SundayWeekStart:  {},
	RollingWeekStart: {},
}

// ValidSourceFormats lists all valid entry source formats.
var ValidSourceFormats = map[SourceFormat]struct{}{
	AutoFormat:       {},
	JSONFormat:       {},
	JSONLinesFormat:  {},
	CSVFormat:        {},
	TextFormat:       {},
	SQLiteFormat:     {},
	MySQLFormat:      {},
	PostgreSQLFormat: {},
}

// AllActivityLevels returns every level from lowest to highest.
var AllActivityLevels = []ActivityLevel{LevelNone, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh}

// IsSQL reports whether the format is read through database/sql.
func (f SourceFormat) IsSQL() bool {
	return f == SQLiteFormat || f == MySQLFormat || f == PostgreSQLFormat
}

// Rank returns the ordinal of the level, 0 for none through 4 for very_high.
func (l ActivityLevel) Rank() int {
	for i, level := range AllActivityLevels {
		if level == l {
			return i
		}
	}
	return 0
}
