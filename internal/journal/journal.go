// Package journal reads journal entries from files, databases and memory.
package journal

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// ErrNoSource is returned when no entry source has been configured.
var ErrNoSource = errors.New("no entry source configured. Pass --source or set STREAKLINE_SOURCE")

// NewSource opens the entry source described by cfg.
func NewSource(ctx context.Context, cfg *contract.Config) (contract.EntrySource, error) {
	if cfg.Source == "" {
		return nil, ErrNoSource
	}

	format := cfg.SourceFormat
	if format == "" || format == schema.AutoFormat {
		format = DetectFormat(cfg.Source)
	}

	if format.IsSQL() {
		return OpenSQLSource(ctx, format, cfg.Source, SQLQuery{
			Table:      cfg.SourceTable,
			Column:     cfg.SourceColumn,
			IDColumn:   cfg.SourceIDColumn,
			UserColumn: cfg.SourceUserColumn,
			User:       cfg.SourceUser,
		})
	}
	return NewFileSource(cfg.Source, format), nil
}

// DetectFormat guesses the source format from a path or connection string.
func DetectFormat(source string) schema.SourceFormat {
	lower := strings.ToLower(source)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return schema.PostgreSQLFormat
	case strings.Contains(source, "@tcp("):
		return schema.MySQLFormat
	}

	switch filepath.Ext(lower) {
	case ".json":
		return schema.JSONFormat
	case ".jsonl", ".ndjson":
		return schema.JSONLinesFormat
	case ".csv":
		return schema.CSVFormat
	case ".db", ".sqlite", ".sqlite3":
		return schema.SQLiteFormat
	default:
		return schema.TextFormat
	}
}

// hashBytes returns the hex sha256 of data.
func hashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
