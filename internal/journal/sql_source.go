package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// SQLQuery names the table and columns entries are read from.
// Every name must pass contract.ValidateIdentifier.
type SQLQuery struct {
	Table      string
	Column     string
	IDColumn   string // optional
	UserColumn string // optional, filters rows to User
	User       string
}

// SQLSource reads entry timestamps from a database table.
type SQLSource struct {
	db      *sql.DB
	format  schema.SourceFormat
	query   SQLQuery
	display string
}

var _ contract.EntrySource = &SQLSource{} // Compile-time check

// OpenSQLSource connects to the database and verifies it is reachable.
func OpenSQLSource(ctx context.Context, format schema.SourceFormat, dsn string, q SQLQuery) (*SQLSource, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	driverName, err := driverFor(format)
	if err != nil {
		return nil, err
	}
	display, err := describeDSN(format, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s entry source: %w", format, err)
	}
	if format == schema.SQLiteFormat {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s entry source %s: %w", format, display, err)
	}

	return NewSQLSource(db, format, display, q), nil
}

// NewSQLSource wraps an open database. The display name appears in cache keys and
// output, so it must not contain credentials.
func NewSQLSource(db *sql.DB, format schema.SourceFormat, display string, q SQLQuery) *SQLSource {
	return &SQLSource{db: db, format: format, query: q, display: display}
}

func (q SQLQuery) validate() error {
	for _, ident := range []string{q.Table, q.Column} {
		if err := contract.ValidateIdentifier(ident); err != nil {
			return err
		}
	}
	for _, ident := range []string{q.IDColumn, q.UserColumn} {
		if ident == "" {
			continue
		}
		if err := contract.ValidateIdentifier(ident); err != nil {
			return err
		}
	}
	if q.User != "" && q.UserColumn == "" {
		return fmt.Errorf("a user filter requires a user column")
	}
	return nil
}

func driverFor(format schema.SourceFormat) (string, error) {
	switch format {
	case schema.SQLiteFormat:
		return "sqlite", nil
	case schema.MySQLFormat:
		return "mysql", nil
	case schema.PostgreSQLFormat:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported SQL source format: %s", format)
	}
}

// describeDSN builds a credential-free identity for the connection.
func describeDSN(format schema.SourceFormat, dsn string) (string, error) {
	switch format {
	case schema.MySQLFormat:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid MySQL connection string: %w", err)
		}
		return fmt.Sprintf("mysql:%s/%s", cfg.Addr, cfg.DBName), nil
	case schema.PostgreSQLFormat:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
		return fmt.Sprintf("postgresql:%s:%d/%s", cfg.Host, cfg.Port, cfg.Database), nil
	default:
		return fmt.Sprintf("sqlite:%s", dsn), nil
	}
}

// placeholder returns the bind parameter syntax of the backend.
func (s *SQLSource) placeholder(n int) string {
	if s.format == schema.PostgreSQLFormat {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// where returns the optional user filter clause and its arguments.
func (s *SQLSource) where() (string, []any) {
	if s.query.UserColumn == "" || s.query.User == "" {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s = %s", s.query.UserColumn, s.placeholder(1)), []any{s.query.User}
}

// Entries implements the EntrySource interface.
func (s *SQLSource) Entries(ctx context.Context) ([]schema.Entry, error) {
	columns := s.query.Column
	if s.query.IDColumn != "" {
		columns += ", " + s.query.IDColumn
	}
	where, args := s.where()
	query := fmt.Sprintf("SELECT %s FROM %s%s", columns, s.query.Table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []schema.Entry{}
	for rows.Next() {
		var created, id any
		dest := []any{&created}
		if s.query.IDColumn != "" {
			dest = append(dest, &id)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, schema.Entry{ID: valueText(id), CreatedAt: valueText(created)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// Fingerprint implements the EntrySource interface. It digests every selected
// timestamp in sorted order, so any insert, delete or edit of the column
// changes it, including edits to old rows. Changes to other columns do not.
// The whole column is read, but only that column.
func (s *SQLSource) Fingerprint(ctx context.Context) (string, error) {
	where, args := s.where()
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s", s.query.Column, s.query.Table, where, s.query.Column)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	h := sha256.New()
	var count int64
	var newest string
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return "", fmt.Errorf("failed to fingerprint entries: %w", err)
		}
		newest = valueText(raw)
		_, _ = h.Write([]byte(newest))
		_, _ = h.Write([]byte{0})
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to fingerprint entries: %w", err)
	}
	return fmt.Sprintf("%d:%s:%x", count, newest, h.Sum(nil)), nil
}

// Describe implements the EntrySource interface.
func (s *SQLSource) Describe() string {
	desc := s.display + "/" + s.query.Table + "." + s.query.Column
	if s.query.User != "" {
		desc += "?user=" + s.query.User
	}
	return desc
}

// Close implements the EntrySource interface.
func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// valueText renders a scanned column as timestamp text. Drivers return text columns
// as string or []byte, native timestamps as time.Time and epoch columns as integers.
func valueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return fmt.Sprint(val)
	}
}
