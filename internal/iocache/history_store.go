package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// Table names for snapshot history.
const (
	snapshotsTable = "streakline_snapshots"
	gridCellsTable = "streakline_grid_cells"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{snapshotsTable, gridCellsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history tables on the given backend, creating them when missing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot history: %w", err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the snapshot history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		snapshotsTable: getCreateSnapshotsQuery(backend),
		gridCellsTable: getCreateGridCellsQuery(backend),
	}
	for _, table := range historyTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateSnapshotsQuery returns the CREATE TABLE query for streakline_snapshots.
func getCreateSnapshotsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(snapshotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_key CHAR(36) NOT NULL UNIQUE,
				computed_at DATETIME(6) NOT NULL,
				source VARCHAR(512) NOT NULL,
				timezone VARCHAR(64) NOT NULL,
				week_start VARCHAR(16) NOT NULL,
				current_streak INT NOT NULL,
				longest_streak INT NOT NULL,
				total_active_days INT NOT NULL,
				entries_this_week INT NOT NULL,
				entries_this_month INT NOT NULL,
				total_entries INT NOT NULL,
				skipped_entries INT NOT NULL,
				last_active_date CHAR(10),
				message TEXT NOT NULL
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGSERIAL PRIMARY KEY,
				run_key UUID NOT NULL UNIQUE,
				computed_at TIMESTAMPTZ NOT NULL,
				source TEXT NOT NULL,
				timezone TEXT NOT NULL,
				week_start TEXT NOT NULL,
				current_streak INT NOT NULL,
				longest_streak INT NOT NULL,
				total_active_days INT NOT NULL,
				entries_this_week INT NOT NULL,
				entries_this_month INT NOT NULL,
				total_entries INT NOT NULL,
				skipped_entries INT NOT NULL,
				last_active_date DATE,
				message TEXT NOT NULL
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_key TEXT NOT NULL UNIQUE,
				computed_at TEXT NOT NULL,
				source TEXT NOT NULL,
				timezone TEXT NOT NULL,
				week_start TEXT NOT NULL,
				current_streak INTEGER NOT NULL,
				longest_streak INTEGER NOT NULL,
				total_active_days INTEGER NOT NULL,
				entries_this_week INTEGER NOT NULL,
				entries_this_month INTEGER NOT NULL,
				total_entries INTEGER NOT NULL,
				skipped_entries INTEGER NOT NULL,
				last_active_date TEXT,
				message TEXT NOT NULL
			);
		`, quoted)
	}
}

// getCreateGridCellsQuery returns the CREATE TABLE query for streakline_grid_cells.
func getCreateGridCellsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(gridCellsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				cell_date CHAR(10) NOT NULL,
				entry_count INT NOT NULL,
				level VARCHAR(16) NOT NULL,
				PRIMARY KEY (snapshot_id, cell_date)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				cell_date DATE NOT NULL,
				entry_count INT NOT NULL,
				level TEXT NOT NULL,
				PRIMARY KEY (snapshot_id, cell_date)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER NOT NULL,
				cell_date TEXT NOT NULL,
				entry_count INTEGER NOT NULL,
				level TEXT NOT NULL,
				PRIMARY KEY (snapshot_id, cell_date)
			);
		`, quoted)
	}
}

// snapshotColumns lists the insertable columns of streakline_snapshots.
const snapshotColumns = `run_key, computed_at, source, timezone, week_start, current_streak, longest_streak,
	total_active_days, entries_this_week, entries_this_month, total_entries, skipped_entries,
	last_active_date, message`

// RecordSnapshot stores a snapshot and returns its unique ID.
func (hs *HistoryStoreImpl) RecordSnapshot(record schema.SnapshotRecord) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	args := []any{
		record.RunKey, formatTime(record.ComputedAt, hs.backend), record.Source, record.Timezone, record.WeekStart,
		record.CurrentStreak, record.LongestStreak, record.TotalActiveDays, record.EntriesThisWeek,
		record.EntriesThisMonth, record.TotalEntries, record.SkippedEntries, record.LastActiveDate, record.Message,
	}
	quoted := quoteTableName(snapshotsTable, hs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quoted, snapshotColumns, placeholderList(hs.backend, len(args)))

	var snapshotID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		if err := hs.db.QueryRow(query+" RETURNING snapshot_id", args...).Scan(&snapshotID); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot: %w", err)
		}
	default: // SQLite and MySQL
		result, err := hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert snapshot: %w", err)
		}
		if snapshotID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read snapshot id: %w", err)
		}
	}

	return snapshotID, nil
}

// RecordGridCells stores the cells of a contribution grid in one transaction.
func (hs *HistoryStoreImpl) RecordGridCells(snapshotID int64, cells []schema.ContributionCell) error {
	if hs.backend == schema.NoneBackend || hs.db == nil || len(cells) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin grid transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (snapshot_id, cell_date, entry_count, level) VALUES (%s)`,
		quoteTableName(gridCellsTable, hs.backend), placeholderList(hs.backend, 4))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare grid insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, cell := range cells {
		if _, err := stmt.Exec(snapshotID, cell.Date.String(), cell.Count, string(cell.Level)); err != nil {
			return fmt.Errorf("failed to insert grid cell %s: %w", cell.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grid cells: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(snapshotsTable, hs.backend)
	var longest sql.NullInt64
	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), MAX(longest_streak) FROM %s", quoted))
	if err := row.Scan(&status.TotalSnapshots, &longest); err != nil {
		return status, fmt.Errorf("failed to get total snapshots: %w", err)
	}
	status.LongestRecorded = int(longest.Int64)

	if status.TotalSnapshots > 0 {
		var lastAt any
		row = hs.db.QueryRow(fmt.Sprintf("SELECT snapshot_id, computed_at FROM %s ORDER BY snapshot_id DESC LIMIT 1", quoted))
		if err := row.Scan(&status.LastSnapshotID, &lastAt); err != nil {
			return status, fmt.Errorf("failed to get last snapshot: %w", err)
		}
		lastTime, err := scanTime(lastAt)
		if err != nil {
			return status, fmt.Errorf("failed to parse last snapshot time: %w", err)
		}
		status.LastSnapshotTime = lastTime

		var oldestAt any
		row = hs.db.QueryRow(fmt.Sprintf("SELECT computed_at FROM %s ORDER BY snapshot_id ASC LIMIT 1", quoted))
		if err := row.Scan(&oldestAt); err != nil {
			return status, fmt.Errorf("failed to get oldest snapshot: %w", err)
		}
		oldestTime, err := scanTime(oldestAt)
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest snapshot time: %w", err)
		}
		status.OldestSnapshot = oldestTime
	}

	for _, table := range historyTables {
		var count int64
		row = hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllSnapshots retrieves every stored snapshot ordered by ID.
func (hs *HistoryStoreImpl) GetAllSnapshots() ([]schema.SnapshotRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT snapshot_id, %s FROM %s ORDER BY snapshot_id", snapshotColumns, quoteTableName(snapshotsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var record schema.SnapshotRecord
		var computedAt, lastActive any
		if err := rows.Scan(&record.SnapshotID, &record.RunKey, &computedAt, &record.Source, &record.Timezone,
			&record.WeekStart, &record.CurrentStreak, &record.LongestStreak, &record.TotalActiveDays,
			&record.EntriesThisWeek, &record.EntriesThisMonth, &record.TotalEntries, &record.SkippedEntries,
			&lastActive, &record.Message); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if record.ComputedAt, err = scanTime(computedAt); err != nil {
			return nil, fmt.Errorf("failed to parse computed_at: %w", err)
		}
		record.LastActiveDate = dateText(lastActive)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return results, nil
}

// GetAllGridCells retrieves every stored grid cell ordered by snapshot and date.
func (hs *HistoryStoreImpl) GetAllGridCells() ([]schema.GridCellRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT snapshot_id, cell_date, entry_count, level FROM %s ORDER BY snapshot_id, cell_date", quoteTableName(gridCellsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query grid cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.GridCellRecord
	for rows.Next() {
		var record schema.GridCellRecord
		var cellDate any
		if err := rows.Scan(&record.SnapshotID, &cellDate, &record.EntryCount, &record.Level); err != nil {
			return nil, fmt.Errorf("failed to scan grid cell: %w", err)
		}
		if d := dateText(cellDate); d != nil {
			record.CellDate = *d
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grid cells: %w", err)
	}

	return results, nil
}

// dateText normalizes a DATE or text column to YYYY-MM-DD. NULL yields nil.
func dateText(value any) *string {
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		s = v.Format(time.DateOnly)
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	return &s
}
