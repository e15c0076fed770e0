package iocache

import (
	"bytes"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/huangsam/streakline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateHistory_NoneBackend(t *testing.T) {
	err := MigrateHistory(io.Discard, schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateHistory_UnsupportedBackend(t *testing.T) {
	assert.Error(t, MigrateHistory(io.Discard, "redis", "", -1))
}

func TestMigrateHistory_SQLite(t *testing.T) {
	path := tempDB(t, "history.db")
	var out bytes.Buffer

	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, path, -1))
	assert.Contains(t, out.String(), "from version 0 to version 2")

	out.Reset()
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, path, -1))
	assert.Contains(t, out.String(), "No migration needed")

	out.Reset()
	require.NoError(t, MigrateHistory(&out, schema.SQLiteBackend, path, 1))
	assert.Contains(t, out.String(), "from version 2 to version 1")

	require.NoError(t, MigrateHistory(io.Discard, schema.SQLiteBackend, path, 0))
	assert.False(t, tableExists(t, path, snapshotsTable))

	require.NoError(t, MigrateHistory(io.Discard, schema.SQLiteBackend, path, -1))
	assert.True(t, tableExists(t, path, snapshotsTable))
	assert.True(t, tableExists(t, path, gridCellsTable))
}

func TestMigrateHistory_StoreCreatedTablesFirst(t *testing.T) {
	path := tempDB(t, "history.db")

	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	_, err = store.RecordSnapshot(sampleRecord(time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), 2, nil))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Tables created on open must not break the first migration, and rows survive it
	require.NoError(t, MigrateHistory(io.Discard, schema.SQLiteBackend, path, -1))

	reopened, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	snapshots, err := reopened.GetAllSnapshots()
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestWithMultiStatements(t *testing.T) {
	dsn, err := withMultiStatements("user:pass@tcp(localhost:3306)/journal")
	require.NoError(t, err)
	assert.Contains(t, dsn, "multiStatements=true")

	_, err = withMultiStatements("not a dsn")
	assert.Error(t, err)
}

func tableExists(t *testing.T, path, table string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	require.NoError(t, err)
	return count > 0
}
