//go:build database

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// journalRows are seeded into the database source: three days in a row for user 1
// and a single entry for user 2.
var journalRows = []struct {
	id     int
	userID string
	ts     string
}{
	{1, "1", "2024-01-13T09:00:00Z"},
	{2, "1", "2024-01-14T09:00:00Z"},
	{3, "1", "2024-01-15T09:00:00Z"},
	{4, "2", "2024-01-15T10:00:00Z"},
}

// seedJournal creates and fills the journal_entries table. Timestamps are stored
// as text so both drivers hand them back unchanged.
func seedJournal(t *testing.T, driver, dsn, placeholders string) {
	t.Helper()
	db, err := sql.Open(driver, dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.Eventually(t, func() bool { return db.Ping() == nil }, 30*time.Second, time.Second)

	_, err = db.Exec(`CREATE TABLE journal_entries (id INT PRIMARY KEY, user_id VARCHAR(16) NOT NULL, created_at VARCHAR(40) NOT NULL)`)
	require.NoError(t, err)
	for _, row := range journalRows {
		_, err = db.Exec("INSERT INTO journal_entries (id, user_id, created_at) VALUES "+placeholders, row.id, row.userID, row.ts)
		require.NoError(t, err)
	}
}

// exerciseBackend runs the full CLI flow against one database used as source, cache and history.
func exerciseBackend(t *testing.T, backend, dsn string) {
	env := map[string]string{
		"STREAKLINE_SOURCE":             dsn,
		"STREAKLINE_SOURCE_FORMAT":      backend,
		"STREAKLINE_SOURCE_ID_COLUMN":   "id",
		"STREAKLINE_SOURCE_USER_COLUMN": "user_id",
		"STREAKLINE_CACHE_BACKEND":      backend,
		"STREAKLINE_CACHE_DB_CONNECT":   dsn,
		"STREAKLINE_HISTORY_BACKEND":    backend,
		"STREAKLINE_HISTORY_DB_CONNECT": dsn,
	}

	runStreakline(t, env, "cache", "clear")
	runStreakline(t, env, "history", "clear")
	runStreakline(t, env, "history", "migrate")

	// Twice, so the second run reads the activity cache
	for range 2 {
		out := runStreakline(t, env, "snapshot", "--source-user", "1", "--now", "2024-01-15T18:00:00Z",
			"--timezone", "UTC", "--output", "json")
		var snap struct {
			CurrentStreak int `json:"current_streak"`
			TotalEntries  int `json:"total_entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &snap))
		assert.Equal(t, 3, snap.CurrentStreak)
		assert.Equal(t, 3, snap.TotalEntries)
	}

	out := runStreakline(t, env, "grid", "--source-user", "2", "--start", "2024-01-14", "--end", "2024-01-15",
		"--timezone", "UTC", "--output", "csv")
	assert.Contains(t, out, "2024-01-15,1,low")

	runStreakline(t, env, "cache", "status")
	status := runStreakline(t, env, "history", "status")
	assert.Contains(t, status, backend)
}

// TestStreaklineWithMySQL tests the CLI with MySQL as source, cache and history.
func TestStreaklineWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "streakline",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	dsn := fmt.Sprintf("root:secret123@tcp(%s:%s)/streakline?parseTime=true", host, port.Port())
	seedJournal(t, "mysql", dsn, "(?, ?, ?)")
	exerciseBackend(t, "mysql", dsn)
}

// TestStreaklineWithPostgres tests the CLI with PostgreSQL as source, cache and history.
func TestStreaklineWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	seedJournal(t, "pgx", dsn, "($1, $2, $3)")
	exerciseBackend(t, "postgresql", dsn)
}
