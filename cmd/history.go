package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/iocache"
	"github.com/huangsam/streakline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig reads and validates the history backend settings.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if s := viper.GetString("history-backend"); s != "" {
		backend = schema.DatabaseBackend(s)
	}
	connStr := viper.GetString("history-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// No activity caching for history commands
	if err := iocache.InitStores("", "", enabledBackend(backend), connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the backend settings without opening the store,
// so that migrations can run against a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on snapshot history management.
//
// History subcommands skip sharedSetup since they need neither a source nor a clock.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded snapshots and exports",
	Long: `Manage the history of computed snapshots.

When a history backend is configured, every snapshot, grid or message run stores:
- The snapshot metrics with the instant, timezone and week rule they were computed for
- Every cell of the contribution grid of that run

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded history
  migrate - Run database schema migrations

Examples:
  # Start recording
  streakline snapshot journal.jsonl --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  streakline history export --history-backend sqlite --output-file streaks`,
}

// historyClearCmd clears the recorded history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded snapshot history",
	Long: `Delete every recorded snapshot and grid cell.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  streakline history export --output-file backup
  streakline history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("Snapshot history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, connection state, snapshot count, newest and oldest
snapshot and table sizes of the snapshot history.

Examples:
  streakline history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			fmt.Println("Snapshot history is disabled (backend none).")
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports the history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded history to Parquet",
	Long: `Export all recorded snapshots and grid cells to Parquet.

Writes two files next to --output-file:
  <output-file>.snapshots.parquet
  <output-file>.grid_cells.parquet

Examples:
  streakline history export --output-file streaks
  duckdb -c "SELECT computed_at, current_streak FROM read_parquet('streaks.snapshots.parquet')"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, iocache.Manager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  streakline history migrate --history-backend postgresql --history-db-connect "..."

  # Rollback to the initial state
  streakline history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
