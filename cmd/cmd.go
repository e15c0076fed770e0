// Package cmd defines the command-line interface for streakline.
package cmd

import (
	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.StringP("source", "s", "", "Journal to read: a file path, or a DSN when --source-format is a database")
	flags.String("source-format", string(schema.AutoFormat), "Source format: auto or json or jsonl or csv or text or sqlite or mysql or postgresql")
	flags.String("source-table", contract.DefaultSourceTable, "Table holding journal entries for database sources")
	flags.String("source-column", contract.DefaultSourceColumn, "Column (or JSON/CSV field) holding the entry creation time")
	flags.String("source-id-column", "", "Optional column holding the entry id")
	flags.String("source-user-column", "", "Optional column identifying the journal owner")
	flags.String("source-user", "", "Only count entries whose owner column equals this value")
	flags.String("timezone", contract.DefaultTimezone, "IANA timezone that defines calendar days")
	flags.String("now", "", "Pin the reference instant (RFC3339, YYYY-MM-DD or time ago)")
	flags.String("week-start", string(contract.DefaultWeekStart), "Which days count as this week: monday or sunday or rolling")
	flags.String("range", contract.DefaultGridRange, "Grid range ending today, e.g. '6 months', '52 weeks', '1 year' or 'ytd'")
	flags.String("start", "", "First grid day (YYYY-MM-DD), used together with --end")
	flags.String("end", "", "Last grid day (YYYY-MM-DD), used together with --start")
	flags.String("messages-file", "", "YAML file with custom motivation tiers")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored output (yes/no/true/false/1/0)")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Activity cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("history-backend", "", "Snapshot history backend: sqlite or mysql or postgresql or none")
	flags.String("history-db-connect", "", "Database connection string for snapshot history (must differ from cache-db-connect)")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of remindCmd to Viper
	remindCmd.Flags().Bool("alert", false, "Use an alert with sound instead of a silent notification")
	if err := viper.BindPFlags(remindCmd.Flags()); err != nil {
		contract.LogFatal("Error binding remind flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
