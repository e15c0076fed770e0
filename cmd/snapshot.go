package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/streakline/core"
	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/notify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotCmd prints the streak dashboard.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [source]",
	Short: "Show current and longest streak plus weekly and monthly activity.",
	Long: `Read every entry of a journal and summarize how consistently it was written.

The snapshot contains:
- Current streak, counted back from today (or yesterday if today is still empty)
- Longest streak ever reached
- Total active days and total entries
- Entries this week and this month
- A seven day strip ending today
- A motivation message matching the current streak

Entries whose timestamp cannot be read are listed and otherwise ignored.

Examples:
  # Summarize a JSON lines export
  streakline snapshot journal.jsonl

  # Count days in Tokyo and start weeks on Sunday
  streakline snapshot journal.jsonl --timezone Asia/Tokyo --week-start sunday

  # Read a SQLite database owned by several users
  streakline snapshot app.db --source-user-column user_id --source-user 42

  # Pin the clock for reproducible output
  streakline snapshot journal.jsonl --now 2024-01-15 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshot(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute snapshot", err)
		}
	},
}

// gridCmd prints the contribution grid.
var gridCmd = &cobra.Command{
	Use:   "grid [source]",
	Short: "Show a day-by-day contribution grid.",
	Long: `Render one cell per calendar day with the number of entries written that day.

Cells are bucketed into five activity levels: none, low, medium, high and very high.
The range ends today by default; use --range for a relative window or
--start and --end for explicit dates.

Examples:
  # The last six months (default)
  streakline grid journal.jsonl

  # This year so far, weeks starting on Sunday
  streakline grid journal.jsonl --range ytd --week-start sunday

  # An explicit window exported as CSV
  streakline grid journal.jsonl --start 2024-01-01 --end 2024-03-31 --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGrid(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute contribution grid", err)
		}
	},
}

// messageCmd prints the motivation message for a streak.
var messageCmd = &cobra.Command{
	Use:   "message [streak]",
	Short: "Print the motivation message for a streak.",
	Long: `Print the motivation message for the current streak of the configured source,
or for a streak length given as an argument.

Messages come from the built-in tiers unless --messages-file or a 'messages'
section in the config file replaces them.

Examples:
  # Message for the journal's current streak
  streakline message --source journal.jsonl

  # Message for a 12 day streak, without reading any journal
  streakline message 12`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// The argument is a streak length, never a source
		return sharedSetup(rootCtx, cmd, nil)
	},
	Run: func(_ *cobra.Command, args []string) {
		if len(args) == 1 {
			streak, err := strconv.Atoi(args[0])
			if err != nil {
				contract.LogFatal("Invalid streak", fmt.Errorf("'%s' is not a whole number", args[0]))
			}
			if err := core.ExecuteStreakMessage(cfg, streak); err != nil {
				contract.LogFatal("Cannot select message", err)
			}
			return
		}
		if err := core.ExecuteMessage(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot select message", err)
		}
	},
}

// remindCmd sends a desktop notification when the streak is at risk.
var remindCmd = &cobra.Command{
	Use:   "remind [source]",
	Short: "Send a desktop reminder when today's entry is still missing.",
	Long: `Check whether the current streak ends tonight and, if it does, raise a desktop notification.

A reminder is due when the last entry was written yesterday. Nothing is sent when
today already has an entry or when there is no streak left to keep.

Run it from cron or a launchd/systemd timer in the evening.

Examples:
  # Silent notification
  streakline remind journal.jsonl

  # Notification with sound
  streakline remind journal.jsonl --alert`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		n := &notify.DesktopNotifier{Alert: viper.GetBool("alert")}
		if err := core.ExecuteRemind(rootCtx, cfg, cacheManager, n); err != nil {
			contract.LogFatal("Cannot send reminder", err)
		}
	},
}
