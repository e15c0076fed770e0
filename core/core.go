// Package core has the streak engine and the orchestration that feeds it journal entries.
package core

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/huangsam/streakline/core/agg"
	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/journal"
	"github.com/huangsam/streakline/internal/notify"
	"github.com/huangsam/streakline/internal/outwriter"
	"github.com/huangsam/streakline/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// RunResult is one computation over an entry source. The snapshot and the grid
// share one normalization pass and one reading of the clock.
type RunResult struct {
	Source     string                  `json:"source"`
	RunKey     string                  `json:"run_key,omitempty"`
	SnapshotID int64                   `json:"snapshot_id,omitempty"` // zero when history is off
	Snapshot   schema.Snapshot         `json:"snapshot"`
	Grid       schema.ContributionGrid `json:"grid"`
}

// ExecuteSnapshot computes the dashboard snapshot for the configured source and prints it.
func ExecuteSnapshot(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	run, err := GetRunResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSnapshot(run.Snapshot, run.Source, cfg)
}

// ExecuteGrid computes the contribution grid for the configured source and range and prints it.
func ExecuteGrid(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	run, err := GetRunResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintGrid(run.Grid, cfg)
}

// ExecuteMessage prints the motivation message for the current streak of the configured source.
func ExecuteMessage(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	run, err := GetRunResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintMessage(run.Snapshot.CurrentStreak, run.Snapshot.Message, cfg)
}

// ExecuteStreakMessage prints the message for a streak given directly, without reading a source.
func ExecuteStreakMessage(cfg *contract.Config, streak int) error {
	if streak < 0 {
		return fmt.Errorf("streak must not be negative: %d", streak)
	}
	if err := ValidateTiers(cfg.Tiers); err != nil {
		return err
	}
	return outwriter.PrintMessage(streak, SelectMessage(streak, cfg.Tiers), cfg)
}

// ExecuteRemind sends a desktop reminder through n when today's entry is all that
// keeps the current streak alive.
func ExecuteRemind(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, n notify.Notifier) error {
	run, err := GetRunResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	today := schema.DateOf(run.Snapshot.ComputedAt, cfg.Location)
	reminder, sent, err := notify.Remind(n, run.Snapshot, today)
	if err != nil {
		return err
	}
	if sent {
		_, _ = fmt.Fprintf(os.Stdout, "🔔 %s\n", reminder.Message)
		return nil
	}
	_, _ = fmt.Fprintf(os.Stdout, "✅ No reminder needed (current streak %d, last active %s)\n",
		run.Snapshot.CurrentStreak, lastActiveText(run.Snapshot))
	return nil
}

func lastActiveText(snap schema.Snapshot) string {
	if snap.LastActiveDate == nil {
		return "never"
	}
	return snap.LastActiveDate.String()
}

// GetRunResults opens the configured source, computes a run and records it in history.
func GetRunResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (RunResult, error) {
	source, err := journal.NewSource(ctx, cfg)
	if err != nil {
		return RunResult{}, err
	}
	defer func() { _ = source.Close() }()

	run, err := ComputeRun(ctx, source, cfg, mgr)
	if err != nil {
		return RunResult{}, err
	}
	recordHistory(ctx, mgr, &run)
	return run, nil
}

// GetTimestampResults computes a run over timestamps supplied by a caller, such as
// an MCP tool or an HTTP request. A nil slice falls back to the configured source;
// supplied timestamps bypass the cache and are not recorded in history.
func GetTimestampResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, timestamps []string) (RunResult, error) {
	if timestamps == nil {
		return GetRunResults(ctx, cfg, mgr)
	}
	return ComputeRun(ctx, journal.FromTimestamps("request", timestamps), cfg, nil)
}

// ComputeRun normalizes the entries of source, going through the activity cache when
// mgr provides one, and derives the snapshot and the grid for cfg.GridRange.
func ComputeRun(ctx context.Context, source contract.EntrySource, cfg *contract.Config, mgr contract.CacheManager) (RunResult, error) {
	opts := OptionsFromConfig(cfg)
	if err := opts.Validate(); err != nil {
		return RunResult{}, err
	}
	logRunHeader(ctx, source.Describe(), opts)

	norm, err := agg.CachedNormalize(ctx, source, opts.Location, mgr)
	if err != nil {
		return RunResult{}, err
	}
	snap, err := SnapshotFromActivity(norm, opts)
	if err != nil {
		return RunResult{}, err
	}
	grid, err := GridFromActivity(norm.Activity, cfg.GridRange, opts)
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{Source: source.Describe(), Snapshot: snap, Grid: grid}, nil
}

// recordHistory stores the run when a history store is configured. Failures are
// reported and otherwise ignored so the command output is never lost.
func recordHistory(ctx context.Context, mgr contract.CacheManager, run *RunResult) {
	if mgr == nil {
		return
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return
	}

	key, ok := getRunKey(ctx)
	if !ok {
		key = uuid.NewString()
	}

	id, err := history.RecordSnapshot(schema.NewSnapshotRecord(run.Snapshot, key, run.Source))
	if err != nil {
		contract.LogWarn("Failed to record snapshot history", err)
		return
	}
	if err := history.RecordGridCells(id, run.Grid.Cells); err != nil {
		contract.LogWarn("Failed to record grid history", err)
	}
	run.RunKey = key
	run.SnapshotID = id
}

// logRunHeader tells the user what is being computed, on stderr so piped output stays clean.
func logRunHeader(ctx context.Context, source string, opts ComputeOptions) {
	if shouldSuppressHeader(ctx) {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "🔎 %s as of %s (%s, weeks start %s)\n",
		source, opts.Today(), opts.Location, opts.WeekStart)
}
