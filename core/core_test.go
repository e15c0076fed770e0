package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/iocache"
	"github.com/huangsam/streakline/internal/journal"
	"github.com/huangsam/streakline/internal/notify"
	"github.com/huangsam/streakline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const journalFixture = `{"id":"a","created_at":"2024-01-13T09:00:00Z"}
{"id":"b","created_at":"2024-01-14T21:00:00Z"}
{"id":"c","created_at":"2024-01-15T07:30:00Z"}
{"id":"d","created_at":"not a time"}
`

func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(journalFixture), 0o644))
	return &contract.Config{
		Source:    path,
		Location:  time.UTC,
		FixedNow:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		WeekStart: schema.MondayWeekStart,
		GridRange: schema.GridRange{Amount: 1, Unit: "week"},
		Tiers:     schema.DefaultMotivationTiers(),
		Output:    schema.JSONOut,
	}
}

func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(nil)
	mgr.On("GetHistoryStore").Return(nil)
	return mgr
}

func TestGetRunResults(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig(t)

	run, err := GetRunResults(ctx, cfg, noStores())
	require.NoError(t, err)

	assert.Contains(t, run.Source, "journal.jsonl")
	assert.Equal(t, 3, run.Snapshot.CurrentStreak)
	assert.Equal(t, 3, run.Snapshot.TotalEntries)
	require.Len(t, run.Snapshot.Skipped, 1)
	assert.Equal(t, "d", run.Snapshot.Skipped[0].ID)
	assert.Equal(t, "Building momentum. Keep writing!", run.Snapshot.Message)

	assert.Equal(t, schema.NewCalendarDate(2024, time.January, 9), run.Grid.Start)
	assert.Equal(t, schema.NewCalendarDate(2024, time.January, 15), run.Grid.End)
	assert.Len(t, run.Grid.Cells, 7)
	assert.Equal(t, 3, run.Grid.TotalEntries)

	assert.Empty(t, run.RunKey)
	assert.Zero(t, run.SnapshotID)
}

func TestGetRunResults_RecordsHistory(t *testing.T) {
	ctx := WithRunKey(WithSuppressHeader(context.Background()), "run-1")
	cfg := testConfig(t)

	history := &iocache.MockHistoryStore{}
	history.On("RecordSnapshot", mock.MatchedBy(func(rec schema.SnapshotRecord) bool {
		return rec.RunKey == "run-1" && rec.CurrentStreak == 3 && rec.SkippedEntries == 1
	})).Return(int64(7), nil)
	history.On("RecordGridCells", int64(7), mock.MatchedBy(func(cells []schema.ContributionCell) bool {
		return len(cells) == 7
	})).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	run, err := GetRunResults(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.RunKey)
	assert.Equal(t, int64(7), run.SnapshotID)
	history.AssertExpectations(t)
}

func TestGetRunResults_HistoryFailureIsNotFatal(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig(t)

	history := &iocache.MockHistoryStore{}
	history.On("RecordSnapshot", mock.Anything).Return(int64(0), errors.New("disk full"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	run, err := GetRunResults(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Snapshot.CurrentStreak)
	assert.Zero(t, run.SnapshotID)
	history.AssertNotCalled(t, "RecordGridCells", mock.Anything, mock.Anything)
}

func TestGetRunResults_Errors(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	t.Run("no source", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Source = ""
		_, err := GetRunResults(ctx, cfg, noStores())
		assert.ErrorIs(t, err, journal.ErrNoSource)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Source = filepath.Join(t.TempDir(), "missing.jsonl")
		_, err := GetRunResults(ctx, cfg, noStores())
		assert.Error(t, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.WeekStart = "friday"
		_, err := GetRunResults(ctx, cfg, noStores())
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("invalid range", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GridRange = schema.GridRange{Amount: 1, Unit: "fortnight"}
		_, err := GetRunResults(ctx, cfg, noStores())
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestComputeRun_StaticSource(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig(t)
	cfg.GridRange = schema.GridRange{YearToDate: true}
	src := journal.FromTimestamps("request", []string{"2024-01-10T08:00:00Z", "2024-01-15T08:00:00Z"})

	run, err := ComputeRun(ctx, src, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Snapshot.CurrentStreak)
	assert.Equal(t, 1, run.Snapshot.LongestStreak)
	assert.Equal(t, 2, run.Snapshot.TotalActiveDays)
	assert.Len(t, run.Grid.Cells, 15)
}

func TestExecuteCommands(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	executors := map[string]ExecutorFunc{
		"snapshot": ExecuteSnapshot,
		"grid":     ExecuteGrid,
		"message":  ExecuteMessage,
	}
	for name, exec := range executors {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.OutputFile = filepath.Join(t.TempDir(), name+".json")
			require.NoError(t, exec(ctx, cfg, noStores()))

			info, err := os.Stat(cfg.OutputFile)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestExecuteStreakMessage(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputFile = filepath.Join(t.TempDir(), "message.json")
	require.NoError(t, ExecuteStreakMessage(cfg, 45))

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Legendary reflection streak!")

	assert.Error(t, ExecuteStreakMessage(cfg, -1))

	cfg.Tiers = nil
	assert.ErrorIs(t, ExecuteStreakMessage(cfg, 3), ErrInvalidTiers)
}

func TestExecuteRemind(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	t.Run("written today", func(t *testing.T) {
		n := &notify.MockNotifier{}
		require.NoError(t, ExecuteRemind(ctx, testConfig(t), noStores(), n))
		n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("streak at risk", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.FixedNow = time.Date(2024, 1, 16, 18, 0, 0, 0, time.UTC)

		n := &notify.MockNotifier{}
		n.On("Notify", mock.Anything, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "3 days")
		})).Return(nil)
		require.NoError(t, ExecuteRemind(ctx, cfg, noStores(), n))
		n.AssertExpectations(t)
	})
}

func TestGetTimestampResults(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig(t)

	run, err := GetTimestampResults(ctx, cfg, nil, []string{"2024-01-15T08:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "static:request", run.Source)
	assert.Equal(t, 1, run.Snapshot.CurrentStreak)

	// an empty list is still an explicit, empty journal
	run, err = GetTimestampResults(ctx, cfg, nil, []string{})
	require.NoError(t, err)
	assert.Zero(t, run.Snapshot.TotalEntries)

	run, err = GetTimestampResults(ctx, cfg, noStores(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Snapshot.CurrentStreak)
}
