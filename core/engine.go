package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/streakline/core/agg"
	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// ErrInvalidOptions is returned when ComputeOptions cannot drive a computation.
var ErrInvalidOptions = errors.New("invalid compute options")

// ComputeOptions carries everything a computation depends on besides the entries.
// One value is used for a whole computation so every component agrees on today.
type ComputeOptions struct {
	Now       time.Time
	Location  *time.Location
	WeekStart schema.WeekStart
	Tiers     []schema.MotivationTier
}

// Validate reports the first reason the options cannot be used.
func (o ComputeOptions) Validate() error {
	if o.Now.IsZero() {
		return fmt.Errorf("%w: now must be set", ErrInvalidOptions)
	}
	if o.Location == nil {
		return fmt.Errorf("%w: location must be set", ErrInvalidOptions)
	}
	if _, ok := schema.ValidWeekStarts[o.WeekStart]; !ok {
		return fmt.Errorf("%w: unknown week start %q", ErrInvalidOptions, o.WeekStart)
	}
	if err := ValidateTiers(o.Tiers); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Today is the calendar date of Now in Location.
func (o ComputeOptions) Today() schema.CalendarDate {
	return schema.DateOf(o.Now, o.Location)
}

// OptionsFromConfig reads the clock once and copies the engine settings from cfg.
func OptionsFromConfig(cfg *contract.Config) ComputeOptions {
	return ComputeOptions{
		Now:       cfg.CurrentTime(),
		Location:  cfg.Location,
		WeekStart: cfg.WeekStart,
		Tiers:     cfg.Tiers,
	}
}

// ComputeSnapshot normalizes the entries and derives the full dashboard snapshot.
func ComputeSnapshot(entries []schema.Entry, opts ComputeOptions) (schema.Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return schema.Snapshot{}, err
	}
	norm, err := agg.Normalize(entries, opts.Location)
	if err != nil {
		return schema.Snapshot{}, err
	}
	return SnapshotFromActivity(norm, opts)
}

// SnapshotFromActivity derives the snapshot from already normalized activity.
func SnapshotFromActivity(norm schema.NormalizeResult, opts ComputeOptions) (schema.Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return schema.Snapshot{}, err
	}

	streaks := CalculateStreaks(norm.Activity, opts.Now, opts.Location)
	periods, err := AggregatePeriods(norm.Activity, opts.Now, opts.Location, opts.WeekStart)
	if err != nil {
		return schema.Snapshot{}, err
	}

	return schema.Snapshot{
		StreakSnapshot: schema.StreakSnapshot{
			CurrentStreak:    streaks.Current,
			LongestStreak:    streaks.Longest,
			TotalActiveDays:  periods.TotalActiveDays,
			EntriesThisWeek:  periods.EntriesThisWeek,
			EntriesThisMonth: periods.EntriesThisMonth,
			LastActiveDate:   streaks.LastActive,
		},
		Message:        SelectMessage(streaks.Current, opts.Tiers),
		WeeklyProgress: WeeklyProgress(norm.Activity, opts.Today()),
		Skipped:        norm.Skipped,
		TotalEntries:   norm.TotalEntries,
		ComputedAt:     opts.Now,
		Timezone:       opts.Location.String(),
		WeekStart:      opts.WeekStart,
	}, nil
}

// ComputeGrid normalizes the entries and builds the contribution grid for r.
func ComputeGrid(entries []schema.Entry, r schema.GridRange, opts ComputeOptions) (schema.ContributionGrid, error) {
	if err := opts.Validate(); err != nil {
		return schema.ContributionGrid{}, err
	}
	norm, err := agg.Normalize(entries, opts.Location)
	if err != nil {
		return schema.ContributionGrid{}, err
	}
	return GridFromActivity(norm.Activity, r, opts)
}

// GridFromActivity resolves r against today and builds the grid.
func GridFromActivity(activity schema.ActivityMap, r schema.GridRange, opts ComputeOptions) (schema.ContributionGrid, error) {
	if opts.Location == nil {
		return schema.ContributionGrid{}, fmt.Errorf("%w: location must be set", ErrInvalidOptions)
	}
	if opts.Now.IsZero() && !r.IsExplicit() {
		return schema.ContributionGrid{}, fmt.Errorf("%w: now must be set for a relative range", ErrInvalidOptions)
	}
	start, end, err := ResolveGridRange(r, opts.Today())
	if err != nil {
		return schema.ContributionGrid{}, err
	}
	return BuildContributionGrid(activity, start, end)
}
