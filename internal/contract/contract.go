// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/streakline/schema"
)

// EntrySource supplies journal entries to the engine.
// This allows the engine and its surfaces to be tested without files or databases.
type EntrySource interface {
	// Entries returns every entry the source currently holds, in any order.
	Entries(ctx context.Context) ([]schema.Entry, error)

	// Fingerprint returns a value that changes whenever the entry set may have changed.
	Fingerprint(ctx context.Context) (string, error)

	// Describe returns a stable, human-readable identity for the source.
	Describe() string

	// Close releases any underlying resources.
	Close() error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording computed snapshots.
type HistoryStore interface {
	// RecordSnapshot stores a snapshot and returns its unique ID
	RecordSnapshot(record schema.SnapshotRecord) (int64, error)

	// RecordGridCells stores the contribution cells computed alongside a snapshot
	RecordGridCells(snapshotID int64, cells []schema.ContributionCell) error

	// GetAllSnapshots returns every stored snapshot ordered by ID
	GetAllSnapshots() ([]schema.SnapshotRecord, error)

	// GetAllGridCells returns every stored grid cell ordered by snapshot and date
	GetAllGridCells() ([]schema.GridCellRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
