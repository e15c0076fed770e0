package journal

import (
	"context"
	"slices"
	"strings"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// StaticSource serves a fixed set of entries held in memory.
type StaticSource struct {
	name    string
	entries []schema.Entry
}

var _ contract.EntrySource = &StaticSource{} // Compile-time check

// NewStaticSource creates a source over entries. The slice is copied.
func NewStaticSource(name string, entries []schema.Entry) *StaticSource {
	return &StaticSource{name: name, entries: slices.Clone(entries)}
}

// FromTimestamps creates a source with one entry per raw timestamp.
func FromTimestamps(name string, timestamps []string) *StaticSource {
	entries := make([]schema.Entry, len(timestamps))
	for i, ts := range timestamps {
		entries[i] = schema.Entry{CreatedAt: ts}
	}
	return &StaticSource{name: name, entries: entries}
}

// Entries implements the EntrySource interface.
func (s *StaticSource) Entries(_ context.Context) ([]schema.Entry, error) {
	return slices.Clone(s.entries), nil
}

// Fingerprint implements the EntrySource interface.
func (s *StaticSource) Fingerprint(_ context.Context) (string, error) {
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(e.ID)
		b.WriteByte(0)
		b.WriteString(e.CreatedAt)
		b.WriteByte('\n')
	}
	return hashBytes([]byte(b.String())), nil
}

// Describe implements the EntrySource interface.
func (s *StaticSource) Describe() string {
	return "static:" + s.name
}

// Close implements the EntrySource interface.
func (s *StaticSource) Close() error {
	return nil
}
