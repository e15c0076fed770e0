package journal

import (
	"context"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
	"github.com/stretchr/testify/mock"
)

// MockEntrySource is a mock implementation of EntrySource for testing.
type MockEntrySource struct {
	mock.Mock
}

var _ contract.EntrySource = &MockEntrySource{} // Compile-time check

// Entries implements the EntrySource interface.
func (m *MockEntrySource) Entries(ctx context.Context) ([]schema.Entry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]schema.Entry)
	return entries, args.Error(1)
}

// Fingerprint implements the EntrySource interface.
func (m *MockEntrySource) Fingerprint(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Describe implements the EntrySource interface.
func (m *MockEntrySource) Describe() string {
	args := m.Called()
	return args.String(0)
}

// Close implements the EntrySource interface.
func (m *MockEntrySource) Close() error {
	args := m.Called()
	return args.Error(0)
}
