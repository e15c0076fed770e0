package notify

import "github.com/stretchr/testify/mock"

// MockNotifier is a mock implementation of Notifier for testing.
type MockNotifier struct {
	mock.Mock
}

var _ Notifier = &MockNotifier{} // Compile-time check

// Notify implements the Notifier interface.
func (m *MockNotifier) Notify(title, message string) error {
	args := m.Called(title, message)
	return args.Error(0)
}
