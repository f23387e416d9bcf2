package assistant

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClipboard is a testify mock of Clipboard.
type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteAll(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

// MockOpener is a testify mock of Opener.
type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockCompleter is a testify mock of Completer.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}
