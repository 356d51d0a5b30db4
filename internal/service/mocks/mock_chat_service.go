package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docassist/internal/memory"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Chat(ctx context.Context, userID, message string) (string, error) {
	args := m.Called(ctx, userID, message)
	return args.String(0), args.Error(1)
}

func (m *MockChatService) Memory(ctx context.Context, userID string) (*memory.Snapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*memory.Snapshot), args.Error(1)
}

func (m *MockChatService) Reset(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
