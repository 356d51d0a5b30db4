package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docassist/internal/memory"
	"docassist/internal/model"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) AppendHistory(ctx context.Context, userID string, turn model.ChatTurn) error {
	args := m.Called(ctx, userID, turn)
	return args.Error(0)
}

func (m *MockStore) History(ctx context.Context, userID string) ([]model.ChatTurn, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatTurn), args.Error(1)
}

func (m *MockStore) SaveFile(ctx context.Context, userID string, kind memory.FileKind, info memory.FileInfo) error {
	args := m.Called(ctx, userID, kind, info)
	return args.Error(0)
}

func (m *MockStore) Snapshot(ctx context.Context, userID string) (*memory.Snapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*memory.Snapshot), args.Error(1)
}

func (m *MockStore) Context(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
