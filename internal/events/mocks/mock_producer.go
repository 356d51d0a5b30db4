package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docassist/internal/events"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) SendAnalysisEvent(ctx context.Context, event events.AnalysisEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}
