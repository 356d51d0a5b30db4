package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateText(ctx context.Context, contextString string) (string, error) {
	args := m.Called(ctx, contextString)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateVision(ctx context.Context, promptText string, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, promptText, image, mimeType)
	return args.String(0), args.Error(1)
}
