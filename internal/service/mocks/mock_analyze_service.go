package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docassist/internal/model"
)

type MockAnalyzeService struct {
	mock.Mock
}

func (m *MockAnalyzeService) Analyze(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID string) (*model.Document, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockAnalyzeService) AnalyzeImage(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID, caption string) (string, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size, userID, caption)
	return args.String(0), args.Error(1)
}
