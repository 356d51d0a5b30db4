package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	genaiMocks "docassist/internal/genai/mocks"
	"docassist/internal/memory"
	memoryMocks "docassist/internal/memory/mocks"
	"docassist/internal/model"
	"docassist/internal/prompt"
)

func TestChatService_Chat(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     string
		message    string
		setupMocks func(mGen *genaiMocks.MockGenerator, mMem *memoryMocks.MockStore)
		wantErr    error
		wantReply  string
	}{
		{
			name:    "happy path with history and memory",
			userID:  "user-1",
			message: "what did my last report say?",
			setupMocks: func(mGen *genaiMocks.MockGenerator, mMem *memoryMocks.MockStore) {
				mMem.On("History", ctx, "user-1").Return([]model.ChatTurn{
					{Role: "user", Content: "hi"},
					{Role: "assistant", Content: "hello"},
				}, nil)
				mMem.On("Context", ctx, "user-1").Return("Saved documents:\n1. report.pdf", nil)
				mGen.On("GenerateText", ctx, mock.MatchedBy(func(s string) bool {
					return strings.Contains(s, "USER MEMORY:") &&
						strings.Contains(s, "User: hi") &&
						strings.HasSuffix(s, "Assistant:")
				})).Return("it summarized Q2 revenue", nil)
				mMem.On("AppendHistory", ctx, "user-1", model.ChatTurn{Role: "user", Content: "what did my last report say?"}).Return(nil)
				mMem.On("AppendHistory", ctx, "user-1", model.ChatTurn{Role: "assistant", Content: "it summarized Q2 revenue"}).Return(nil)
			},
			wantReply: "it summarized Q2 revenue",
		},
		{
			name:       "validation - missing user",
			userID:     "",
			message:    "hello",
			setupMocks: func(mGen *genaiMocks.MockGenerator, mMem *memoryMocks.MockStore) {},
			wantErr:    ErrUserRequired,
		},
		{
			name:    "memory failure degrades to empty context",
			userID:  "user-1",
			message: "hello",
			setupMocks: func(mGen *genaiMocks.MockGenerator, mMem *memoryMocks.MockStore) {
				mMem.On("History", ctx, "user-1").Return(nil, errors.New("redis down"))
				mMem.On("Context", ctx, "user-1").Return("", errors.New("redis down"))
				mGen.On("GenerateText", ctx, mock.MatchedBy(func(s string) bool {
					return !strings.Contains(s, "USER MEMORY:")
				})).Return("hi there", nil)
				mMem.On("AppendHistory", ctx, "user-1", mock.Anything).Return(nil).Twice()
			},
			wantReply: "hi there",
		},
		{
			name:    "generation error classified",
			userID:  "user-1",
			message: "hello",
			setupMocks: func(mGen *genaiMocks.MockGenerator, mMem *memoryMocks.MockStore) {
				mMem.On("History", ctx, "user-1").Return(nil, nil)
				mMem.On("Context", ctx, "user-1").Return("", nil)
				mGen.On("GenerateText", ctx, mock.Anything).Return("", errors.New("quota exceeded"))
			},
			wantErr: ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mGen := new(genaiMocks.MockGenerator)
			mMem := new(memoryMocks.MockStore)
			svc := NewChatService(mGen, mMem, &prompt.Builder{})

			tt.setupMocks(mGen, mMem)

			reply, err := svc.Chat(ctx, tt.userID, tt.message)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantReply, reply)
			}
			mGen.AssertExpectations(t)
			mMem.AssertExpectations(t)
		})
	}
}

func TestChatService_Memory(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mMem := new(memoryMocks.MockStore)
		svc := NewChatService(nil, mMem, &prompt.Builder{})

		snap := &memory.Snapshot{
			Documents: []memory.FileInfo{{Name: "report.pdf"}},
		}
		mMem.On("Snapshot", ctx, "user-1").Return(snap, nil)

		got, err := svc.Memory(ctx, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, snap, got)
		mMem.AssertExpectations(t)
	})

	t.Run("validation - missing user", func(t *testing.T) {
		svc := NewChatService(nil, new(memoryMocks.MockStore), &prompt.Builder{})

		_, err := svc.Memory(ctx, "")
		assert.ErrorIs(t, err, ErrUserRequired)
	})
}

func TestChatService_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mMem := new(memoryMocks.MockStore)
		svc := NewChatService(nil, mMem, &prompt.Builder{})

		mMem.On("Clear", ctx, "user-1").Return(nil)

		assert.NoError(t, svc.Reset(ctx, "user-1"))
		mMem.AssertExpectations(t)
	})

	t.Run("validation - missing user", func(t *testing.T) {
		svc := NewChatService(nil, new(memoryMocks.MockStore), &prompt.Builder{})

		assert.ErrorIs(t, svc.Reset(ctx, ""), ErrUserRequired)
	})
}
