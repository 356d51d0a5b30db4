package service

import (
	"context"
	"log/slog"

	"docassist/internal/genai"
	"docassist/internal/memory"
	"docassist/internal/model"
	"docassist/internal/prompt"
)

// ChatService generates conversational responses using the user's
// session history and remembered uploads as context.
type ChatService interface {
	// Chat answers one message, recording both turns in history.
	Chat(ctx context.Context, userID, message string) (string, error)

	// Memory returns everything remembered for the user.
	Memory(ctx context.Context, userID string) (*memory.Snapshot, error)

	// Reset clears the user's conversation history; remembered files
	// are kept.
	Reset(ctx context.Context, userID string) error
}

type chatService struct {
	generator genai.Generator
	sessions  memory.Store
	prompts   *prompt.Builder
}

// NewChatService constructs a new ChatService.
func NewChatService(generator genai.Generator, sessions memory.Store, prompts *prompt.Builder) ChatService {
	return &chatService{generator: generator, sessions: sessions, prompts: prompts}
}

func (s *chatService) Chat(ctx context.Context, userID, message string) (string, error) {
	if userID == "" {
		return "", ErrUserRequired
	}

	history, err := s.sessions.History(ctx, userID)
	if err != nil {
		slog.Warn("failed to load history", "user_id", userID, "error", err)
		history = nil
	}
	memoryContext, err := s.sessions.Context(ctx, userID)
	if err != nil {
		slog.Warn("failed to load memory context", "user_id", userID, "error", err)
		memoryContext = ""
	}

	contextString := s.prompts.Chat(memoryContext, history, message)
	reply, err := s.generator.GenerateText(ctx, contextString)
	if err != nil {
		return "", classifyGeneration(err)
	}

	for _, turn := range []model.ChatTurn{
		{Role: "user", Content: message},
		{Role: "assistant", Content: reply},
	} {
		if err := s.sessions.AppendHistory(ctx, userID, turn); err != nil {
			slog.Warn("failed to append history", "user_id", userID, "error", err)
			break
		}
	}

	return reply, nil
}

func (s *chatService) Memory(ctx context.Context, userID string) (*memory.Snapshot, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.sessions.Snapshot(ctx, userID)
}

func (s *chatService) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.sessions.Clear(ctx, userID)
}
