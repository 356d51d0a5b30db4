package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docassist/internal/events"
	"docassist/internal/genai"
	"docassist/internal/memory"
	"docassist/internal/model"
	"docassist/internal/prompt"
	"docassist/internal/repository"
	"docassist/internal/storage"
)

// TextExtractor extracts plain text from raw file bytes.
// Satisfied by extract.Extractor.
type TextExtractor interface {
	Text(content []byte, filename string) (string, error)
}

// AnalyzeService runs the full submission flow: extract text, store the
// raw file, persist metadata, forward the context string to the
// generation endpoint, and record the outcome.
type AnalyzeService interface {
	// Analyze processes one document submission for a user.
	// The stored document row survives a generation failure; the error
	// is scoped to the single submission.
	Analyze(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID string) (*model.Document, error)

	// AnalyzeImage processes one image submission through the vision
	// path. The image travels as a dedicated inline-image part; this is
	// the only place binary content reaches the endpoint.
	AnalyzeImage(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID, caption string) (string, error)
}

type analyzeService struct {
	extractor TextExtractor
	store     storage.Storage
	repo      repository.DocumentRepository
	generator genai.Generator
	sessions  memory.Store
	producer  events.Producer
	prompts   *prompt.Builder
	maxBytes  int64
}

// NewAnalyzeService constructs the submission pipeline.
func NewAnalyzeService(
	extractor TextExtractor,
	store storage.Storage,
	repo repository.DocumentRepository,
	generator genai.Generator,
	sessions memory.Store,
	producer events.Producer,
	prompts *prompt.Builder,
	maxBytes int64,
) AnalyzeService {
	return &analyzeService{
		extractor: extractor,
		store:     store,
		repo:      repo,
		generator: generator,
		sessions:  sessions,
		producer:  producer,
		prompts:   prompts,
		maxBytes:  maxBytes,
	}
}

func (s *analyzeService) Analyze(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID string) (*model.Document, error) {
	content, err := s.readUpload(r, size)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrUserRequired
	}

	// Extraction failure and unknown extensions surface the same way.
	text, err := s.extractor.Text(content, originalFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	doc, err := s.persist(ctx, content, originalFilename, contentType, userID, text)
	if err != nil {
		return nil, err
	}

	s.rememberFile(ctx, userID, memory.KindDocument, originalFilename, describe(text), int64(len(content)))

	// Only the extracted context string is forwarded; raw bytes never
	// reach the generation endpoint.
	contextString := s.prompts.Document(originalFilename, text)
	analysis, err := s.generator.GenerateText(ctx, contextString)
	if err != nil {
		s.publish(ctx, doc.ID, userID, originalFilename, "document", "failed", err.Error())
		return nil, classifyGeneration(err)
	}

	if err := s.repo.SetAnalysis(ctx, doc.ID, analysis); err != nil {
		slog.Warn("failed to persist analysis", "document_id", doc.ID, "error", err)
	}
	doc.Analysis = analysis

	s.rememberTurns(ctx, userID,
		model.ChatTurn{Role: "user", Content: "Uploaded document '" + originalFilename + "'"},
		model.ChatTurn{Role: "assistant", Content: analysis},
	)
	s.publish(ctx, doc.ID, userID, originalFilename, "document", "completed", "")

	return doc, nil
}

func (s *analyzeService) AnalyzeImage(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID, caption string) (string, error) {
	content, err := s.readUpload(r, size)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrUserRequired
	}

	s.rememberFile(ctx, userID, memory.KindImage, originalFilename, caption, int64(len(content)))

	analysis, err := s.generator.GenerateVision(ctx, s.prompts.Image(caption), content, contentType)
	if err != nil {
		s.publish(ctx, "", userID, originalFilename, "image", "failed", err.Error())
		return "", classifyGeneration(err)
	}

	turn := "Sent an image"
	if caption != "" {
		turn += " with description: " + caption
	}
	s.rememberTurns(ctx, userID,
		model.ChatTurn{Role: "user", Content: turn},
		model.ChatTurn{Role: "assistant", Content: analysis},
	)
	s.publish(ctx, "", userID, originalFilename, "image", "completed", "")

	return analysis, nil
}

// readUpload enforces the size cap before buffering the submission.
func (s *analyzeService) readUpload(r io.Reader, size int64) ([]byte, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, s.maxBytes)
	}

	limit := io.Reader(r)
	if s.maxBytes > 0 {
		limit = io.LimitReader(r, s.maxBytes+1)
	}
	content, err := io.ReadAll(limit)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	return content, nil
}

// persist uploads the raw bytes and stores the metadata row, rolling the
// object back if the insert fails.
func (s *analyzeService) persist(ctx context.Context, content []byte, originalFilename, contentType, userID, text string) (*model.Document, error) {
	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("uploads", genName))

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"user-id":           userID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:            uuid.New().String(),
		UserID:        userID,
		Filename:      originalFilename,
		StoragePath:   objInfo.Key,
		Size:          objInfo.Size,
		ContentType:   contentType,
		ExtractedText: text,
		CreatedAt:     time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// rememberFile and rememberTurns are best-effort: session memory loss is
// logged, never fatal to the submission.
func (s *analyzeService) rememberFile(ctx context.Context, userID string, kind memory.FileKind, name, description string, size int64) {
	err := s.sessions.SaveFile(ctx, userID, kind, memory.FileInfo{
		Name:        name,
		Description: description,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to save file to session memory", "user_id", userID, "error", err)
	}
}

func (s *analyzeService) rememberTurns(ctx context.Context, userID string, turns ...model.ChatTurn) {
	for _, turn := range turns {
		if err := s.sessions.AppendHistory(ctx, userID, turn); err != nil {
			slog.Warn("failed to append history", "user_id", userID, "error", err)
			return
		}
	}
}

func (s *analyzeService) publish(ctx context.Context, docID, userID, filename, kind, status, reason string) {
	err := s.producer.SendAnalysisEvent(ctx, events.AnalysisEvent{
		DocumentID: docID,
		UserID:     userID,
		Filename:   filename,
		Kind:       kind,
		Status:     status,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to publish analysis event", "filename", filename, "error", err)
	}
}

// classifyGeneration maps an endpoint error to the service sentinel the
// handlers report on.
func classifyGeneration(err error) error {
	switch genai.Classify(err) {
	case genai.KindQuota:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case genai.KindFormat:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	default:
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
}

const descriptionPreview = 200

// describe builds the short memory description from extracted text.
func describe(text string) string {
	runes := []rune(text)
	if len(runes) <= descriptionPreview {
		return text
	}
	return string(runes[:descriptionPreview]) + "..."
}
