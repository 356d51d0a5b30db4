package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	eventMocks "docassist/internal/events/mocks"
	"docassist/internal/extract"
	genaiMocks "docassist/internal/genai/mocks"
	memoryMocks "docassist/internal/memory/mocks"
	"docassist/internal/model"
	"docassist/internal/prompt"
	repoMocks "docassist/internal/repository/mocks"
	"docassist/internal/storage"
	storeMocks "docassist/internal/storage/mocks"
)

type analyzeMocks struct {
	store     *storeMocks.MockStorage
	repo      *repoMocks.MockDocumentRepository
	generator *genaiMocks.MockGenerator
	sessions  *memoryMocks.MockStore
	producer  *eventMocks.MockProducer
}

func newAnalyzeMocks() *analyzeMocks {
	return &analyzeMocks{
		store:     new(storeMocks.MockStorage),
		repo:      new(repoMocks.MockDocumentRepository),
		generator: new(genaiMocks.MockGenerator),
		sessions:  new(memoryMocks.MockStore),
		producer:  new(eventMocks.MockProducer),
	}
}

func (m *analyzeMocks) assertExpectations(t *testing.T) {
	m.store.AssertExpectations(t)
	m.repo.AssertExpectations(t)
	m.generator.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
	m.producer.AssertExpectations(t)
}

func newAnalyzeService(m *analyzeMocks, maxBytes int64) AnalyzeService {
	return NewAnalyzeService(
		extract.New(),
		m.store,
		m.repo,
		m.generator,
		m.sessions,
		m.producer,
		&prompt.Builder{},
		maxBytes,
	)
}

func TestAnalyzeService_Analyze(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		contentType      string
		size             int64
		userID           string
		maxBytes         int64
		setupMocks       func(m *analyzeMocks) io.Reader
		wantErr          error
		wantErrMsg       string
		checkDoc         func(t *testing.T, doc *model.Document)
	}{
		{
			name:             "happy path",
			originalFilename: "report.txt",
			contentType:      "text/plain",
			size:             11,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/") && strings.HasSuffix(key, ".txt")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Metadata["original-filename"] == "report.txt" &&
						opt.Metadata["user-id"] == "user-1"
				})).Return(storage.ObjectInfo{Key: "uploads/gen.txt", Size: 11}, nil)

				m.repo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.UserID == "user-1" &&
						doc.Filename == "report.txt" &&
						doc.ExtractedText == "hello world"
				})).Return(&model.Document{
					ID:            "doc-1",
					UserID:        "user-1",
					Filename:      "report.txt",
					StoragePath:   "uploads/gen.txt",
					ExtractedText: "hello world",
				}, nil)

				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).Return(nil)
				m.generator.On("GenerateText", ctx, mock.MatchedBy(func(s string) bool {
					return strings.Contains(s, "Document contents:") &&
						strings.Contains(s, "hello world")
				})).Return("a fine report", nil)
				m.repo.On("SetAnalysis", ctx, "doc-1", "a fine report").Return(nil)
				m.sessions.On("AppendHistory", ctx, "user-1", mock.Anything).Return(nil).Twice()
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)

				return strings.NewReader("hello world")
			},
			checkDoc: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "a fine report", doc.Analysis)
				assert.Equal(t, "uploads/gen.txt", doc.StoragePath)
			},
		},
		{
			name:             "validation - nil reader",
			originalFilename: "report.txt",
			userID:           "user-1",
			setupMocks:       func(m *analyzeMocks) io.Reader { return nil },
			wantErr:          ErrReaderNil,
		},
		{
			name:             "validation - missing user",
			originalFilename: "report.txt",
			size:             5,
			setupMocks:       func(m *analyzeMocks) io.Reader { return strings.NewReader("hello") },
			wantErr:          ErrUserRequired,
		},
		{
			name:             "file over declared size cap",
			originalFilename: "big.txt",
			size:             100,
			userID:           "user-1",
			maxBytes:         10,
			setupMocks:       func(m *analyzeMocks) io.Reader { return strings.NewReader("irrelevant") },
			wantErr:          ErrFileTooLarge,
		},
		{
			name:             "file over actual size cap",
			originalFilename: "big.txt",
			size:             0,
			userID:           "user-1",
			maxBytes:         5,
			setupMocks: func(m *analyzeMocks) io.Reader {
				return strings.NewReader("this is longer than five bytes")
			},
			wantErr: ErrFileTooLarge,
		},
		{
			name:             "unsupported extension",
			originalFilename: "archive.zip",
			size:             5,
			userID:           "user-1",
			setupMocks:       func(m *analyzeMocks) io.Reader { return strings.NewReader("hello") },
			wantErr:          ErrUnsupportedFormat,
		},
		{
			name:             "storage error",
			originalFilename: "report.txt",
			size:             5,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return strings.NewReader("hello")
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:             "repository error with rollback",
			originalFilename: "report.txt",
			size:             5,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "uploads/gen.txt"}, nil)
				m.repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", ctx, mock.Anything).Return(nil)
				return strings.NewReader("hello")
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "generation quota error keeps stored document",
			originalFilename: "report.txt",
			size:             5,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "uploads/gen.txt"}, nil)
				m.repo.On("Create", ctx, mock.Anything).Return(&model.Document{ID: "doc-1"}, nil)
				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).Return(nil)
				m.generator.On("GenerateText", ctx, mock.Anything).
					Return("", errors.New("429: quota exceeded"))
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)
				return strings.NewReader("hello")
			},
			wantErr: ErrRateLimited,
		},
		{
			name:             "generation format error classified as unsupported",
			originalFilename: "report.txt",
			size:             5,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "uploads/gen.txt"}, nil)
				m.repo.On("Create", ctx, mock.Anything).Return(&model.Document{ID: "doc-1"}, nil)
				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).Return(nil)
				m.generator.On("GenerateText", ctx, mock.Anything).
					Return("", errors.New("unsupported content Type"))
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)
				return strings.NewReader("hello")
			},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:             "generic generation error",
			originalFilename: "report.txt",
			size:             5,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "uploads/gen.txt"}, nil)
				m.repo.On("Create", ctx, mock.Anything).Return(&model.Document{ID: "doc-1"}, nil)
				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).Return(nil)
				m.generator.On("GenerateText", ctx, mock.Anything).
					Return("", errors.New("connection reset"))
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)
				return strings.NewReader("hello")
			},
			wantErr: ErrGenerationFailed,
		},
		{
			name:             "memory failure does not fail the submission",
			originalFilename: "report.txt",
			size:             5,
			userID:           "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "uploads/gen.txt"}, nil)
				m.repo.On("Create", ctx, mock.Anything).Return(&model.Document{ID: "doc-1"}, nil)
				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).
					Return(errors.New("redis down"))
				m.generator.On("GenerateText", ctx, mock.Anything).Return("done", nil)
				m.repo.On("SetAnalysis", ctx, "doc-1", "done").Return(nil)
				m.sessions.On("AppendHistory", ctx, "user-1", mock.Anything).
					Return(errors.New("redis down"))
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)
				return strings.NewReader("hello")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAnalyzeMocks()
			svc := newAnalyzeService(m, tt.maxBytes)

			r := tt.setupMocks(m)

			doc, err := svc.Analyze(ctx, r, tt.originalFilename, tt.contentType, tt.size, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				if tt.checkDoc != nil {
					tt.checkDoc(t, doc)
				}
			}

			m.assertExpectations(t)
		})
	}
}

func TestAnalyzeService_AnalyzeImage(t *testing.T) {
	ctx := context.Background()
	img := []byte{0x89, 'P', 'N', 'G'}

	tests := []struct {
		name       string
		caption    string
		userID     string
		setupMocks func(m *analyzeMocks) io.Reader
		wantErr    error
		wantRes    string
	}{
		{
			name:    "happy path with caption",
			caption: "a receipt",
			userID:  "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).Return(nil)
				m.generator.On("GenerateVision", ctx, mock.MatchedBy(func(s string) bool {
					return strings.Contains(s, "a receipt")
				}), img, "image/png").Return("a grocery receipt", nil)
				m.sessions.On("AppendHistory", ctx, "user-1", mock.Anything).Return(nil).Twice()
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)
				return strings.NewReader(string(img))
			},
			wantRes: "a grocery receipt",
		},
		{
			name:       "validation - missing user",
			setupMocks: func(m *analyzeMocks) io.Reader { return strings.NewReader(string(img)) },
			wantErr:    ErrUserRequired,
		},
		{
			name:   "vision error classified",
			userID: "user-1",
			setupMocks: func(m *analyzeMocks) io.Reader {
				m.sessions.On("SaveFile", ctx, "user-1", mock.Anything, mock.Anything).Return(nil)
				m.generator.On("GenerateVision", ctx, mock.Anything, img, "image/png").
					Return("", errors.New("quota exhausted"))
				m.producer.On("SendAnalysisEvent", ctx, mock.Anything).Return(nil)
				return strings.NewReader(string(img))
			},
			wantErr: ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAnalyzeMocks()
			svc := newAnalyzeService(m, 0)

			r := tt.setupMocks(m)

			res, err := svc.AnalyzeImage(ctx, r, "photo.png", "image/png", int64(len(img)), tt.userID, tt.caption)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantRes, res)
			}

			m.assertExpectations(t)
		})
	}
}
