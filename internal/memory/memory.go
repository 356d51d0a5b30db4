package memory

// Package memory keeps per-user session state: conversation history and
// a short list of recently uploaded files and images. Entries are
// capped, oldest dropped first.

import (
	"context"
	"time"

	"docassist/internal/model"
)

// FileKind distinguishes the two memory lists.
type FileKind string

const (
	KindDocument FileKind = "document"
	KindImage    FileKind = "image"
)

// FileInfo is one remembered upload.
type FileInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Snapshot is the full session memory for one user.
type Snapshot struct {
	History   []model.ChatTurn `json:"history"`
	Documents []FileInfo       `json:"documents"`
	Images    []FileInfo       `json:"images"`
}

// Store is the session memory contract.
type Store interface {
	// AppendHistory records one conversation turn, trimming to the cap.
	AppendHistory(ctx context.Context, userID string, turn model.ChatTurn) error
	// History returns the retained conversation turns, oldest first.
	History(ctx context.Context, userID string) ([]model.ChatTurn, error)
	// SaveFile records an upload under the given kind, trimming to the cap.
	SaveFile(ctx context.Context, userID string, kind FileKind, info FileInfo) error
	// Snapshot returns everything remembered for the user.
	Snapshot(ctx context.Context, userID string) (*Snapshot, error)
	// Context renders the remembered uploads as a prompt-ready summary.
	// Empty memory yields an empty string.
	Context(ctx context.Context, userID string) (string, error)
	// Clear drops the user's conversation history (new game / new topic).
	Clear(ctx context.Context, userID string) error
}
