package repository

// Package repository contains data access for documents using SQL only.
// No business logic here — strictly persistence operations.

import (
	"context"

	"docassist/internal/model"
)

// DocumentRepository defines data access for documents.
type DocumentRepository interface {
	// Create inserts a new document record, including any extracted text.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and total rows count.
	// A non-empty UserID in the query restricts results to that user.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// SetAnalysis stores the generation result for an existing document.
	SetAnalysis(ctx context.Context, id, analysis string) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds pagination parameters and an optional user filter.
type PageQuery struct {
	Limit  int
	Offset int
	UserID string
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
