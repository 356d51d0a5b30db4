package service

import "errors"

var (
	ErrIDRequired   = errors.New("id is required")
	ErrUserRequired = errors.New("user_id is required")
	ErrNotFound     = errors.New("document not found")
	ErrReaderNil    = errors.New("reader is nil")

	// ErrUnsupportedFormat covers unrecognized extensions, failed
	// extraction, and endpoint errors classified as format problems.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned when an upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file too large")
	// ErrRateLimited is returned when the generation endpoint reports
	// quota exhaustion.
	ErrRateLimited = errors.New("generation endpoint rate limited")
	// ErrGenerationFailed covers all other generation endpoint failures.
	ErrGenerationFailed = errors.New("generation failed")
)
