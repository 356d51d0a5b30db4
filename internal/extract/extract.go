package extract

// Package extract pulls plain text out of uploaded document files.
// Dispatch is by file extension; binary formats are decoded in-process
// so that only text ever leaves this package.

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when the extension is not recognized
// or the file content cannot be decoded as the format its extension claims.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Extractor extracts plain text from document files.
type Extractor struct{}

// New returns a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedFormats returns the file extensions this extractor can handle.
func (e *Extractor) SupportedFormats() []string {
	return []string{".pdf", ".docx", ".doc", ".txt", ".md"}
}

// Text extracts the text content of the named file.
// The extension of filename selects the decoder:
//   - .pdf        — PDF text layer
//   - .docx, .doc — Word (zip archive; .doc falls back to printable salvage)
//   - .txt, .md   — plain decode, invalid UTF-8 dropped
//
// Any other extension, or content that yields no text, fails with
// ErrUnsupportedFormat.
func (e *Extractor) Text(content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDocx(content)
	case ".doc":
		text, err = extractDoc(content)
	case ".txt", ".md":
		text, err = extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%w: extract %s: %v", ErrUnsupportedFormat, ext, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content in %s file", ErrUnsupportedFormat, ext)
	}
	return text, nil
}
