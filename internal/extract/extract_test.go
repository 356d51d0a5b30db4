package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocx assembles a minimal .docx archive containing the given paragraphs.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestText_PlainFormats(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
	}{
		{
			name:     "txt",
			filename: "notes.txt",
			content:  []byte("hello world"),
			want:     "hello world",
		},
		{
			name:     "md passthrough",
			filename: "README.md",
			content:  []byte("# Title\n\nSome *markdown* text."),
			want:     "# Title\n\nSome *markdown* text.",
		},
		{
			name:     "invalid utf8 dropped",
			filename: "broken.txt",
			content:  []byte{'o', 'k', 0xff, 0xfe, '!'},
			want:     "ok!",
		},
		{
			name:     "uppercase extension",
			filename: "NOTES.TXT",
			content:  []byte("case insensitive"),
			want:     "case insensitive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Text(tt.content, tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_Docx(t *testing.T) {
	e := New()
	content := buildDocx(t, "First paragraph.", "Second paragraph.")

	got, err := e.Text(content, "report.docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", got)
}

func TestText_DocFallsBackToDocx(t *testing.T) {
	// Modern Word files renamed to .doc are still zip archives.
	e := New()
	content := buildDocx(t, "Legacy extension, modern file.")

	got, err := e.Text(content, "old.doc")
	require.NoError(t, err)
	assert.Equal(t, "Legacy extension, modern file.", got)
}

func TestText_DocBinarySalvage(t *testing.T) {
	e := New()
	content := append([]byte{0x00, 0x01, 0x02}, []byte("Recoverable sentence here")...)
	content = append(content, 0x00, 0x03)

	got, err := e.Text(content, "ancient.doc")
	require.NoError(t, err)
	assert.Contains(t, got, "Recoverable sentence here")
}

func TestText_UnsupportedExtension(t *testing.T) {
	e := New()

	for _, name := range []string{"archive.zip", "image.png", "noext", "sheet.xlsx"} {
		_, err := e.Text([]byte("content"), name)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestText_CorruptPDF(t *testing.T) {
	e := New()

	_, err := e.Text([]byte("this is not a pdf"), "broken.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestText_CorruptDocx(t *testing.T) {
	e := New()

	_, err := e.Text([]byte("this is not a zip archive"), "broken.docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestText_EmptyContent(t *testing.T) {
	e := New()

	_, err := e.Text([]byte("   \n\t  "), "blank.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSupportedFormats(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{".pdf", ".docx", ".doc", ".txt", ".md"},
		New().SupportedFormats(),
	)
}
