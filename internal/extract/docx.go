package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// extractDocx decodes a Word .docx archive: the document body lives in
// word/document.xml, text runs in <w:t> elements, one paragraph per <w:p>.
func extractDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}
	return docxBodyText(docXML)
}

// docxBodyText walks the document XML collecting character data inside
// w:t elements and inserting a newline at each paragraph end.
func docxBodyText(docXML []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// extractDoc handles legacy .doc uploads. Files saved by modern Word as
// .doc are often docx archives under the wrong extension, so the zip
// path is tried first. True OLE binaries get a printable-text salvage:
// runs of at least four printable characters are kept.
func extractDoc(content []byte) (string, error) {
	if text, err := extractDocx(content); err == nil {
		return text, nil
	}
	return salvagePrintable(content), nil
}

const minPrintableRun = 4

func salvagePrintable(content []byte) string {
	var sb strings.Builder
	var run []rune
	flush := func() {
		if len(run) >= minPrintableRun {
			sb.WriteString(string(run))
			sb.WriteString("\n")
		}
		run = run[:0]
	}
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		if r != utf8.RuneError && (unicode.IsPrint(r) || r == '\t') {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()
	return sb.String()
}
