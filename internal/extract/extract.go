// Package extract converts uploaded PDF and DOCX payloads into plain text.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Kind is the document format recognized by the extractor.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindUnknown Kind = "unknown"
)

// Result is the outcome of a successful extraction.
type Result struct {
	Text     string
	Kind     Kind
	Duration time.Duration
}

// ExtractionError reports corrupt input for a recognized kind.
type ExtractionError struct {
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor is stateless and safe for concurrent use.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of data. An unrecognized kind yields an empty
// result and no error.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	kind := DetectKind(mimeType, fileName, data)

	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data)
	default:
		return Result{Kind: KindUnknown, Duration: time.Since(start)}, nil
	}
	if err != nil {
		return Result{Kind: kind, Duration: time.Since(start)}, &ExtractionError{Kind: kind, Err: err}
	}
	return Result{Text: text, Kind: kind, Duration: time.Since(start)}, nil
}

// recoverParser runs parse and reports a panic inside a third-party parser as an error.
func recoverParser(kind Kind, parse func() (string, error)) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%s parser panic: %v", kind, rec)
		}
	}()
	return parse()
}

// extractPDF concatenates page text in page order, one newline after each page.
func extractPDF(data []byte) (string, error) {
	return recoverParser(KindPDF, func() (string, error) { return readPDF(data) })
}

func readPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	return recoverParser(KindDOCX, func() (string, error) { return readDOCX(data) })
}

func readDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return paragraphText(doc.Editable().GetContent())
}

// DetectKind resolves the document kind from the declared MIME type, falling
// back to content sniffing and the file extension for generic types.
func DetectKind(mimeType, fileName string, data []byte) Kind {
	switch normalizeMimeType(mimeType) {
	case mimePDF:
		return KindPDF
	case mimeDOCX:
		return KindDOCX
	case "", "application/zip", "application/x-zip-compressed", "application/octet-stream":
		return sniffKind(fileName, data)
	default:
		return KindUnknown
	}
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func sniffKind(fileName string, data []byte) Kind {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return KindPDF
	}
	if zipHasWordDocument(data) {
		return KindDOCX
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	default:
		return KindUnknown
	}
}

func zipHasWordDocument(data []byte) bool {
	if len(data) < 4 || !bytes.HasPrefix(data, []byte("PK")) {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
