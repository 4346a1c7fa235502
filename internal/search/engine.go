// Package search implements keyword search over the document catalog by
// linear scan of filenames and extracted text.
package search

import (
	"context"
	"errors"
	"strings"

	"docsearch-backend/internal/documents"
	"docsearch-backend/internal/shared/metrics"
)

// Corpus is the read side of the document service the engine scans.
type Corpus interface {
	List(ctx context.Context) ([]documents.Document, error)
	OpenText(ctx context.Context, id string) (documents.Document, string, error)
}

// Engine answers corpus and per-document line searches.
type Engine struct {
	Corpus Corpus
}

// NewEngine constructs an Engine.
func NewEngine(corpus Corpus) *Engine {
	return &Engine{Corpus: corpus}
}

// Search returns documents whose filename or extracted text contains keyword,
// case-insensitively, in catalog order. A blank keyword matches nothing; any
// other keyword is matched as given, surrounding whitespace included.
func (e *Engine) Search(ctx context.Context, keyword string) ([]documents.Document, error) {
	metrics.IncSearchRequests()
	if strings.TrimSpace(keyword) == "" {
		return []documents.Document{}, nil
	}
	needle := strings.ToLower(keyword)

	docs, err := e.Corpus.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []documents.Document{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(doc.FileName), needle) {
			out = append(out, doc)
			continue
		}
		_, text, err := e.Corpus.OpenText(ctx, doc.ID)
		if errors.Is(err, documents.ErrNotFound) {
			// deleted since the listing was taken
			continue
		}
		if err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(text), needle) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// SearchLines returns, in order, the lines of one document's text that contain
// keyword case-insensitively. Lines are returned verbatim without terminators.
// An empty keyword is contained in every line.
func (e *Engine) SearchLines(ctx context.Context, id, keyword string) ([]string, error) {
	metrics.IncSearchRequests()
	_, text, err := e.Corpus.OpenText(ctx, id)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	out := []string{}
	for _, line := range SplitLines(text) {
		if strings.Contains(strings.ToLower(line), needle) {
			out = append(out, line)
		}
	}
	return out, nil
}

// SplitLines splits on \n, \r\n and \r. A trailing terminator does not yield an empty final line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
