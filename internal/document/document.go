// Package document defines the host document contract the proofreading core
// consumes, plus an in-memory host used by the HTTP sessions and the CLI.
package document

import (
	"context"
	"errors"
)

// ErrSpanOutOfRange is returned when a span no longer fits the document body.
var ErrSpanOutOfRange = errors.New("span out of range")

// Span addresses [Start, End) in rune offsets of the document body.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) Len() int {
	return s.End - s.Start
}

// SearchOptions mirrors the host editor's search flags.
type SearchOptions struct {
	CaseSensitive    bool
	WholeWord        bool
	IgnoreWhitespace bool
}

// HighlightSearch is used to mark suggestion subjects: loose enough to find the
// text wherever the model copied it from.
var HighlightSearch = SearchOptions{
	CaseSensitive:    false,
	WholeWord:        false,
	IgnoreWhitespace: true,
}

// ReplaceSearch is used to apply an accepted suggestion. Whole-word matching
// keeps a short subject from being rewritten inside a longer token.
var ReplaceSearch = SearchOptions{
	CaseSensitive:    true,
	WholeWord:        true,
	IgnoreWhitespace: true,
}

// Service is the host document. Every call may fail; callers treat failures
// as no-ops.
type Service interface {
	Selection(ctx context.Context) (text string, empty bool, err error)
	Body(ctx context.Context) (string, error)
	Search(ctx context.Context, text string, opts SearchOptions) ([]Span, error)
	// SetHighlight colours span; an empty color removes the highlight.
	SetHighlight(ctx context.Context, span Span, color string) error
	ReplaceSpan(ctx context.Context, span Span, newText string) error
	ClearAllHighlights(ctx context.Context) error
}
