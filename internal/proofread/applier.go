package proofread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
)

// Applier writes accepted suggestions into the document and keeps the
// Suggestion Store consistent with the edit.
type Applier struct {
	docs  document.Service
	store *Store
}

func NewApplier(docs document.Service, store *Store) *Applier {
	return &Applier{docs: docs, store: store}
}

// Apply replaces every whole-word occurrence of oldText with newText, clears
// their highlights and purges oldText from every category. It returns false
// with ErrMutationNotFound when nothing matched; the store is untouched then.
func (a *Applier) Apply(ctx context.Context, oldText, newText string) (bool, error) {
	subject := strings.TrimSpace(oldText)
	if subject == "" {
		return false, fmt.Errorf("%w: empty subject", ErrMutationNotFound)
	}

	spans, err := a.docs.Search(ctx, subject, document.ReplaceSearch)
	if err != nil {
		slog.WarnContext(ctx, "replace search failed", "subject", subject, "error", err)
		spans = nil
	}
	if len(spans) == 0 {
		return false, fmt.Errorf("%w: %q", ErrMutationNotFound, subject)
	}

	replaced := 0
	width := len([]rune(newText))
	for i := len(spans) - 1; i >= 0; i-- {
		span := spans[i]
		if err := a.docs.ReplaceSpan(ctx, span, newText); err != nil {
			slog.WarnContext(ctx, "replace failed", "subject", subject, "start", span.Start, "error", err)
			continue
		}
		replaced++

		rewritten := document.Span{Start: span.Start, End: span.Start + width}
		if err := a.docs.SetHighlight(ctx, rewritten, ""); err != nil {
			slog.DebugContext(ctx, "clearing highlight failed", "start", span.Start, "error", err)
		}
	}
	if replaced == 0 {
		return false, fmt.Errorf("%w: %q could not be rewritten", ErrMutationNotFound, subject)
	}

	purged := a.store.Purge(subject)
	slog.InfoContext(ctx, "suggestion applied",
		"occurrences", replaced,
		"purged", purged)
	return true, nil
}

// Dismiss drops text from one category without touching the document.
func (a *Applier) Dismiss(ctx context.Context, category model.Category, text string) error {
	removed, err := a.store.Dismiss(category, text)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "suggestion dismissed", "category", category, "removed", removed)
	return nil
}
