package proofread

import (
	"context"
	"log/slog"
	"strings"

	"github.com/youngsunson/updatev2/internal/document"
)

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Extractor reads the text scope of a run from the host document.
type Extractor struct {
	docs document.Service
}

func NewExtractor(docs document.Service) *Extractor {
	return &Extractor{docs: docs}
}

// Extract returns the selection when it has visible text, the whole body
// otherwise. Host failures yield "" which callers treat as nothing to analyze.
func (e *Extractor) Extract(ctx context.Context) string {
	text, empty, err := e.docs.Selection(ctx)
	if err != nil {
		slog.WarnContext(ctx, "reading selection failed, falling back to body", "error", err)
		empty = true
	}

	if empty || strings.TrimSpace(text) == "" {
		text, err = e.docs.Body(ctx)
		if err != nil {
			slog.WarnContext(ctx, "reading document body failed", "error", err)
			return ""
		}
	}

	return newlineReplacer.Replace(text)
}
