package proofread

import (
	"context"
	"log/slog"
	"strings"

	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
)

type highlightJob struct {
	subject string
	color   string
}

// highlightQueue collects the subject spans of one decoded batch and colours
// them in batch order. Host failures never surface to the caller.
type highlightQueue struct {
	docs document.Service
	jobs []highlightJob
}

func newHighlightQueue(docs document.Service) *highlightQueue {
	return &highlightQueue{docs: docs}
}

func (q *highlightQueue) add(category model.Category, subject string) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return
	}
	q.jobs = append(q.jobs, highlightJob{subject: subject, color: category.HighlightColor()})
}

// flush highlights every queued subject and returns how many spans were coloured.
func (q *highlightQueue) flush(ctx context.Context) int {
	coloured := 0
	for _, job := range q.jobs {
		if ctx.Err() != nil {
			break
		}

		spans, err := q.docs.Search(ctx, job.subject, document.HighlightSearch)
		if err != nil {
			slog.DebugContext(ctx, "highlight search failed", "subject", job.subject, "error", err)
			continue
		}
		for _, span := range spans {
			if err := q.docs.SetHighlight(ctx, span, job.color); err != nil {
				slog.DebugContext(ctx, "highlight failed", "subject", job.subject, "error", err)
				continue
			}
			coloured++
		}
	}
	q.jobs = nil
	return coloured
}
