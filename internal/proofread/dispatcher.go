package proofread

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/common/logger"
	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
)

// DispatchConfig carries the per-run credential and retry policy.
type DispatchConfig struct {
	APIKey string
	Model  string
	// Attempts per call; transient failures are retried up to this count.
	Attempts int
	Backoff  time.Duration
}

// Dispatcher turns text into typed suggestion batches, one Analysis Service
// call per category, and highlights each batch's subjects. It never touches
// the Suggestion Store.
type Dispatcher struct {
	analyzer llm.Client
	docs     document.Service
	cfg      DispatchConfig
}

func NewDispatcher(analyzer llm.Client, docs document.Service, cfg DispatchConfig) *Dispatcher {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 2
	}
	return &Dispatcher{analyzer: analyzer, docs: docs, cfg: cfg}
}

func (d *Dispatcher) Correctness(ctx context.Context, text string) (*model.CorrectnessBatch, error) {
	raw, err := d.generate(ctx, "correctness", buildCorrectnessPrompt(text), correctnessSchema)
	if err != nil {
		return nil, err
	}
	batch, err := decodeCorrectness(raw)
	if err != nil {
		slog.WarnContext(ctx, "correctness response not decodable",
			"error", err,
			"response", logger.Truncate(raw, 200))
		return nil, err
	}

	q := newHighlightQueue(d.docs)
	for _, s := range batch.Spelling {
		q.add(model.CategorySpelling, s.SubjectText)
	}
	if batch.RegisterMixing != nil {
		for _, item := range batch.RegisterMixing.Items {
			q.add(model.CategoryRegisterMixing, item.SubjectText)
		}
	}
	for _, p := range batch.Punctuation {
		q.add(model.CategoryPunctuation, p.SubjectSentence)
	}
	for _, e := range batch.Euphony {
		q.add(model.CategoryEuphony, e.SubjectText)
	}
	coloured := q.flush(ctx)

	slog.InfoContext(ctx, "correctness batch decoded",
		"spelling", len(batch.Spelling),
		"punctuation", len(batch.Punctuation),
		"euphony", len(batch.Euphony),
		"mixing_detected", batch.RegisterMixing != nil && batch.RegisterMixing.Detected,
		"highlighted", coloured)

	return batch, nil
}

func (d *Dispatcher) Tone(ctx context.Context, text string, tone model.Tone) ([]model.ToneSuggestion, error) {
	raw, err := d.generate(ctx, "tone", buildTonePrompt(text, tone), toneSchema)
	if err != nil {
		return nil, err
	}
	batch, err := decodeTone(raw)
	if err != nil {
		return nil, err
	}

	q := newHighlightQueue(d.docs)
	for _, s := range batch {
		q.add(model.CategoryTone, s.SubjectText)
	}
	q.flush(ctx)

	slog.InfoContext(ctx, "tone batch decoded", "tone", tone, "count", len(batch))
	return batch, nil
}

func (d *Dispatcher) Style(ctx context.Context, text string, register model.Register) ([]model.StyleSuggestion, error) {
	raw, err := d.generate(ctx, "style", buildStylePrompt(text, register), styleSchema)
	if err != nil {
		return nil, err
	}
	batch, err := decodeStyle(raw)
	if err != nil {
		return nil, err
	}

	q := newHighlightQueue(d.docs)
	for _, s := range batch {
		q.add(model.CategoryStyle, s.SubjectText)
	}
	q.flush(ctx)

	slog.InfoContext(ctx, "style batch decoded", "register", register, "count", len(batch))
	return batch, nil
}

// Content is informational only; nothing is highlighted.
func (d *Dispatcher) Content(ctx context.Context, text string) (*model.ContentAnalysis, error) {
	raw, err := d.generate(ctx, "content", buildContentPrompt(text), contentSchema)
	if err != nil {
		return nil, err
	}
	return decodeContent(raw)
}

func (d *Dispatcher) generate(ctx context.Context, schemaName, prompt string, schema any) (string, error) {
	req := llm.Request{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		SchemaName:   schemaName,
		Schema:       schema,
		APIKey:       d.cfg.APIKey,
		Model:        d.cfg.Model,
	}

	var err error
	for attempt := 0; attempt < d.cfg.Attempts; attempt++ {
		var resp *llm.Response
		resp, err = d.analyzer.Generate(ctx, req)
		if err == nil {
			return resp.Content, nil
		}
		if !llm.IsRetryable(ctx, err) {
			return "", fmt.Errorf("%s analysis: %w", schemaName, err)
		}
		slog.WarnContext(ctx, "analysis call retry",
			"schema", schemaName,
			"attempt", attempt+1,
			"error", err)
		if d.cfg.Backoff > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(d.cfg.Backoff << attempt):
			}
		}
	}
	return "", fmt.Errorf("%s analysis after %d attempts: %w", schemaName, d.cfg.Attempts, err)
}
