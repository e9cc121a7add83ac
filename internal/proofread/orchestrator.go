package proofread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/youngsunson/updatev2/common/id"
	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/common/logger"
	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
)

type State string

const (
	StateIdle                  State = "idle"
	StateExtracting            State = "extracting"
	StateRunningCorrectness    State = "running_correctness"
	StateRunningTone           State = "running_tone"
	StateRunningStyle          State = "running_style"
	StateRunningContentSummary State = "running_content_summary"
)

const (
	stageCorrectness = "correctness"
	stageTone        = "tone"
	stageStyle       = "style"
	stageContent     = "content"
)

// Credentials is the read-only view of the persisted settings a run needs.
type Credentials interface {
	Credential() string
	ModelID() string
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	Record(ctx context.Context, run *model.AnalysisRun) error
}

type StateListener func(State)

type OrchestratorConfig struct {
	SessionID   int64
	Credentials Credentials
	Recorder    RunRecorder   // optional
	OnState     StateListener // optional
	Attempts    int
	Backoff     time.Duration
}

type RunResult struct {
	RunID       int64                `json:"run_id"`
	Stats       model.Stats          `json:"stats"`
	Status      model.RunStatus      `json:"status"`
	Stages      []model.StageOutcome `json:"stages"`
	Suggestions Snapshot             `json:"suggestions"`
}

// Orchestrator sequences one check: extract, the mandatory correctness pass,
// then the optional tone, style and content passes. A second Run while one is
// active is rejected.
type Orchestrator struct {
	cfg       OrchestratorConfig
	docs      document.Service
	analyzer  llm.Client
	store     *Store
	extractor *Extractor

	mu      sync.Mutex
	state   State
	running bool // a run or an exclusive edit holds the session
}

func NewOrchestrator(cfg OrchestratorConfig, docs document.Service, analyzer llm.Client, store *Store) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		docs:      docs,
		analyzer:  analyzer,
		store:     store,
		extractor: NewExtractor(docs),
		state:     StateIdle,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether a run or an exclusive edit is in progress.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Exclusive runs fn while no check is active and keeps checks out until it
// returns. Document edits and dismissals go through it so there is one writer
// at a time.
func (o *Orchestrator) Exclusive(fn func() error) error {
	if !o.begin() {
		return ErrRunInProgress
	}
	defer o.release()
	return fn()
}

func (o *Orchestrator) Store() *Store {
	return o.store
}

func (o *Orchestrator) Run(ctx context.Context, task model.TaskConfig) (*RunResult, error) {
	if !o.begin() {
		return nil, ErrRunInProgress
	}
	// State stays Idle until the task and credential checks pass.
	defer func() {
		o.setState(StateIdle)
		o.release()
	}()

	task = task.Normalize()
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	apiKey := ""
	modelID := ""
	if o.cfg.Credentials != nil {
		apiKey = strings.TrimSpace(o.cfg.Credentials.Credential())
		modelID = o.cfg.Credentials.ModelID()
	}
	if apiKey == "" {
		return nil, ErrConfigurationMissing
	}
	if modelID == "" {
		modelID = o.analyzer.Model()
	}

	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &o.cfg.SessionID,
		RunID:     &runID,
		Model:     &modelID,
		Component: "proofread.orchestrator",
	})

	sc := logger.StartSpan(ctx, "proofread.run")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.Int64("run_id", runID),
		attribute.String("tone", string(task.Tone)),
		attribute.String("register", string(task.Register)),
	)

	o.setState(StateExtracting)
	text := o.extractor.Extract(ctx)
	if strings.TrimSpace(text) == "" {
		slog.InfoContext(ctx, "nothing to analyze")
		return nil, ErrEmptyScope
	}

	run := &model.AnalysisRun{
		ID:         runID,
		SessionID:  o.cfg.SessionID,
		Model:      modelID,
		Task:       task,
		ScopeChars: len([]rune(text)),
		StartedAt:  time.Now().UTC(),
	}
	slog.InfoContext(ctx, "run started",
		"tone", task.Tone,
		"register", task.Register,
		"scope_chars", run.ScopeChars)

	dispatcher := NewDispatcher(o.analyzer, o.docs, DispatchConfig{
		APIKey:   apiKey,
		Model:    modelID,
		Attempts: o.cfg.Attempts,
		Backoff:  o.cfg.Backoff,
	})

	o.setState(StateRunningCorrectness)
	o.store.Reset()
	if err := o.docs.ClearAllHighlights(ctx); err != nil {
		slog.WarnContext(ctx, "clearing highlights failed", "error", err)
	}

	stageCtx, stageSpan := o.stage(ctx, stageCorrectness)
	batch, err := dispatcher.Correctness(stageCtx, text)
	stageSpan.RecordError(err)
	stageSpan.End()
	if err != nil {
		slog.ErrorContext(stageCtx, "correctness analysis failed", "error", err)
		run.Stages = append(run.Stages, model.StageOutcome{Stage: stageCorrectness, Status: model.StageFailed, Error: err.Error()})
		run.Stats = model.ComputeStats(text, 0)
		o.finish(ctx, run, model.RunAborted, err)
		sc.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisUnavailable, err)
	}
	o.store.ApplyCorrectness(*batch)
	run.Stats = model.ComputeStats(text, len(batch.Spelling))
	run.Stages = append(run.Stages, model.StageOutcome{Stage: stageCorrectness, Status: model.StageSucceeded})

	if task.ToneEnabled() {
		o.setState(StateRunningTone)
		stageCtx, stageSpan := o.stage(ctx, stageTone)
		tone, err := dispatcher.Tone(stageCtx, text, task.Tone)
		stageSpan.RecordError(err)
		stageSpan.End()
		if err == nil {
			o.store.SetTone(tone)
		}
		run.Stages = append(run.Stages, optionalOutcome(stageCtx, stageTone, err))
	} else {
		run.Stages = append(run.Stages, model.StageOutcome{Stage: stageTone, Status: model.StageSkipped})
	}

	if task.StyleEnabled() {
		o.setState(StateRunningStyle)
		stageCtx, stageSpan := o.stage(ctx, stageStyle)
		style, err := dispatcher.Style(stageCtx, text, task.Register)
		stageSpan.RecordError(err)
		stageSpan.End()
		if err == nil {
			o.store.SetStyle(style)
		}
		run.Stages = append(run.Stages, optionalOutcome(stageCtx, stageStyle, err))
	} else {
		run.Stages = append(run.Stages, model.StageOutcome{Stage: stageStyle, Status: model.StageSkipped})
	}

	o.setState(StateRunningContentSummary)
	stageCtx, stageSpan = o.stage(ctx, stageContent)
	content, err := dispatcher.Content(stageCtx, text)
	stageSpan.RecordError(err)
	stageSpan.End()
	if err == nil {
		o.store.SetContent(content)
	}
	run.Stages = append(run.Stages, optionalOutcome(stageCtx, stageContent, err))

	status := model.RunSucceeded
	for _, s := range run.Stages {
		if s.Status == model.StageDegraded {
			status = model.RunPartial
		}
	}
	o.finish(ctx, run, status, nil)

	return &RunResult{
		RunID:       runID,
		Stats:       run.Stats,
		Status:      status,
		Stages:      run.Stages,
		Suggestions: o.store.Snapshot(),
	}, nil
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	changed := o.state != s
	o.state = s
	o.mu.Unlock()

	if changed {
		o.notify(s)
	}
}

func (o *Orchestrator) notify(s State) {
	if o.cfg.OnState != nil {
		o.cfg.OnState(s)
	}
}

func (o *Orchestrator) stage(ctx context.Context, name string) (context.Context, *logger.SpanContext) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: &name})
	sc := logger.StartSpan(ctx, "proofread.stage."+name)
	return sc.Context(), sc
}

func optionalOutcome(ctx context.Context, stage string, err error) model.StageOutcome {
	if err == nil {
		return model.StageOutcome{Stage: stage, Status: model.StageSucceeded}
	}
	// Optional stages degrade silently for the user; the category keeps its
	// previous (reset) contents.
	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "optional analysis stage degraded", "error", err)
	return model.StageOutcome{Stage: stage, Status: model.StageDegraded, Error: err.Error()}
}

func (o *Orchestrator) finish(ctx context.Context, run *model.AnalysisRun, status model.RunStatus, runErr error) {
	run.Status = status
	run.FinishedAt = time.Now().UTC()
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
	}

	slog.InfoContext(ctx, "run finished",
		"status", status,
		"total_words", run.Stats.TotalWords,
		"error_count", run.Stats.ErrorCount,
		"accuracy", run.Stats.Accuracy,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds())

	if o.cfg.Recorder == nil {
		return
	}
	// The run is recorded even if the caller has gone away.
	recordCtx := context.WithoutCancel(ctx)
	if err := o.cfg.Recorder.Record(recordCtx, run); err != nil {
		slog.WarnContext(ctx, "recording run failed", "error", err)
	}
}
