package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/youngsunson/updatev2/common/id"
	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/common/logger"
	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/proofread"
	"github.com/youngsunson/updatev2/internal/settings"
	"github.com/youngsunson/updatev2/internal/store"
)

const MaxSessions = 256

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
)

// Session is one open panel: a document, its suggestions and its run state.
type Session struct {
	ID        int64
	CreatedAt time.Time

	doc          *document.Memory
	store        *proofread.Store
	orchestrator *proofread.Orchestrator
	applier      *proofread.Applier

	mu      sync.Mutex
	lastRun *proofread.RunResult
}

// SessionView is what a panel renders.
type SessionView struct {
	ID          int64                `json:"id"`
	Body        string               `json:"body"`
	Highlights  []document.Highlight `json:"highlights"`
	State       proofread.State      `json:"state"`
	Busy        bool                 `json:"busy"`
	Stats       *model.Stats         `json:"stats,omitempty"`
	Stages      []model.StageOutcome `json:"stages,omitempty"`
	Suggestions proofread.Snapshot   `json:"suggestions"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (s *Session) View() SessionView {
	v := SessionView{
		ID:          s.ID,
		Body:        s.doc.Text(),
		Highlights:  s.doc.Highlights(),
		State:       s.orchestrator.State(),
		Busy:        s.orchestrator.Busy(),
		Suggestions: s.store.Snapshot(),
		CreatedAt:   s.CreatedAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun != nil {
		stats := s.lastRun.Stats
		v.Stats = &stats
		v.Stages = s.lastRun.Stages
	}
	return v
}

type SessionService interface {
	Create(ctx context.Context, body, selection string) (*Session, error)
	Get(ctx context.Context, id int64) (*Session, error)
	UpdateDocument(ctx context.Context, id int64, body, selection string) (*Session, error)
	Delete(ctx context.Context, id int64) error
	// Check runs the orchestrator. A nil task uses the saved default selections.
	Check(ctx context.Context, id int64, task *model.TaskConfig) (*proofread.RunResult, error)
	Accept(ctx context.Context, id int64, oldText, newText string) (*Session, error)
	Dismiss(ctx context.Context, id int64, category model.Category, text string) (*Session, error)
	Runs(ctx context.Context, id int64, limit int) ([]model.AnalysisRun, error)
}

type sessionService struct {
	analyzer llm.Client
	live     *settings.Live
	runs     store.RunStore // nil when run history is disabled

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewSessionService(analyzer llm.Client, live *settings.Live, runs store.RunStore) SessionService {
	return &sessionService{
		analyzer: analyzer,
		live:     live,
		runs:     runs,
		sessions: make(map[int64]*Session),
	}
}

func (s *sessionService) Create(ctx context.Context, body, selection string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= MaxSessions {
		return nil, ErrTooManySessions
	}

	sessionID := id.New()
	doc := document.NewMemory(body)
	if selection != "" && !doc.SelectText(selection) {
		slog.DebugContext(ctx, "selection not found in body, checking whole document", "session_id", sessionID)
	}

	suggestions := proofread.NewStore()
	cfg := proofread.OrchestratorConfig{
		SessionID:   sessionID,
		Credentials: s.live,
	}
	if s.runs != nil {
		cfg.Recorder = s.runs
	}

	sess := &Session{
		ID:           sessionID,
		CreatedAt:    time.Now().UTC(),
		doc:          doc,
		store:        suggestions,
		orchestrator: proofread.NewOrchestrator(cfg, doc, s.analyzer, suggestions),
		applier:      proofread.NewApplier(doc, suggestions),
	}
	s.sessions[sessionID] = sess

	slog.InfoContext(ctx, "session created", "session_id", sessionID, "body_chars", len([]rune(body)))
	return sess, nil
}

func (s *sessionService) Get(_ context.Context, id int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// UpdateDocument re-syncs the host text. Suggestions are kept; they are purged
// only through accept and dismiss. Edits are refused while a check runs.
func (s *sessionService) UpdateDocument(ctx context.Context, id int64, body, selection string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = sess.orchestrator.Exclusive(func() error {
		sess.doc.SetBody(body)
		if selection != "" {
			sess.doc.SelectText(selection)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	slog.InfoContext(ctx, "session closed", "session_id", id)
	return nil
}

func (s *sessionService) Check(ctx context.Context, id int64, task *model.TaskConfig) (*proofread.RunResult, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	selected := s.live.Current().Task()
	if task != nil {
		selected = *task
	}

	result, err := sess.orchestrator.Run(ctx, selected)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.lastRun = result
	sess.mu.Unlock()
	return result, nil
}

func (s *sessionService) Accept(ctx context.Context, id int64, oldText, newText string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &id, Component: "proofread.applier"})
	err = sess.orchestrator.Exclusive(func() error {
		_, err := sess.applier.Apply(ctx, oldText, newText)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Dismiss(ctx context.Context, id int64, category model.Category, text string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cat := string(category)
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &id, Category: &cat})
	err = sess.orchestrator.Exclusive(func() error {
		return sess.applier.Dismiss(ctx, category, text)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Runs(ctx context.Context, id int64, limit int) ([]model.AnalysisRun, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.runs == nil {
		return []model.AnalysisRun{}, nil
	}

	runs, err := s.runs.ListBySession(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
