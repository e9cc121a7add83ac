package dto

import (
	"time"

	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/proofread"
	"github.com/youngsunson/updatev2/internal/service"
)

type CreateSessionRequest struct {
	Body      string `json:"body" binding:"max=200000"`
	Selection string `json:"selection,omitempty"`
}

type UpdateDocumentRequest struct {
	Body      string `json:"body" binding:"max=200000"`
	Selection string `json:"selection,omitempty"`
}

// CheckRequest selects the optional categories. Omitting both fields uses the
// saved defaults.
type CheckRequest struct {
	Tone     *string `json:"tone,omitempty"`
	Register *string `json:"register,omitempty"`
}

func (r CheckRequest) Task() *model.TaskConfig {
	if r.Tone == nil && r.Register == nil {
		return nil
	}
	var task model.TaskConfig
	if r.Tone != nil {
		task.Tone = model.Tone(*r.Tone)
	}
	if r.Register != nil {
		task.Register = model.Register(*r.Register)
	}
	return &task
}

type AcceptRequest struct {
	OldText string `json:"old_text" binding:"required"`
	NewText string `json:"new_text"`
}

type DismissRequest struct {
	Category string `json:"category" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

type SessionResponse struct {
	ID          int64                `json:"id,string"`
	Body        string               `json:"body"`
	Highlights  []document.Highlight `json:"highlights"`
	State       string               `json:"state"`
	Busy        bool                 `json:"busy"`
	Stats       *model.Stats         `json:"stats,omitempty"`
	Stages      []model.StageOutcome `json:"stages,omitempty"`
	Suggestions proofread.Snapshot   `json:"suggestions"`
	Pending     int                  `json:"pending"`
	CreatedAt   time.Time            `json:"created_at"`
}

func ToSessionResponse(s *service.Session) *SessionResponse {
	v := s.View()
	return &SessionResponse{
		ID:          v.ID,
		Body:        v.Body,
		Highlights:  v.Highlights,
		State:       string(v.State),
		Busy:        v.Busy,
		Stats:       v.Stats,
		Stages:      v.Stages,
		Suggestions: v.Suggestions,
		Pending:     v.Suggestions.Pending(),
		CreatedAt:   v.CreatedAt,
	}
}

type CheckResponse struct {
	RunID       int64                `json:"run_id,string"`
	Status      string               `json:"status"`
	Stats       model.Stats          `json:"stats"`
	Stages      []model.StageOutcome `json:"stages"`
	Suggestions proofread.Snapshot   `json:"suggestions"`
}

func ToCheckResponse(r *proofread.RunResult) *CheckResponse {
	return &CheckResponse{
		RunID:       r.RunID,
		Status:      string(r.Status),
		Stats:       r.Stats,
		Stages:      r.Stages,
		Suggestions: r.Suggestions,
	}
}

type RunResponse struct {
	ID         int64                `json:"id,string"`
	Model      string               `json:"model"`
	Tone       string               `json:"tone"`
	Register   string               `json:"register"`
	ScopeChars int                  `json:"scope_chars"`
	Stats      model.Stats          `json:"stats"`
	Status     string               `json:"status"`
	Error      *string              `json:"error,omitempty"`
	Stages     []model.StageOutcome `json:"stages"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

func ToRunResponses(runs []model.AnalysisRun) []RunResponse {
	out := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunResponse{
			ID:         r.ID,
			Model:      r.Model,
			Tone:       string(r.Task.Tone),
			Register:   string(r.Task.Register),
			ScopeChars: r.ScopeChars,
			Stats:      r.Stats,
			Status:     string(r.Status),
			Error:      r.Error,
			Stages:     r.Stages,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
		})
	}
	return out
}
