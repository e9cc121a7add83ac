package model

import "time"

type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageDegraded  StageStatus = "degraded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunAborted   RunStatus = "aborted"
)

type StageOutcome struct {
	Stage  string      `json:"stage"`
	Status StageStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// AnalysisRun is the record of one user-triggered check.
type AnalysisRun struct {
	ID         int64          `json:"id"`
	SessionID  int64          `json:"session_id"`
	Model      string         `json:"model"`
	Task       TaskConfig     `json:"task"`
	ScopeChars int            `json:"scope_chars"`
	Stats      Stats          `json:"stats"`
	Status     RunStatus      `json:"status"`
	Error      *string        `json:"error,omitempty"`
	Stages     []StageOutcome `json:"stages"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}
