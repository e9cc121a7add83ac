// Package store persists analysis run history in Postgres.
package store

import (
	"context"
	"errors"

	"github.com/youngsunson/updatev2/internal/model"
)

var ErrNotFound = errors.New("not found")

type RunStore interface {
	// Record inserts a finished run. Recording the same run twice is a no-op.
	Record(ctx context.Context, run *model.AnalysisRun) error
	GetByID(ctx context.Context, id int64) (*model.AnalysisRun, error)
	// ListBySession returns the latest runs of a session, newest first.
	ListBySession(ctx context.Context, sessionID int64, limit int) ([]model.AnalysisRun, error)
}
