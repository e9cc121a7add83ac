package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/youngsunson/updatev2/core/db"
	"github.com/youngsunson/updatev2/internal/model"
)

const defaultListLimit = 20

const insertRun = `INSERT INTO analysis_runs (
	id, session_id, model, tone, register, scope_chars,
	total_words, error_count, accuracy, status, error, stages,
	started_at, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO NOTHING`

const selectRunColumns = `SELECT id, session_id, model, tone, register, scope_chars,
	total_words, error_count, accuracy, status, error, stages,
	started_at, finished_at
FROM analysis_runs`

type runStore struct {
	db db.DBTX
}

func NewRunStore(conn db.DBTX) RunStore {
	return &runStore{db: conn}
}

func (s *runStore) Record(ctx context.Context, run *model.AnalysisRun) error {
	stages, err := json.Marshal(nonNilStages(run.Stages))
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	_, err = s.db.Exec(ctx, insertRun,
		run.ID,
		run.SessionID,
		run.Model,
		string(run.Task.Tone),
		string(run.Task.Register),
		run.ScopeChars,
		run.Stats.TotalWords,
		run.Stats.ErrorCount,
		run.Stats.Accuracy,
		string(run.Status),
		run.Error,
		stages,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis run %d: %w", run.ID, err)
	}
	return nil
}

func (s *runStore) GetByID(ctx context.Context, id int64) (*model.AnalysisRun, error) {
	row := s.db.QueryRow(ctx, selectRunColumns+` WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis run %d: %w", id, err)
	}
	return run, nil
}

func (s *runStore) ListBySession(ctx context.Context, sessionID int64, limit int) ([]model.AnalysisRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.Query(ctx,
		selectRunColumns+` WHERE session_id = $1 ORDER BY started_at DESC LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	defer rows.Close()

	runs := []model.AnalysisRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*model.AnalysisRun, error) {
	var (
		run      model.AnalysisRun
		tone     string
		register string
		status   string
		stages   []byte
		started  time.Time
		finished time.Time
	)
	err := row.Scan(
		&run.ID,
		&run.SessionID,
		&run.Model,
		&tone,
		&register,
		&run.ScopeChars,
		&run.Stats.TotalWords,
		&run.Stats.ErrorCount,
		&run.Stats.Accuracy,
		&status,
		&run.Error,
		&stages,
		&started,
		&finished,
	)
	if err != nil {
		return nil, err
	}

	run.Task = model.TaskConfig{Tone: model.Tone(tone), Register: model.Register(register)}
	run.Status = model.RunStatus(status)
	run.StartedAt = started.UTC()
	run.FinishedAt = finished.UTC()
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &run.Stages); err != nil {
			return nil, fmt.Errorf("unmarshal stages: %w", err)
		}
	}
	return &run, nil
}

func nonNilStages(stages []model.StageOutcome) []model.StageOutcome {
	if stages == nil {
		return []model.StageOutcome{}
	}
	return stages
}
