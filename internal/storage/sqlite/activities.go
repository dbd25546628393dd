package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/validation"
)

const activityColumns = "id, name, description, weekly_goal_hours, history, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (models.Activity, error) {
	var (
		a                models.Activity
		history          string
		created, updated string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.WeeklyGoalHours, &history, &created, &updated); err != nil {
		return models.Activity{}, err
	}
	h, err := storage.DecodeHistory([]byte(history))
	if err != nil {
		return models.Activity{}, fmt.Errorf("activity %s: %w", a.ID, err)
	}
	a.History = h
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+activityColumns+" FROM activities ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *Store) getActivity(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id string) (models.Activity, error) {
	a, err := scanActivity(q.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	return a, err
}

func (s *Store) CreateActivity(ctx context.Context, draft models.ActivityDraft) (models.Activity, error) {
	draft, err := validation.ValidateDraft(draft)
	if err != nil {
		return models.Activity{}, err
	}
	if err := validation.ValidateHistory(draft.History); err != nil {
		return models.Activity{}, err
	}
	history, err := storage.EncodeHistory(draft.History)
	if err != nil {
		return models.Activity{}, err
	}

	now := time.Now().UTC()
	a := models.Activity{
		ID:              uuid.NewString(),
		Name:            draft.Name,
		Description:     draft.Description,
		WeeklyGoalHours: draft.WeeklyGoalHours,
		History:         draft.History.Clone(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if a.History == nil {
		a.History = models.History{}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activities (id, name, description, weekly_goal_hours, history, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM activities), ?, ?)`,
		a.ID, a.Name, a.Description, a.WeeklyGoalHours, history,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to insert activity: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error) {
	patch, err := validation.ValidatePatch(patch)
	if err != nil {
		return models.Activity{}, err
	}
	if patch.History != nil {
		if err := validation.ValidateHistory(*patch.History); err != nil {
			return models.Activity{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Activity{}, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.getActivity(ctx, tx, id)
	if err != nil {
		return models.Activity{}, err
	}

	updated := patch.Apply(current)
	updated.UpdatedAt = time.Now().UTC()
	history, err := storage.EncodeHistory(updated.History)
	if err != nil {
		return models.Activity{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE activities SET name = ?, description = ?, weekly_goal_hours = ?, history = ?, updated_at = ?
		WHERE id = ?`,
		updated.Name, updated.Description, updated.WeeklyGoalHours, history,
		updated.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to update activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Activity{}, err
	}
	return updated, nil
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	return nil
}
