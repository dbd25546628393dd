package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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
		a       models.Activity
		history []byte
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.WeeklyGoalHours, &history, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return models.Activity{}, err
	}
	h, err := storage.DecodeHistory(history)
	if err != nil {
		return models.Activity{}, fmt.Errorf("activity %s: %w", a.ID, err)
	}
	a.History = h
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

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO activities (id, name, description, weekly_goal_hours, history)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING `+activityColumns,
		uuid.NewString(), draft.Name, draft.Description, draft.WeeklyGoalHours, history)
	a, err := scanActivity(row)
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

	var history sql.NullString
	if patch.History != nil {
		if err := validation.ValidateHistory(*patch.History); err != nil {
			return models.Activity{}, err
		}
		encoded, err := storage.EncodeHistory(*patch.History)
		if err != nil {
			return models.Activity{}, err
		}
		history = sql.NullString{String: encoded, Valid: true}
	}

	// COALESCE keeps columns the patch leaves unset
	row := s.db.QueryRowContext(ctx, `
		UPDATE activities SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			weekly_goal_hours = COALESCE($4, weekly_goal_hours),
			history = COALESCE($5::jsonb, history),
			updated_at = now()
		WHERE id = $1
		RETURNING `+activityColumns,
		id, nullString(patch.Name), nullString(patch.Description), nullFloat(patch.WeeklyGoalHours), history)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to update activity: %w", err)
	}
	return a, nil
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id)
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

func (s *Store) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrPreferenceNotFound
	}
	return value, err
}

func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
