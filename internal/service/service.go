// Package service defines the Activity Service port the client persists through.
package service

import (
	"context"

	"github.com/julianstephens/weeklit/internal/models"
)

// Service is the persistence boundary for activities.
//
// Implementations classify failures with internal/errors: ErrNotFound for an
// unknown id, ErrAuth for credential problems, ValidationError for rejected
// input, and anything else is treated as transient.
type Service interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	CreateActivity(ctx context.Context, draft models.ActivityDraft) (models.Activity, error)
	// UpdateActivity merges the set fields of patch; unset fields are preserved.
	UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error)
	DeleteActivity(ctx context.Context, id string) error
}
