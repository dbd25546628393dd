// Package store holds the client-side list of activities.
//
// Mutations apply optimistically under the store lock; minutes edits are
// handed to a syncer.Coordinator for debounced persistence and everything
// else goes straight to the activity service. Lock order is store, then
// coordinator: the coordinator never calls back into the store while
// holding its own lock.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/weeklit/internal/calendar"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/service"
	"github.com/julianstephens/weeklit/internal/syncer"
	"github.com/julianstephens/weeklit/internal/validation"
)

type Store struct {
	svc  service.Service
	sync *syncer.Coordinator
	now  func() time.Time

	mu         sync.RWMutex
	activities []models.Activity
}

// New creates an empty store writing through svc
func New(svc service.Service, opts syncer.Options) *Store {
	s := &Store{svc: svc, now: time.Now}
	if opts.Clock != nil {
		s.now = opts.Clock.Now
	}
	s.sync = syncer.New(svc, s, opts)
	return s
}

// Sync exposes the coordinator for status display
func (s *Store) Sync() *syncer.Coordinator {
	return s.sync
}

// FlushAll persists every pending minutes edit now
func (s *Store) FlushAll(ctx context.Context) error {
	return s.sync.FlushAll(ctx)
}

// Close flushes pending edits and stops the coordinator
func (s *Store) Close(ctx context.Context) error {
	return s.sync.Close(ctx)
}

// Load replaces the list with the service's. Unsaved local minutes win over
// the fetched history.
func (s *Store) Load(ctx context.Context) error {
	list, err := s.svc.ListActivities(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	loaded := make([]models.Activity, 0, len(list))
	for _, a := range list {
		if snap, ok := s.sync.Snapshot(a.ID); ok {
			a.History = snap
		}
		loaded = append(loaded, a.Clone())
	}
	s.activities = loaded
	s.mu.Unlock()
	logger.Debug("store: loaded activities", "count", len(loaded))
	return nil
}

// Create validates draft, seeds empty buckets for the current week and
// appends the created activity
func (s *Store) Create(ctx context.Context, draft models.ActivityDraft) (models.Activity, error) {
	draft, err := validation.ValidateDraft(draft)
	if err != nil {
		return models.Activity{}, err
	}
	draft.History = draft.History.Seed(calendar.WeekWindow(s.now()).Dates())

	created, err := s.svc.CreateActivity(ctx, draft)
	if err != nil {
		return models.Activity{}, err
	}

	s.mu.Lock()
	s.activities = append(s.activities, created.Clone())
	s.mu.Unlock()
	logger.Info("activity created", "id", created.ID, "name", created.Name)
	return created, nil
}

// Edit sends patch for id and replaces the local entity with the result
func (s *Store) Edit(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error) {
	patch, err := validation.ValidatePatch(patch)
	if err != nil {
		return models.Activity{}, err
	}
	if patch.History != nil {
		if err := validation.ValidateHistory(*patch.History); err != nil {
			return models.Activity{}, err
		}
	}
	current, ok := s.Get(id)
	if !ok {
		return models.Activity{}, apperrors.ErrNotFound
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.svc.UpdateActivity(ctx, id, patch)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.sync.Cancel(id)
			s.Forget(id)
		}
		return models.Activity{}, err
	}

	s.mu.Lock()
	if snap, pending := s.sync.Snapshot(id); pending {
		updated.History = snap
	}
	if i := s.index(id); i >= 0 {
		s.activities[i] = updated.Clone()
	}
	s.mu.Unlock()
	logger.Info("activity updated", "id", id)
	return updated, nil
}

// Delete removes id locally and at the service. A failed delete puts the
// activity back where it was and restores its unsaved minutes.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.ErrNotFound
	}
	removed := s.activities[idx]
	s.activities = append(s.activities[:idx], s.activities[idx+1:]...)
	s.mu.Unlock()

	snap, hadPending := s.sync.Cancel(id)

	err := s.svc.DeleteActivity(ctx, id)
	if err == nil || apperrors.IsNotFound(err) {
		logger.Info("activity deleted", "id", id)
		return nil
	}

	s.mu.Lock()
	if idx > len(s.activities) {
		idx = len(s.activities)
	}
	s.activities = append(s.activities[:idx], append([]models.Activity{removed}, s.activities[idx:]...)...)
	s.sync.Revive(id)
	if hadPending {
		s.sync.Enqueue(id, snap)
	}
	s.mu.Unlock()

	logger.Warn("activity delete failed, restored", "id", id, "error", err)
	return err
}

// SetMinutes records raw minutes for id on date. Input that does not parse
// as an integer in [0, 999] is ignored and false is returned.
func (s *Store) SetMinutes(id string, date time.Time, raw string) bool {
	m, ok := validation.ParseMinutes(raw)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.setMinutesLocked(i, date, m)
	return true
}

// setMinutesLocked writes m into activity i and enqueues the new history.
// Enqueueing before the store lock is released keeps Reconcile from
// overwriting the edit with an older response. Callers hold s.mu.
func (s *Store) setMinutesLocked(i int, date time.Time, m int) {
	a := &s.activities[i]
	a.History = a.History.WithMinutes(date, m)
	s.sync.Enqueue(a.ID, a.History)
}

// Activities returns a copy of the list in fetch order
func (s *Store) Activities() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Activity, len(s.activities))
	for i, a := range s.activities {
		out[i] = a.Clone()
	}
	return out
}

// Get returns a copy of the activity with id
func (s *Store) Get(id string) (models.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.activities[i].Clone(), true
	}
	return models.Activity{}, false
}

// Lookup resolves ref as an id, then as a case-insensitive name
func (s *Store) Lookup(ref string) (models.Activity, error) {
	if a, ok := s.Get(ref); ok {
		return a, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.activities {
		if strings.EqualFold(a.Name, strings.TrimSpace(ref)) {
			return a.Clone(), nil
		}
	}
	return models.Activity{}, apperrors.ErrNotFound
}

// Minutes returns the minutes shown for id on date
func (s *Store) Minutes(id string, date time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.activities[i].History.Minutes(date)
	}
	return 0
}

// Reconcile applies a persisted activity. It implements syncer.Reconciler.
func (s *Store) Reconcile(a models.Activity, keepLocalHistory bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(a.ID)
	if i < 0 {
		return false
	}
	a = a.Clone()
	// a newer edit may have been enqueued after the coordinator took its decision
	if keepLocalHistory || s.sync.Pending(a.ID) {
		a.History = s.activities[i].History
	}
	s.activities[i] = a
	return true
}

// Forget drops id without calling the service
func (s *Store) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.activities = append(s.activities[:i], s.activities[i+1:]...)
	}
}

// index finds id. Callers hold s.mu.
func (s *Store) index(id string) int {
	for i := range s.activities {
		if s.activities[i].ID == id {
			return i
		}
	}
	return -1
}
