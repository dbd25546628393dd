// Package syncer debounces and persists minutes edits per activity.
//
// Each activity with unsaved minutes has one entry moving through
// pending → saving → (cleared | retrying | failed). Every edit bumps a
// sequence number; responses carrying an older sequence than one already
// applied are discarded, so out-of-order completions never overwrite newer
// state.
package syncer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/weeklit/internal/constants"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/models"
)

// Persister is the part of the activity service the coordinator writes through
type Persister interface {
	UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error)
}

// Reconciler receives persisted results
type Reconciler interface {
	// Reconcile applies a server response. keepLocalHistory is set when a
	// newer edit is still pending. It returns false if the activity is gone.
	Reconcile(a models.Activity, keepLocalHistory bool) bool
	// Forget drops an activity the service no longer knows
	Forget(id string)
}

// State of a pending update
type State int

const (
	StateIdle State = iota
	StatePending
	StateSaving
	StateRetrying
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	case StateRetrying:
		return "retrying"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Options tune the coordinator. Zero values take the defaults from constants.
type Options struct {
	Debounce      time.Duration
	SweepInterval time.Duration
	RetryDelay    time.Duration
	MaxAttempts   int
	Clock         Clock
	// OnError is called outside the lock when an update fails for good
	OnError func(error)
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = constants.DefaultDebounce
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = constants.DefaultSweepInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = constants.DefaultRetryDelay
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = constants.DefaultMaxAttempts
	}
	if o.Clock == nil {
		o.Clock = RealClock
	}
	if o.OnError == nil {
		o.OnError = func(error) {}
	}
	return o
}

type entry struct {
	snapshot models.History
	seq      uint64
	attempts int
	state    State
	since    time.Time
	timer    Timer
	gen      uint64
	lastErr  error
}

// Coordinator owns every pending update
type Coordinator struct {
	svc  Persister
	rec  Reconciler
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	entries    map[string]*entry
	seq        uint64
	gen        uint64
	applied    map[string]uint64
	tombstones map[string]struct{}
	sweep      Timer
	closed     bool
}

// New starts a coordinator and its periodic sweep
func New(svc Persister, rec Reconciler, opts Options) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		svc:        svc,
		rec:        rec,
		opts:       opts.withDefaults(),
		ctx:        ctx,
		cancel:     cancel,
		entries:    make(map[string]*entry),
		applied:    make(map[string]uint64),
		tombstones: make(map[string]struct{}),
	}
	c.mu.Lock()
	c.armSweep()
	c.mu.Unlock()
	return c
}

// Enqueue records the latest history for id and (re)starts its debounce
// window. Bursts of edits coalesce into one write of the final snapshot.
func (c *Coordinator) Enqueue(id string, h models.History) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		logger.Warn("sync: enqueue after close ignored", "activity", id)
		return
	}
	if _, dead := c.tombstones[id]; dead {
		logger.Debug("sync: enqueue for deleted activity ignored", "activity", id)
		return
	}

	e, ok := c.entries[id]
	if !ok {
		e = &entry{}
		c.entries[id] = e
		pendingGauge.Inc()
	}
	c.seq++
	e.seq = c.seq
	e.snapshot = h.Clone()
	e.attempts = 0
	e.lastErr = nil
	e.state = StatePending
	e.since = c.opts.Clock.Now()
	c.arm(id, e, c.opts.Debounce)
	logger.Debug("sync: pending", "activity", id, "seq", e.seq)
}

// arm replaces the entry's timer. Callers hold c.mu.
func (c *Coordinator) arm(id string, e *entry, d time.Duration) {
	if e.timer != nil {
		e.timer.Stop()
	}
	c.gen++
	gen := c.gen
	e.gen = gen
	e.timer = c.opts.Clock.AfterFunc(d, func() {
		c.fire(id, gen)
	})
}

// fire runs a debounce or retry timer; timers superseded by a newer arm are no-ops
func (c *Coordinator) fire(id string, gen uint64) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok || e.gen != gen || c.closed {
		c.mu.Unlock()
		return
	}
	e.timer = nil
	c.mu.Unlock()

	_ = c.flush(c.ctx, id)
}

// flush sends the latest snapshot for id and applies the outcome
func (c *Coordinator) flush(ctx context.Context, id string) error {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	snapshot := e.snapshot.Clone()
	if snapshot == nil {
		snapshot = models.History{}
	}
	seq := e.seq
	e.state = StateSaving
	e.since = c.opts.Clock.Now()
	c.mu.Unlock()

	logger.Debug("sync: saving", "activity", id, "seq", seq)
	start := time.Now()
	updated, err := c.svc.UpdateActivity(ctx, id, models.ActivityPatch{History: &snapshot})
	flushDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return c.failed(id, seq, err)
	}
	c.succeeded(id, seq, updated)
	return nil
}

func (c *Coordinator) succeeded(id string, seq uint64, updated models.Activity) {
	c.mu.Lock()
	if _, dead := c.tombstones[id]; dead {
		c.mu.Unlock()
		discardedCounter.Inc()
		logger.Debug("sync: response for deleted activity discarded", "activity", id)
		return
	}
	newer := false
	if e, ok := c.entries[id]; ok {
		if e.seq > seq {
			newer = true
		} else {
			c.drop(id, e)
		}
	}
	if c.applied[id] >= seq {
		c.mu.Unlock()
		discardedCounter.Inc()
		logger.Debug("sync: stale response discarded", "activity", id, "seq", seq)
		return
	}
	c.applied[id] = seq
	c.mu.Unlock()

	flushCounter.WithLabelValues("ok").Inc()
	if !c.rec.Reconcile(updated, newer) {
		discardedCounter.Inc()
		return
	}
	logger.Debug("sync: saved", "activity", id, "seq", seq, "newer_pending", newer)
}

func (c *Coordinator) failed(id string, seq uint64, err error) error {
	kind := apperrors.Classify(err)
	flushCounter.WithLabelValues(kind.String()).Inc()

	c.mu.Lock()
	if _, dead := c.tombstones[id]; dead {
		c.mu.Unlock()
		discardedCounter.Inc()
		return nil
	}
	e, ok := c.entries[id]
	if !ok || e.seq > seq {
		// superseded: the newer snapshot's own timer owns the entry
		c.mu.Unlock()
		logger.Debug("sync: failure for superseded snapshot ignored", "activity", id, "seq", seq, "error", err)
		return err
	}

	switch kind {
	case apperrors.KindNotFound:
		c.drop(id, e)
		c.tombstones[id] = struct{}{}
		c.mu.Unlock()
		logger.Warn("sync: activity no longer exists", "activity", id)
		c.rec.Forget(id)
		c.opts.OnError(err)
		return err

	case apperrors.KindTransient:
		e.attempts++
		e.lastErr = err
		if e.attempts < c.opts.MaxAttempts {
			e.state = StateRetrying
			e.since = c.opts.Clock.Now()
			c.arm(id, e, c.opts.RetryDelay)
			attempts := e.attempts
			c.mu.Unlock()
			retryCounter.Inc()
			logger.Warn("sync: save failed, retrying", "activity", id, "attempt", attempts, "error", err)
			return err
		}
		final := &apperrors.TransientSyncError{ActivityID: id, Attempts: e.attempts, Err: err}
		e.state = StateFailed
		e.lastErr = final
		attempts := e.attempts
		c.mu.Unlock()
		exhaustedCounter.Inc()
		logger.Error("sync: giving up", "activity", id, "attempts", attempts, "error", err)
		c.opts.OnError(final)
		return final

	default:
		e.state = StateFailed
		e.lastErr = err
		c.mu.Unlock()
		logger.Error("sync: save rejected", "activity", id, "kind", kind, "error", err)
		c.opts.OnError(err)
		return err
	}
}

// drop removes an entry. Callers hold c.mu.
func (c *Coordinator) drop(id string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(c.entries, id)
	pendingGauge.Dec()
}

// Cancel drops the pending update for id and discards any response still in
// flight for it. The unsaved snapshot, if any, is returned so a caller can
// restore it.
func (c *Coordinator) Cancel(id string) (models.History, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tombstones[id] = struct{}{}
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	c.drop(id, e)
	logger.Debug("sync: cancelled", "activity", id)
	return e.snapshot, true
}

// Revive lifts a Cancel so id can be enqueued again
func (c *Coordinator) Revive(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tombstones, id)
}

// Pending reports whether id has unsaved minutes
func (c *Coordinator) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Snapshot returns the unsaved history for id
func (c *Coordinator) Snapshot(id string) (models.History, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.snapshot.Clone(), true
}

// Status returns the state of id's pending update
func (c *Coordinator) Status(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e.state
	}
	return StateIdle
}

// LastError returns why id's update gave up. It is nil unless the update is
// failed, and the next Enqueue for id clears it.
func (c *Coordinator) LastError(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && e.state == StateFailed {
		return e.lastErr
	}
	return nil
}

// Count returns the number of activities with unsaved minutes
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Coordinator) armSweep() {
	if c.closed {
		return
	}
	c.sweep = c.opts.Clock.AfterFunc(c.opts.SweepInterval, c.runSweep)
}

// runSweep re-flushes updates whose timer should have fired by now
func (c *Coordinator) runSweep() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	now := c.opts.Clock.Now()
	var stuck []string
	for id, e := range c.entries {
		if e.state != StatePending && e.state != StateRetrying {
			continue
		}
		if now.Sub(e.since) >= c.opts.SweepInterval {
			stuck = append(stuck, id)
		}
	}
	c.mu.Unlock()

	for _, id := range stuck {
		logger.Debug("sync: sweep flushing stuck update", "activity", id)
		_ = c.flush(c.ctx, id)
	}

	c.mu.Lock()
	c.armSweep()
	c.mu.Unlock()
}

// FlushAll immediately sends every pending or retrying update in parallel
// and waits for all of them. It returns the first failure.
func (c *Coordinator) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	var ids []string
	for id, e := range c.entries {
		if e.state == StatePending || e.state == StateRetrying {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	logger.Info("sync: flushing pending updates", "count", len(ids))

	// a plain group: one failure must not cancel the other writes
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			return c.flush(ctx, id)
		})
	}
	return g.Wait()
}

// Close flushes what is pending, then stops every timer.
// Updates still unsaved after the flush are lost.
func (c *Coordinator) Close(ctx context.Context) error {
	err := c.FlushAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}
	c.closed = true
	if c.sweep != nil {
		c.sweep.Stop()
	}
	for _, e := range c.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
	c.cancel()
	if n := len(c.entries); n > 0 {
		logger.Warn("sync: closed with unsaved updates", "count", n)
	}
	return err
}
