// ABOUTME: Workspace holds one consumer's view of the CRM and applies mutations to it
// ABOUTME: Local entries are only ever replaced by records the store has confirmed
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/crmsync/metrics"
	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/service"
	"github.com/harperreed/crmsync/views"
)

// ErrClosed is returned for results that arrive after Close. They are
// discarded, never installed.
var ErrClosed = errors.New("workspace closed")

// Notifier receives one call per completed mutation; err is nil on success.
type Notifier func(kind models.Kind, op string, err error)

type Options struct {
	Logger *zap.Logger
	Now    func() time.Time
	Notify Notifier
}

type Workspace struct {
	svc    *service.Services
	logger *zap.Logger
	now    func() time.Time
	notify Notifier

	mu     sync.Mutex
	snap   views.Snapshot
	loaded bool
	closed bool
}

func New(svc *service.Services, opts Options) *Workspace {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notify == nil {
		opts.Notify = func(models.Kind, string, error) {}
	}
	return &Workspace{svc: svc, logger: opts.Logger, now: opts.Now, notify: opts.Notify}
}

// Refresh reloads every collection. The snapshot is replaced only when all
// four loads succeed and the workspace is still open.
func (w *Workspace) Refresh(ctx context.Context) error {
	s, err := Load(ctx, w.svc)

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		metrics.ObserveLoad(metrics.ResultDiscarded)
		w.logger.Debug("discarding load after close", zap.Error(err))
		return ErrClosed
	case err != nil:
		metrics.ObserveLoad(metrics.ResultError)
		w.logger.Warn("workspace load failed", zap.Error(err))
		return err
	}
	metrics.ObserveLoad(metrics.ResultSuccess)
	w.snap = s
	w.loaded = true
	return nil
}

// Close tears the workspace down. Later results are dropped.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// Loaded reports whether a full snapshot has been installed.
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// Snapshot returns a deep copy of the current state.
func (w *Workspace) Snapshot() views.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return views.Snapshot{
		Contacts:   cloneAll(w.snap.Contacts),
		Deals:      cloneAll(w.snap.Deals),
		Tasks:      cloneAll(w.snap.Tasks),
		Activities: cloneAll(w.snap.Activities),
	}
}

// Dashboard derives the dashboard from the current snapshot.
func (w *Workspace) Dashboard() views.Dashboard {
	return views.BuildDashboard(w.Snapshot(), w.now())
}

func (w *Workspace) CreateContact(ctx context.Context, c models.Contact) (models.Contact, error) {
	created, err := w.svc.Contacts.Create(ctx, c)
	return created, w.apply(models.KindContact, "create", err, func(s *views.Snapshot) {
		s.Contacts = prepend(s.Contacts, created)
	})
}

func (w *Workspace) UpdateContact(ctx context.Context, id models.ID, p models.ContactPatch) (models.Contact, error) {
	updated, err := w.svc.Contacts.Update(ctx, id, p)
	return updated, w.apply(models.KindContact, "update", err, func(s *views.Snapshot) {
		s.Contacts = replace(s.Contacts, updated)
	})
}

func (w *Workspace) DeleteContact(ctx context.Context, id models.ID) error {
	_, err := w.svc.Contacts.Delete(ctx, id)
	return w.apply(models.KindContact, "delete", err, func(s *views.Snapshot) {
		s.Contacts = remove(s.Contacts, id)
	})
}

func (w *Workspace) CreateDeal(ctx context.Context, d models.Deal) (models.Deal, error) {
	created, err := w.svc.Deals.Create(ctx, d)
	return created, w.apply(models.KindDeal, "create", err, func(s *views.Snapshot) {
		s.Deals = prepend(s.Deals, created)
	})
}

func (w *Workspace) UpdateDeal(ctx context.Context, id models.ID, p models.DealPatch) (models.Deal, error) {
	updated, err := w.svc.Deals.Update(ctx, id, p)
	return updated, w.apply(models.KindDeal, "update", err, func(s *views.Snapshot) {
		s.Deals = replace(s.Deals, updated)
	})
}

func (w *Workspace) DeleteDeal(ctx context.Context, id models.ID) error {
	_, err := w.svc.Deals.Delete(ctx, id)
	return w.apply(models.KindDeal, "delete", err, func(s *views.Snapshot) {
		s.Deals = remove(s.Deals, id)
	})
}

// MoveDeal changes a deal's stage. The local entry moves immediately; it is
// then replaced by the confirmed record, or restored if the update fails.
// Moving to the current stage does nothing.
func (w *Workspace) MoveDeal(ctx context.Context, id models.ID, stage models.Stage) (models.Deal, error) {
	if !stage.Valid() {
		return models.Deal{}, &models.OpError{
			Kind: models.KindDeal, Op: "move", ID: id,
			Message: fmt.Sprintf("unknown stage %q", stage), Err: models.ErrInvalid,
		}
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return models.Deal{}, ErrClosed
	}
	i := indexOf(w.snap.Deals, id)
	if i < 0 {
		w.mu.Unlock()
		return models.Deal{}, models.NotFound(models.KindDeal, "move", id)
	}
	prior := w.snap.Deals[i].Clone()
	if prior.Stage == stage {
		w.mu.Unlock()
		return prior, nil
	}
	w.snap.Deals[i].Stage = stage
	w.mu.Unlock()

	updated, err := w.svc.Deals.Update(ctx, id, models.DealPatch{Stage: &stage})
	if err != nil {
		w.mu.Lock()
		if !w.closed {
			w.snap.Deals = replace(w.snap.Deals, prior)
		}
		w.mu.Unlock()
		w.logger.Warn("deal move failed, restored prior stage",
			zap.String("id", string(id)), zap.String("stage", string(prior.Stage)), zap.Error(err))
		w.notify(models.KindDeal, "move", err)
		return prior, err
	}
	return updated, w.apply(models.KindDeal, "move", nil, func(s *views.Snapshot) {
		s.Deals = replace(s.Deals, updated)
	})
}

func (w *Workspace) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	created, err := w.svc.Tasks.Create(ctx, t)
	return created, w.apply(models.KindTask, "create", err, func(s *views.Snapshot) {
		s.Tasks = prepend(s.Tasks, created)
	})
}

func (w *Workspace) UpdateTask(ctx context.Context, id models.ID, p models.TaskPatch) (models.Task, error) {
	updated, err := w.svc.Tasks.Update(ctx, id, p)
	return updated, w.apply(models.KindTask, "update", err, func(s *views.Snapshot) {
		s.Tasks = replace(s.Tasks, updated)
	})
}

// ToggleTask flips the completed flag of a loaded task.
func (w *Workspace) ToggleTask(ctx context.Context, id models.ID) (models.Task, error) {
	w.mu.Lock()
	i := indexOf(w.snap.Tasks, id)
	var completed bool
	if i >= 0 {
		completed = !w.snap.Tasks[i].Completed
	}
	w.mu.Unlock()
	if i < 0 {
		return models.Task{}, models.NotFound(models.KindTask, "toggle", id)
	}
	return w.UpdateTask(ctx, id, models.TaskPatch{Completed: &completed})
}

func (w *Workspace) DeleteTask(ctx context.Context, id models.ID) error {
	_, err := w.svc.Tasks.Delete(ctx, id)
	return w.apply(models.KindTask, "delete", err, func(s *views.Snapshot) {
		s.Tasks = remove(s.Tasks, id)
	})
}

// LogActivity records an activity. When it names a contact, that contact's
// LastActivity is moved to now; a failure there is logged, not returned.
func (w *Workspace) LogActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	created, err := w.svc.Activities.Create(ctx, a)
	if err = w.apply(models.KindActivity, "create", err, func(s *views.Snapshot) {
		s.Activities = prepend(s.Activities, created)
	}); err != nil {
		return created, err
	}

	if created.ContactID == "" {
		return created, nil
	}
	touched, terr := w.svc.Contacts.Update(ctx, created.ContactID, models.ContactPatch{LastActivity: models.Ptr(w.now())})
	if terr != nil {
		w.logger.Warn("failed to touch contact last activity",
			zap.String("contact_id", string(created.ContactID)), zap.Error(terr))
		return created, nil
	}
	w.mu.Lock()
	if !w.closed {
		w.snap.Contacts = replace(w.snap.Contacts, touched)
	}
	w.mu.Unlock()
	return created, nil
}

func (w *Workspace) UpdateActivity(ctx context.Context, id models.ID, p models.ActivityPatch) (models.Activity, error) {
	updated, err := w.svc.Activities.Update(ctx, id, p)
	return updated, w.apply(models.KindActivity, "update", err, func(s *views.Snapshot) {
		s.Activities = replace(s.Activities, updated)
	})
}

func (w *Workspace) DeleteActivity(ctx context.Context, id models.ID) error {
	_, err := w.svc.Activities.Delete(ctx, id)
	return w.apply(models.KindActivity, "delete", err, func(s *views.Snapshot) {
		s.Activities = remove(s.Activities, id)
	})
}

// apply installs a confirmed mutation unless it failed or arrived after Close.
func (w *Workspace) apply(kind models.Kind, op string, err error, install func(*views.Snapshot)) error {
	if err != nil {
		w.notify(kind, op, err)
		return err
	}

	w.mu.Lock()
	closed := w.closed
	if !closed {
		install(&w.snap)
	}
	w.mu.Unlock()

	if closed {
		return ErrClosed
	}
	w.notify(kind, op, nil)
	return nil
}

func indexOf[T models.Entity[T]](items []T, id models.ID) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func prepend[T models.Entity[T]](items []T, item T) []T {
	return append([]T{item.Clone()}, items...)
}

// replace swaps in item by id, prepending it if the id is not loaded.
func replace[T models.Entity[T]](items []T, item T) []T {
	if i := indexOf(items, item.EntityID()); i >= 0 {
		items[i] = item.Clone()
		return items
	}
	return prepend(items, item)
}

func remove[T models.Entity[T]](items []T, id models.ID) []T {
	if i := indexOf(items, id); i >= 0 {
		return append(items[:i], items[i+1:]...)
	}
	return items
}

func cloneAll[T models.Entity[T]](items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
