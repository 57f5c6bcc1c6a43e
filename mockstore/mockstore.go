// ABOUTME: In-memory stand-in for the record service with artificial latency
// ABOUTME: Seeded per kind, assigns ULIDs, and hands out deep copies only

package mockstore

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

// Default latency range, mimicking a network round trip.
const (
	DefaultLatencyMin = 200 * time.Millisecond
	DefaultLatencyMax = 400 * time.Millisecond
)

type Options struct {
	// LatencyMin and LatencyMax bound the delay added to every call.
	// Both zero disables the delay.
	LatencyMin time.Duration
	LatencyMax time.Duration
	Logger     *zap.Logger
	Now        func() time.Time
}

// DefaultOptions returns options with the default latency range.
func DefaultOptions(logger *zap.Logger) Options {
	return Options{LatencyMin: DefaultLatencyMin, LatencyMax: DefaultLatencyMax, Logger: logger}
}

// Store holds one collection. It is safe for concurrent use.
type Store[T models.Entity[T], P models.Patch[T]] struct {
	kind   models.Kind
	less   func(a, b T) bool
	opts   Options
	logger *zap.Logger

	mu      sync.Mutex
	items   []T
	rng     *rand.Rand
	entropy *ulid.MonotonicEntropy
}

// New seeds a store with deep copies of items. less gives the collection's
// default order.
func New[T models.Entity[T], P models.Patch[T]](kind models.Kind, items []T, less func(a, b T) bool, opts Options) *Store[T, P] {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LatencyMax < opts.LatencyMin {
		opts.LatencyMax = opts.LatencyMin
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Store[T, P]{
		kind:    kind,
		less:    less,
		opts:    opts,
		logger:  opts.Logger.With(zap.String("kind", string(kind)), zap.String("store", "mock")),
		rng:     rng,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(rng.Int63())), 0),
	}
	for _, item := range items {
		s.items = append(s.items, item.Clone())
	}
	return s
}

func NewContacts(items []models.Contact, opts Options) *Store[models.Contact, models.ContactPatch] {
	return New[models.Contact, models.ContactPatch](models.KindContact, items, func(a, b models.Contact) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}, opts)
}

func NewDeals(items []models.Deal, opts Options) *Store[models.Deal, models.DealPatch] {
	return New[models.Deal, models.DealPatch](models.KindDeal, items, func(a, b models.Deal) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}, opts)
}

func NewTasks(items []models.Task, opts Options) *Store[models.Task, models.TaskPatch] {
	return New[models.Task, models.TaskPatch](models.KindTask, items, func(a, b models.Task) bool {
		return a.DueDate.Before(b.DueDate)
	}, opts)
}

func NewActivities(items []models.Activity, opts Options) *Store[models.Activity, models.ActivityPatch] {
	return New[models.Activity, models.ActivityPatch](models.KindActivity, items, func(a, b models.Activity) bool {
		return a.Date.After(b.Date)
	}, opts)
}

// GetAll returns up to one page of the collection in default order.
func (s *Store[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return s.GetPage(ctx, 0)
}

// GetPage returns up to one page starting at offset, in default order.
func (s *Store[T, P]) GetPage(ctx context.Context, offset int) ([]T, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sorted := make([]T, len(s.items))
	copy(sorted, s.items)
	s.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool { return s.less(sorted[i], sorted[j]) })
	if offset >= len(sorted) {
		return []T{}, nil
	}
	sorted = sorted[max(offset, 0):]
	if len(sorted) > records.MaxPageSize {
		sorted = sorted[:records.MaxPageSize]
	}

	out := make([]T, len(sorted))
	for i, item := range sorted {
		out[i] = item.Clone()
	}
	return out, nil
}

// GetByID returns nil with no error when id is absent.
func (s *Store[T, P]) GetByID(ctx context.Context, id models.ID) (*T, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		item := s.items[i].Clone()
		return &item, nil
	}
	return nil, nil
}

// Create assigns a fresh ULID and puts the record first in insertion order.
func (s *Store[T, P]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.delay(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	id := ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
	created := item.Stamp(models.ID(id), now)
	s.items = append([]T{created}, s.items...)
	return created.Clone(), nil
}

// Update merges patch into the stored record.
func (s *Store[T, P]) Update(ctx context.Context, id models.ID, patch P) (T, error) {
	var zero T
	if err := s.delay(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		err := models.NotFound(s.kind, "update", id)
		s.logger.Warn("update of missing record", zap.String("id", string(id)), zap.Error(err))
		return zero, err
	}
	s.items[i] = patch.Apply(s.items[i])
	return s.items[i].Clone(), nil
}

func (s *Store[T, P]) Delete(ctx context.Context, id models.ID) (bool, error) {
	if err := s.delay(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		err := models.NotFound(s.kind, "delete", id)
		s.logger.Warn("delete of missing record", zap.String("id", string(id)), zap.Error(err))
		return false, err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true, nil
}

// Len reports the collection size without latency.
func (s *Store[T, P]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// index must be called with mu held.
func (s *Store[T, P]) index(id models.ID) int {
	for i, item := range s.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, P]) delay(ctx context.Context) error {
	if s.opts.LatencyMax <= 0 {
		return ctx.Err()
	}

	d := s.opts.LatencyMin
	if spread := s.opts.LatencyMax - s.opts.LatencyMin; spread > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int63n(int64(spread) + 1))
		s.mu.Unlock()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
