// ABOUTME: Entity service facade: the single contract consumers use for every kind
// ABOUTME: Validates at the boundary, deep-copies values, and records operation metrics
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/crmsync/metrics"
	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

// Store is a backing store for one kind: the gateway or the mock store.
// GetByID returns nil with no error when the record does not exist.
type Store[T models.Entity[T], P models.Patch[T]] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetPage(ctx context.Context, offset int) ([]T, error)
	GetByID(ctx context.Context, id models.ID) (*T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id models.ID, patch P) (T, error)
	Delete(ctx context.Context, id models.ID) (bool, error)
}

// Service is the facade for one entity kind.
type Service[T models.Entity[T], P models.Patch[T]] struct {
	kind   models.Kind
	store  Store[T, P]
	logger *zap.Logger
}

func New[T models.Entity[T], P models.Patch[T]](kind models.Kind, store Store[T, P], logger *zap.Logger) *Service[T, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service[T, P]{kind: kind, store: store, logger: logger.With(zap.String("kind", string(kind)))}
}

func (s *Service[T, P]) Kind() models.Kind { return s.kind }

func (s *Service[T, P]) GetAll(ctx context.Context) (out []T, err error) {
	defer s.observe("getAll", time.Now(), &err)

	items, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]T, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out, nil
}

// ListAll pages through the whole collection. GetAll stops at one page;
// bulk copies use this instead.
func (s *Service[T, P]) ListAll(ctx context.Context) (out []T, err error) {
	defer s.observe("listAll", time.Now(), &err)

	out = []T{}
	for offset := 0; ; offset += records.MaxPageSize {
		page, err := s.store.GetPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, item := range page {
			out = append(out, item.Clone())
		}
		if len(page) < records.MaxPageSize {
			return out, nil
		}
	}
}

func (s *Service[T, P]) GetByID(ctx context.Context, id models.ID) (out *T, err error) {
	defer s.observe("getById", time.Now(), &err)

	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	c := (*item).Clone()
	return &c, nil
}

func (s *Service[T, P]) Create(ctx context.Context, item T) (out T, err error) {
	defer s.observe("create", time.Now(), &err)

	if err = item.Validate(); err != nil {
		return out, err
	}
	created, err := s.store.Create(ctx, item.Clone())
	if err != nil {
		return out, err
	}
	return created.Clone(), nil
}

func (s *Service[T, P]) Update(ctx context.Context, id models.ID, patch P) (out T, err error) {
	defer s.observe("update", time.Now(), &err)

	if err = patch.Validate(); err != nil {
		return out, err
	}
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return out, err
	}
	return updated.Clone(), nil
}

func (s *Service[T, P]) Delete(ctx context.Context, id models.ID) (ok bool, err error) {
	defer s.observe("delete", time.Now(), &err)
	return s.store.Delete(ctx, id)
}

func (s *Service[T, P]) observe(op string, start time.Time, err *error) {
	metrics.ObserveOperation(string(s.kind), op, *err, time.Since(start))
	if *err != nil {
		s.logger.Debug("operation failed", zap.String("op", op), zap.Error(*err))
	}
}
