// ABOUTME: Construction of the four entity facades over a chosen backing store
// ABOUTME: Selects remote, sqlite, charm, or mock from configuration at process start
package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/crmsync/charm"
	"github.com/harperreed/crmsync/config"
	"github.com/harperreed/crmsync/db"
	"github.com/harperreed/crmsync/gateway"
	"github.com/harperreed/crmsync/mockstore"
	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
	"github.com/harperreed/crmsync/seed"
)

type (
	Contacts   = Service[models.Contact, models.ContactPatch]
	Deals      = Service[models.Deal, models.DealPatch]
	Tasks      = Service[models.Task, models.TaskPatch]
	Activities = Service[models.Activity, models.ActivityPatch]
)

// Services bundles one facade per kind. Build it once and pass it to every
// consumer.
type Services struct {
	Contacts   *Contacts
	Deals      *Deals
	Tasks      *Tasks
	Activities *Activities

	// Backend names the store the facades delegate to.
	Backend string

	closers []func() error
}

// Close releases the backing store.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Open builds the facades for the configured backend.
func Open(cfg *config.Config, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := cfg.ResolvedBackend()

	if backend == config.BackendMock {
		ds, err := seed.Load(time.Now())
		if err != nil {
			return nil, err
		}
		opts := mockstore.Options{LatencyMin: cfg.MockLatencyMin, LatencyMax: cfg.MockLatencyMax, Logger: logger}
		logger.Info("using mock store", zap.Duration("latency_min", opts.LatencyMin), zap.Duration("latency_max", opts.LatencyMax))
		return NewMock(ds, opts, logger), nil
	}

	store, closer, err := OpenBackend(cfg, backend)
	if err != nil {
		return nil, err
	}
	logger.Info("using record backend", zap.String("backend", backend))

	svc := FromBackend(store, logger)
	svc.Backend = backend
	if closer != nil {
		svc.closers = append(svc.closers, closer)
	}
	return svc, nil
}

// OpenBackend opens a record-service backend by name. The returned closer
// may be nil.
func OpenBackend(cfg *config.Config, backend string) (records.Backend, func() error, error) {
	switch backend {
	case config.BackendRemote:
		client, err := records.NewClient(records.ClientOptions{
			BaseURL:   cfg.APIURL,
			ProjectID: cfg.ProjectID,
			PublicKey: cfg.PublicKey,
			Timeout:   cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	case config.BackendSQLite:
		conn, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db.NewRecordStore(conn, "crmsync"), conn.Close, nil

	case config.BackendCharm:
		var (
			client *charm.Client
			err    error
		)
		if cfg.CharmDir != "" {
			client, err = charm.OpenLocal(cfg.CharmDir, nil)
		} else {
			var ccfg *charm.Config
			if ccfg, err = charm.LoadConfig(); err == nil {
				client, err = charm.NewClient(ccfg)
			}
		}
		if err != nil {
			return nil, nil, err
		}
		return charm.NewRecordStore(client, "crmsync"), client.Close, nil
	}
	return nil, nil, fmt.Errorf("backend %q has no record store", backend)
}

// FromBackend builds gateway-backed facades over any record backend.
func FromBackend(b records.Backend, logger *zap.Logger) *Services {
	return &Services{
		Contacts:   New[models.Contact, models.ContactPatch](models.KindContact, gateway.New(b, gateway.ContactSchema, logger), logger),
		Deals:      New[models.Deal, models.DealPatch](models.KindDeal, gateway.New(b, gateway.DealSchema, logger), logger),
		Tasks:      New[models.Task, models.TaskPatch](models.KindTask, gateway.New(b, gateway.TaskSchema, logger), logger),
		Activities: New[models.Activity, models.ActivityPatch](models.KindActivity, gateway.New(b, gateway.ActivitySchema, logger), logger),
		Backend:    config.BackendRemote,
	}
}

// NewMock builds facades over in-memory stores seeded from ds.
func NewMock(ds *seed.Dataset, opts mockstore.Options, logger *zap.Logger) *Services {
	if ds == nil {
		ds = &seed.Dataset{}
	}
	return &Services{
		Contacts:   New[models.Contact, models.ContactPatch](models.KindContact, mockstore.NewContacts(ds.Contacts, opts), logger),
		Deals:      New[models.Deal, models.DealPatch](models.KindDeal, mockstore.NewDeals(ds.Deals, opts), logger),
		Tasks:      New[models.Task, models.TaskPatch](models.KindTask, mockstore.NewTasks(ds.Tasks, opts), logger),
		Activities: New[models.Activity, models.ActivityPatch](models.KindActivity, mockstore.NewActivities(ds.Activities, opts), logger),
		Backend:    config.BackendMock,
	}
}
