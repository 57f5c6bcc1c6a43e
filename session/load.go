// ABOUTME: All-or-nothing concurrent load of the four collections
// ABOUTME: Either every collection arrives or the caller gets an error and no data
package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmsync/service"
	"github.com/harperreed/crmsync/views"
)

// Load fetches contacts, deals, tasks, and activities concurrently. The first
// failure cancels the remaining fetches and nothing is returned.
func Load(ctx context.Context, svc *service.Services) (views.Snapshot, error) {
	var s views.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		s.Contacts, err = svc.Contacts.GetAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Deals, err = svc.Deals.GetAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Tasks, err = svc.Tasks.GetAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Activities, err = svc.Activities.GetAll(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return views.Snapshot{}, fmt.Errorf("failed to load workspace: %w", err)
	}
	return s, nil
}
