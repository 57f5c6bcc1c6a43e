// ABOUTME: Copies every entity kind between two sets of facades
// ABOUTME: Targets assign new ids, so contact and deal references are rewritten on the way
package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/service"
)

// Stats counts the records copied (or that would be copied) per kind.
type Stats struct {
	Contacts   int
	Deals      int
	Tasks      int
	Activities int
}

// Migrate reads everything from src and creates it in dst. A nil dst makes it
// a dry run that only counts. References to contacts or deals that do not
// exist in the source are cleared.
func Migrate(ctx context.Context, src, dst *service.Services, logger *zap.Logger) (Stats, error) {
	var stats Stats

	contacts, err := src.Contacts.ListAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read contacts: %w", err)
	}
	deals, err := src.Deals.ListAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read deals: %w", err)
	}
	tasks, err := src.Tasks.ListAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read tasks: %w", err)
	}
	activities, err := src.Activities.ListAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read activities: %w", err)
	}

	if dst == nil {
		return Stats{len(contacts), len(deals), len(tasks), len(activities)}, nil
	}

	// Oldest first, so creation order in the target matches the source.
	contactIDs := make(map[models.ID]models.ID, len(contacts))
	for i := len(contacts) - 1; i >= 0; i-- {
		c := contacts[i]
		created, err := dst.Contacts.Create(ctx, c)
		if err != nil {
			return stats, fmt.Errorf("failed to copy contact %q: %w", c.Name, err)
		}
		contactIDs[c.ID] = created.ID
		stats.Contacts++
	}

	dealIDs := make(map[models.ID]models.ID, len(deals))
	for i := len(deals) - 1; i >= 0; i-- {
		d := deals[i]
		d.ContactID = contactIDs[d.ContactID]
		created, err := dst.Deals.Create(ctx, d)
		if err != nil {
			return stats, fmt.Errorf("failed to copy deal %q: %w", d.Title, err)
		}
		dealIDs[deals[i].ID] = created.ID
		stats.Deals++
	}

	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		t.ContactID = contactIDs[t.ContactID]
		if _, err := dst.Tasks.Create(ctx, t); err != nil {
			return stats, fmt.Errorf("failed to copy task %q: %w", t.Title, err)
		}
		stats.Tasks++
	}

	for i := len(activities) - 1; i >= 0; i-- {
		a := activities[i]
		a.ContactID = contactIDs[a.ContactID]
		a.DealID = dealIDs[a.DealID]
		if _, err := dst.Activities.Create(ctx, a); err != nil {
			return stats, fmt.Errorf("failed to copy activity: %w", err)
		}
		stats.Activities++
	}

	logger.Info("migration complete",
		zap.Int("contacts", stats.Contacts),
		zap.Int("deals", stats.Deals),
		zap.Int("tasks", stats.Tasks),
		zap.Int("activities", stats.Activities))
	return stats, nil
}
