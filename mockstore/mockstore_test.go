// ABOUTME: Tests for the in-memory mock store
// ABOUTME: Covers copies, prepend-on-create, not-found errors, ordering, and latency cancellation

package mockstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func noDelay() Options {
	return Options{Now: func() time.Time { return testNow }}
}

func seedContacts() []models.Contact {
	return []models.Contact{
		{ID: "c1", Name: "Old", Tags: []string{"a"}, CreatedAt: testNow.Add(-48 * time.Hour)},
		{ID: "c2", Name: "New", Tags: []string{"b"}, CreatedAt: testNow.Add(-1 * time.Hour)},
	}
}

func TestCreateAssignsULIDAndPrepends(t *testing.T) {
	ctx := context.Background()
	s := NewContacts(seedContacts(), noDelay())

	created, err := s.Create(ctx, models.Contact{Name: "Ada", Tags: []string{"vip", " vip "}})
	require.NoError(t, err)

	_, err = ulid.Parse(string(created.ID))
	assert.NoError(t, err, "ids are ULIDs")
	assert.Equal(t, []string{"vip"}, created.Tags)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Equal(t, testNow, created.LastActivity)

	s.mu.Lock()
	first := s.items[0]
	s.mu.Unlock()
	assert.Equal(t, created.ID, first.ID, "create prepends")

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, *got)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewContacts(seedContacts(), noDelay())

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	all[0].Tags[0] = "mutated"
	all[0].Name = "mutated"

	again, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", again[0].Name)
	assert.Equal(t, []string{"b"}, again[0].Tags)

	input := models.Contact{Name: "Grace", Tags: []string{"x"}}
	created, err := s.Create(ctx, input)
	require.NoError(t, err)
	input.Tags[0] = "changed after create"

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)
}

func TestUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	closeDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewDeals([]models.Deal{{ID: "d1", Title: "Pilot", Value: 100, Stage: models.StageLead, ExpectedClose: &closeDate}}, noDelay())

	updated, err := s.Update(ctx, "d1", models.DealPatch{Stage: models.Ptr(models.StageProposal)})
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, updated.Stage)
	assert.Equal(t, "Pilot", updated.Title)
	assert.Equal(t, 100.0, updated.Value)
	require.NotNil(t, updated.ExpectedClose)
	assert.True(t, updated.ExpectedClose.Equal(closeDate))
}

func TestMissingRecords(t *testing.T) {
	ctx := context.Background()
	s := NewTasks(nil, noDelay())

	got, err := s.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Update(ctx, "nope", models.TaskPatch{Completed: models.Ptr(true)})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "task nope not found", err.Error())

	ok, err := s.Delete(ctx, "nope")
	assert.False(t, ok)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewContacts(seedContacts(), noDelay())

	ok, err := s.Delete(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.ID("c2"), all[0].ID)
}

func TestGetAllOrderAndCap(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var tasks []models.Task
	for i := 0; i < records.MaxPageSize+20; i++ {
		tasks = append(tasks, models.Task{
			ID:       models.ID(fmt.Sprintf("t%d", i)),
			Title:    "t",
			DueDate:  day.AddDate(0, 0, (records.MaxPageSize+20)-i),
			Priority: models.PriorityLow,
		})
	}
	s := NewTasks(tasks, noDelay())

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, records.MaxPageSize)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].DueDate.Before(all[i-1].DueDate), "tasks are due-date ascending")
	}
	assert.Equal(t, models.ID(fmt.Sprintf("t%d", records.MaxPageSize+19)), all[0].ID)

	activities := NewActivities([]models.Activity{
		{ID: "a1", Type: models.ActivityNote, Description: "old", Date: day},
		{ID: "a2", Type: models.ActivityNote, Description: "new", Date: day.Add(time.Hour)},
	}, noDelay())
	acts, err := activities.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ID("a2"), acts[0].ID)
}

func TestLatencyHonorsCancellation(t *testing.T) {
	s := NewContacts(seedContacts(), Options{LatencyMin: time.Hour, LatencyMax: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.GetAll(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestLatencyWithinRange(t *testing.T) {
	s := NewContacts(nil, Options{LatencyMin: 5 * time.Millisecond, LatencyMax: 10 * time.Millisecond})

	start := time.Now()
	_, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestConcurrentCreates(t *testing.T) {
	s := NewContacts(nil, noDelay())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, models.Contact{Name: fmt.Sprintf("c%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	ids := map[models.ID]bool{}
	for _, c := range all {
		ids[c.ID] = true
	}
	assert.Len(t, ids, 50, "ids are unique")
}
