// ABOUTME: Tests for the pure view derivations over contacts, deals, tasks, and activities
// ABOUTME: Covers search and tag filtering, stage partitioning, task status, metrics, and the dashboard
package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmsync/models"
)

var now = time.Date(2026, 3, 12, 15, 30, 0, 0, time.Local)

func day(offset int) time.Time {
	return models.StartOfDay(now).AddDate(0, 0, offset)
}

func TestFilterContactsSearchAndTag(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: "Ada Lovelace", Email: "ada@engine.io", Tags: []string{"vip"}},
		{ID: "2", Name: "Grace Hopper", Company: "Navy", Tags: []string{"vip", "navy"}},
		{ID: "3", Name: "Alan", Company: "Bletchley Park", Tags: []string{"lead"}},
	}

	got := FilterContacts(contacts, ContactFilter{Search: "NAVY"})
	require.Len(t, got, 1)
	assert.Equal(t, models.ID("2"), got[0].ID)

	got = FilterContacts(contacts, ContactFilter{Search: "a", Tag: "vip"})
	assert.Len(t, got, 2)

	got = FilterContacts(contacts, ContactFilter{Search: "engine", Tag: "navy"})
	assert.Empty(t, got, "search and tag must both match")

	assert.Len(t, FilterContacts(contacts, ContactFilter{}), 3)
	assert.Equal(t, []string{"vip", "navy", "lead"}, AllTags(contacts))
}

func TestGroupByStagePartitions(t *testing.T) {
	deals := []models.Deal{
		{ID: "1", Stage: models.StageLead, Value: 100},
		{ID: "2", Stage: models.StageClosedWon, Value: 300},
		{ID: "3", Stage: models.StageLead, Value: 50},
		{ID: "4", Stage: models.StageNegotiation, Value: 25},
	}

	buckets := GroupByStage(deals)
	require.Len(t, buckets, len(models.Stages))

	total := 0
	for i, b := range buckets {
		assert.Equal(t, models.Stages[i], b.Stage)
		assert.NotNil(t, b.Deals)
		for _, d := range b.Deals {
			assert.Equal(t, b.Stage, d.Stage)
		}
		total += len(b.Deals)
	}
	assert.Equal(t, len(deals), total)

	assert.Equal(t, []models.ID{"1", "3"}, []models.ID{buckets[0].Deals[0].ID, buckets[0].Deals[1].ID})
	assert.Equal(t, 150.0, buckets[0].Value)
	assert.Equal(t, "Won", buckets[4].Label)
}

func TestOverdueAndToggle(t *testing.T) {
	task := models.Task{ID: "t", Title: "Follow up", DueDate: day(-1)}
	assert.True(t, IsOverdue(task, now))
	assert.Len(t, FilterTasks([]models.Task{task}, TasksOverdue, now), 1)

	task.Completed = true
	assert.False(t, IsOverdue(task, now))
	assert.Empty(t, FilterTasks([]models.Task{task}, TasksOverdue, now))

	today := models.Task{DueDate: day(0)}
	assert.False(t, IsOverdue(today, now))
	assert.True(t, IsDueToday(today, now))
	assert.False(t, IsDueToday(models.Task{DueDate: day(1)}, now))
}

func TestFilterTasksSortsStable(t *testing.T) {
	tasks := []models.Task{
		{ID: "done", DueDate: day(-5), Completed: true},
		{ID: "later", DueDate: day(3)},
		{ID: "soon-a", DueDate: day(1)},
		{ID: "soon-b", DueDate: day(1)},
	}

	got := FilterTasks(tasks, TasksAll, now)
	ids := make([]models.ID, len(got))
	for i, task := range got {
		ids[i] = task.ID
	}
	assert.Equal(t, []models.ID{"soon-a", "soon-b", "later", "done"}, ids)

	assert.Len(t, FilterTasks(tasks, TasksPending, now), 3)
	assert.Len(t, FilterTasks(tasks, TasksCompleted, now), 1)
	assert.Equal(t, models.ID("done"), tasks[0].ID, "input is not reordered")
	assert.False(t, TaskFilter("someday").Valid())
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(nil, nil, nil)
	assert.Zero(t, m.ConversionRate)
	assert.Zero(t, m.AverageDealSize)

	deals := []models.Deal{
		{Stage: models.StageClosedWon, Value: 900},
		{Stage: models.StageClosedLost, Value: 100},
		{Stage: models.StageProposal, Value: 500},
	}
	m = ComputeMetrics([]models.Contact{{}, {}}, deals, []models.Activity{{}})
	assert.Equal(t, 2, m.TotalContacts)
	assert.Equal(t, 3, m.TotalDeals)
	assert.Equal(t, 1, m.ActiveDeals)
	assert.Equal(t, 1500.0, m.PipelineValue)
	assert.Equal(t, 900.0, m.Revenue)
	assert.InDelta(t, 33.333, m.ConversionRate, 0.001)
	assert.Equal(t, 900.0, m.AverageDealSize)
	assert.Equal(t, 1, m.TotalActivities)
}

func TestActivityTypeCounts(t *testing.T) {
	counts := ActivityTypeCounts([]models.Activity{
		{Type: models.ActivityCall},
		{Type: models.ActivityCall},
		{Type: models.ActivityNote},
		{Type: "fax"},
	})
	assert.Equal(t, []ActivityCount{
		{Type: models.ActivityEmail, Count: 0},
		{Type: models.ActivityCall, Count: 2},
		{Type: models.ActivityMeeting, Count: 0},
		{Type: models.ActivityNote, Count: 1},
	}, counts)
}

func TestBuildDashboard(t *testing.T) {
	var activities []models.Activity
	for i, id := range []models.ID{"a", "b", "c", "d", "e", "f", "g"} {
		activities = append(activities, models.Activity{ID: id, Date: now.Add(-time.Duration(i) * time.Hour)})
	}
	s := Snapshot{
		Tasks: []models.Task{
			{ID: "late", DueDate: day(-2)},
			{ID: "today", DueDate: day(0)},
			{ID: "today-done", DueDate: day(0), Completed: true},
			{ID: "next", DueDate: day(2)},
		},
		Activities: activities,
	}

	d := BuildDashboard(s, now)
	require.Len(t, d.TasksDueToday, 1)
	assert.Equal(t, models.ID("today"), d.TasksDueToday[0].ID)
	assert.Equal(t, 1, d.OverdueTasks)

	require.Len(t, d.RecentActivities, DashboardListSize)
	assert.Equal(t, models.ID("a"), d.RecentActivities[0].ID)

	require.Len(t, d.UpcomingTasks, 2)
	assert.Equal(t, models.ID("today"), d.UpcomingTasks[0].ID)
	assert.Equal(t, models.ID("next"), d.UpcomingTasks[1].ID)

	r := BuildReport(s)
	assert.Len(t, r.Stages, len(models.Stages))
	assert.Equal(t, 7, r.Metrics.TotalActivities)
}
