// ABOUTME: Dashboard and report view models assembled from one snapshot
// ABOUTME: Combines metrics with today's tasks, recent activity, and upcoming work
package views

import (
	"sort"
	"time"

	"github.com/harperreed/crmsync/models"
)

// DashboardListSize caps the recent and upcoming lists.
const DashboardListSize = 5

// Snapshot is one consistent copy of the four collections.
type Snapshot struct {
	Contacts   []models.Contact  `json:"contacts"`
	Deals      []models.Deal     `json:"deals"`
	Tasks      []models.Task     `json:"tasks"`
	Activities []models.Activity `json:"activities"`
}

type Dashboard struct {
	Metrics          Metrics           `json:"metrics"`
	TasksDueToday    []models.Task     `json:"tasks_due_today"`
	OverdueTasks     int               `json:"overdue_tasks"`
	RecentActivities []models.Activity `json:"recent_activities"`
	UpcomingTasks    []models.Task     `json:"upcoming_tasks"`
}

func BuildDashboard(s Snapshot, now time.Time) Dashboard {
	d := Dashboard{
		Metrics:          ComputeMetrics(s.Contacts, s.Deals, s.Activities),
		TasksDueToday:    []models.Task{},
		RecentActivities: RecentActivities(s.Activities, DashboardListSize),
		UpcomingTasks:    UpcomingTasks(s.Tasks, now, DashboardListSize),
	}
	for _, t := range s.Tasks {
		if !t.Completed && IsDueToday(t, now) {
			d.TasksDueToday = append(d.TasksDueToday, t)
		}
		if IsOverdue(t, now) {
			d.OverdueTasks++
		}
	}
	return d
}

// RecentActivities returns the n most recent activities, newest first.
func RecentActivities(activities []models.Activity, n int) []models.Activity {
	out := append([]models.Activity{}, activities...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// UpcomingTasks returns up to n incomplete tasks due today or later,
// soonest first.
func UpcomingTasks(tasks []models.Task, now time.Time, n int) []models.Task {
	start := models.StartOfDay(now)
	out := []models.Task{}
	for _, t := range tasks {
		if !t.Completed && !t.DueDate.Before(start) {
			out = append(out, t)
		}
	}
	SortTasks(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type Report struct {
	Metrics    Metrics         `json:"metrics"`
	Stages     []StageValue    `json:"stages"`
	Activities []ActivityCount `json:"activities"`
}

func BuildReport(s Snapshot) Report {
	return Report{
		Metrics:    ComputeMetrics(s.Contacts, s.Deals, s.Activities),
		Stages:     StageValues(s.Deals),
		Activities: ActivityTypeCounts(s.Activities),
	}
}
