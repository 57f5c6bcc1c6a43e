// ABOUTME: Task list derivations: status views, overdue and due-today checks
// ABOUTME: Sorts incomplete tasks before completed ones, then by due date
package views

import (
	"sort"
	"time"

	"github.com/harperreed/crmsync/models"
)

type TaskFilter string

const (
	TasksAll       TaskFilter = "all"
	TasksPending   TaskFilter = "pending"
	TasksCompleted TaskFilter = "completed"
	TasksOverdue   TaskFilter = "overdue"
)

func (f TaskFilter) Valid() bool {
	switch f {
	case TasksAll, TasksPending, TasksCompleted, TasksOverdue:
		return true
	}
	return false
}

// IsOverdue reports an incomplete task due before the start of now's local day.
func IsOverdue(t models.Task, now time.Time) bool {
	return !t.Completed && t.DueDate.Before(models.StartOfDay(now))
}

// IsDueToday reports whether the task falls on now's local day.
func IsDueToday(t models.Task, now time.Time) bool {
	start := models.StartOfDay(now)
	return !t.DueDate.Before(start) && t.DueDate.Before(start.AddDate(0, 0, 1))
}

// FilterTasks applies a status view. An unknown filter behaves like all.
func FilterTasks(tasks []models.Task, f TaskFilter, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		switch f {
		case TasksPending:
			if t.Completed {
				continue
			}
		case TasksCompleted:
			if !t.Completed {
				continue
			}
		case TasksOverdue:
			if !IsOverdue(t, now) {
				continue
			}
		}
		out = append(out, t)
	}
	SortTasks(out)
	return out
}

// SortTasks orders incomplete before completed, then by due date ascending.
// Ties keep their input order.
func SortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Completed != tasks[j].Completed {
			return !tasks[i].Completed
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
