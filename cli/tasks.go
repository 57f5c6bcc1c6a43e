// ABOUTME: Task and activity CLI commands
// ABOUTME: Adds, lists, toggles, and deletes tasks; logs and lists activities
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

func AddTaskCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("add-task", out)
	title := fs.String("title", "", "Task title (required)")
	due := fs.String("due", "", "Due date YYYY-MM-DD (default today)")
	priority := fs.String("priority", string(models.PriorityMedium), "low, medium, or high")
	contact := fs.String("contact", "", "Contact ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	dueDate := models.StartOfDay(time.Now())
	if *due != "" {
		t, err := time.ParseInLocation("2006-01-02", *due, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --due date: %w", err)
		}
		dueDate = t
	}

	task, err := ws.CreateTask(ctx, models.Task{
		Title:     *title,
		DueDate:   dueDate,
		Priority:  models.Priority(*priority),
		ContactID: models.ID(*contact),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Task created: %s due %s (ID: %s)\n", task.Title, task.DueDate.Format("2006-01-02"), task.ID)
	return nil
}

// ListTasksCommand lists tasks, incomplete first then by due date.
func ListTasksCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("list-tasks", out)
	filter := fs.String("filter", string(views.TasksAll), "all, pending, completed, or overdue")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f := views.TaskFilter(*filter)
	if !f.Valid() {
		return fmt.Errorf("unknown filter %q", *filter)
	}

	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}
	now := time.Now()
	tasks := views.FilterTasks(snap.Tasks, f, now)
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found")
		return nil
	}

	w := newTable(out, "", "TITLE", "DUE", "PRIORITY", "ID")
	for _, t := range tasks {
		mark := "[ ]"
		switch {
		case t.Completed:
			mark = "[x]"
		case views.IsOverdue(t, now):
			mark = "[!]"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, t.Title, t.DueDate.Format("2006-01-02"), t.Priority, t.ID)
	}
	_ = w.Flush()
	return nil
}

func ToggleTaskCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("toggle-task", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireID(fs, "task")
	if err != nil {
		return err
	}
	if err := ws.Refresh(ctx); err != nil {
		return err
	}
	task, err := ws.ToggleTask(ctx, models.ID(id))
	if err != nil {
		return err
	}
	state := "reopened"
	if task.Completed {
		state = "completed"
	}
	fmt.Fprintf(out, "✓ Task %s: %s\n", state, task.Title)
	return nil
}

func DeleteTaskCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("delete-task", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireID(fs, "task")
	if err != nil {
		return err
	}
	if err := ws.DeleteTask(ctx, models.ID(id)); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Deleted task: %s\n", id)
	return nil
}

// LogActivityCommand records an activity and touches the contact.
func LogActivityCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("log-activity", out)
	typ := fs.String("type", string(models.ActivityNote), "call, email, meeting, or note")
	description := fs.String("description", "", "What happened (required)")
	contact := fs.String("contact", "", "Contact ID")
	deal := fs.String("deal", "", "Deal ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *description == "" {
		return fmt.Errorf("--description is required")
	}

	a, err := ws.LogActivity(ctx, models.Activity{
		Type:        models.ActivityType(*typ),
		Description: *description,
		ContactID:   models.ID(*contact),
		DealID:      models.ID(*deal),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Logged %s (ID: %s)\n", a.Type, a.ID)
	return nil
}

func ListActivitiesCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("list-activities", out)
	limit := fs.Int("limit", 20, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}
	w := newTable(out, "DATE", "TYPE", "DESCRIPTION", "ID")
	for _, a := range views.RecentActivities(snap.Activities, *limit) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Date.Format("2006-01-02 15:04"), a.Type, a.Description, a.ID)
	}
	_ = w.Flush()
	return nil
}
