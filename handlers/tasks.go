// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements add_task, list_tasks, complete_task, and delete_task tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

type TaskHandlers struct {
	ws  *session.Workspace
	now func() time.Time
}

func NewTaskHandlers(ws *session.Workspace) *TaskHandlers {
	return &TaskHandlers{ws: ws, now: time.Now}
}

type AddTaskInput struct {
	Title     string `json:"title" jsonschema:"Task title (required)"`
	DueDate   string `json:"due_date" jsonschema:"Due date (YYYY-MM-DD, required)"`
	Priority  string `json:"priority,omitempty" jsonschema:"low, medium, or high (default medium)"`
	ContactID string `json:"contact_id,omitempty" jsonschema:"Related contact ID"`
}

func (h *TaskHandlers) AddTask(ctx context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.Title == "" || input.DueDate == "" {
		return nil, TaskOutput{}, fmt.Errorf("title and due_date are required")
	}
	due, err := parseDate("due_date", input.DueDate)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	priority := models.Priority(input.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}

	task, err := h.ws.CreateTask(ctx, models.Task{
		Title:     input.Title,
		DueDate:   models.DateOnly(due),
		Priority:  priority,
		ContactID: models.ID(input.ContactID),
	})
	if err != nil {
		return nil, TaskOutput{}, err
	}
	return nil, taskToOutput(task, h.now()), nil
}

type ListTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"all, pending, completed, or overdue (default all)"`
}

type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
}

func (h *TaskHandlers) ListTasks(ctx context.Context, _ *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	filter := views.TaskFilter(input.Filter)
	if filter == "" {
		filter = views.TasksAll
	}
	if !filter.Valid() {
		return nil, ListTasksOutput{}, fmt.Errorf("unknown filter %q", input.Filter)
	}

	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, ListTasksOutput{}, err
	}
	now := h.now()
	tasks := views.FilterTasks(snap.Tasks, filter, now)
	out := ListTasksOutput{Tasks: make([]TaskOutput, len(tasks))}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t, now)
	}
	return nil, out, nil
}

type ToggleTaskInput struct {
	ID string `json:"id" jsonschema:"Task ID (required)"`
}

func (h *TaskHandlers) ToggleTask(ctx context.Context, _ *mcp.CallToolRequest, input ToggleTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.ID == "" {
		return nil, TaskOutput{}, fmt.Errorf("id is required")
	}
	if err := h.ws.Refresh(ctx); err != nil {
		return nil, TaskOutput{}, err
	}
	task, err := h.ws.ToggleTask(ctx, models.ID(input.ID))
	if err != nil {
		return nil, TaskOutput{}, err
	}
	return nil, taskToOutput(task, h.now()), nil
}

func (h *TaskHandlers) DeleteTask(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.ws.DeleteTask(ctx, models.ID(input.ID)); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Success: true, Message: fmt.Sprintf("Deleted task: %s", input.ID)}, nil
}
