// ABOUTME: Tool output shapes shared by the MCP handlers
// ABOUTME: Converts records to JSON-friendly structs with formatted dates
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

const dateLayout = "2006-01-02"

type ContactOutput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Company      string   `json:"company,omitempty"`
	Tags         []string `json:"tags"`
	CreatedAt    string   `json:"created_at"`
	LastActivity string   `json:"last_activity,omitempty"`
}

func contactToOutput(c models.Contact) ContactOutput {
	out := ContactOutput{
		ID:        string(c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Tags:      c.Tags,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !c.LastActivity.IsZero() {
		out.LastActivity = c.LastActivity.Format(time.RFC3339)
	}
	return out
}

type DealOutput struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Value         float64 `json:"value"`
	ContactID     string  `json:"contact_id,omitempty"`
	Stage         string  `json:"stage"`
	Probability   int     `json:"probability"`
	ExpectedClose string  `json:"expected_close,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func dealToOutput(d models.Deal) DealOutput {
	out := DealOutput{
		ID:          string(d.ID),
		Title:       d.Title,
		Value:       d.Value,
		ContactID:   string(d.ContactID),
		Stage:       string(d.Stage),
		Probability: d.Probability,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.ExpectedClose != nil {
		out.ExpectedClose = d.ExpectedClose.Format(dateLayout)
	}
	return out
}

type TaskOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ContactID string `json:"contact_id,omitempty"`
	DueDate   string `json:"due_date"`
	Priority  string `json:"priority"`
	Completed bool   `json:"completed"`
	Overdue   bool   `json:"overdue"`
}

func taskToOutput(t models.Task, now time.Time) TaskOutput {
	return TaskOutput{
		ID:        string(t.ID),
		Title:     t.Title,
		ContactID: string(t.ContactID),
		DueDate:   t.DueDate.Format(dateLayout),
		Priority:  string(t.Priority),
		Completed: t.Completed,
		Overdue:   views.IsOverdue(t, now),
	}
}

type ActivityOutput struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ContactID   string `json:"contact_id,omitempty"`
	DealID      string `json:"deal_id,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Completed   bool   `json:"completed"`
}

func activityToOutput(a models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:          string(a.ID),
		Type:        string(a.Type),
		ContactID:   string(a.ContactID),
		DealID:      string(a.DealID),
		Description: a.Description,
		Date:        a.Date.Format(time.RFC3339),
		Completed:   a.Completed,
	}
}

type DeleteOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// snapshot refreshes the workspace and returns its state.
func snapshot(ctx context.Context, ws *session.Workspace) (views.Snapshot, error) {
	if err := ws.Refresh(ctx); err != nil {
		return views.Snapshot{}, err
	}
	return ws.Snapshot(), nil
}

// parseDate accepts a calendar date or an RFC3339 timestamp; dates land on
// local midnight.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s (use YYYY-MM-DD or RFC3339): %w", field, err)
	}
	return t, nil
}

func optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
