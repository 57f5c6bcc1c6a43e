// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_activity and list_activities tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

type ActivityHandlers struct {
	ws *session.Workspace
}

func NewActivityHandlers(ws *session.Workspace) *ActivityHandlers {
	return &ActivityHandlers{ws: ws}
}

type LogActivityInput struct {
	Type        string `json:"type" jsonschema:"call, email, meeting, or note (required)"`
	Description string `json:"description" jsonschema:"What happened (required)"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Contact involved; their last activity is updated"`
	DealID      string `json:"deal_id,omitempty" jsonschema:"Related deal ID"`
	Date        string `json:"date,omitempty" jsonschema:"When it happened (RFC3339, defaults to now)"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	if input.Type == "" || input.Description == "" {
		return nil, ActivityOutput{}, fmt.Errorf("type and description are required")
	}
	date, err := optionalDate("date", &input.Date)
	if err != nil {
		return nil, ActivityOutput{}, err
	}

	a := models.Activity{
		Type:        models.ActivityType(input.Type),
		Description: input.Description,
		ContactID:   models.ID(input.ContactID),
		DealID:      models.ID(input.DealID),
	}
	if date != nil {
		a.Date = *date
	}

	created, err := h.ws.LogActivity(ctx, a)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	return nil, activityToOutput(created), nil
}

type ListActivitiesInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only activities for this contact"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results (default 20)"`
}

type ListActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
}

func (h *ActivityHandlers) ListActivities(ctx context.Context, _ *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, ListActivitiesOutput{}, err
	}

	var matched []models.Activity
	for _, a := range snap.Activities {
		if input.ContactID == "" || a.ContactID == models.ID(input.ContactID) {
			matched = append(matched, a)
		}
	}
	recent := views.RecentActivities(matched, limitOrDefault(input.Limit, 20))

	out := ListActivitiesOutput{Activities: make([]ActivityOutput, len(recent))}
	for i, a := range recent {
		out.Activities[i] = activityToOutput(a)
	}
	return nil, out, nil
}
