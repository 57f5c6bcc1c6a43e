// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only JSON views of each collection, the pipeline, and the dashboard
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

// ResourceURIs lists every fixed resource this server exposes.
var ResourceURIs = []string{
	"crm://contacts",
	"crm://deals",
	"crm://tasks",
	"crm://activities",
	"crm://pipeline",
	"crm://dashboard",
}

type ResourceHandlers struct {
	ws  *session.Workspace
	now func() time.Time
}

func NewResourceHandlers(ws *session.Workspace) *ResourceHandlers {
	return &ResourceHandlers{ws: ws, now: time.Now}
}

// ReadResource handles crm://<collection> and crm://<collection>/<id>.
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}
	parts := strings.Split(strings.TrimPrefix(uri, "crm://"), "/")

	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, err
	}

	var id models.ID
	if len(parts) > 1 {
		id = models.ID(parts[1])
	}

	var payload interface{}
	switch parts[0] {
	case "contacts":
		payload, err = pick(snap.Contacts, id, models.KindContact, contactToOutput)
	case "deals":
		payload, err = pick(snap.Deals, id, models.KindDeal, dealToOutput)
	case "tasks":
		now := h.now()
		payload, err = pick(snap.Tasks, id, models.KindTask, func(t models.Task) TaskOutput { return taskToOutput(t, now) })
	case "activities":
		payload, err = pick(snap.Activities, id, models.KindActivity, activityToOutput)
	case "pipeline":
		payload = views.StageValues(snap.Deals)
	case "dashboard":
		payload = views.BuildDashboard(snap, h.now())
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", parts[0], err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: "application/json", Text: string(data)},
	}}, nil
}

// pick converts the whole collection, or the one record matching id.
func pick[T models.Entity[T], O any](items []T, id models.ID, kind models.Kind, convert func(T) O) (interface{}, error) {
	if id == "" {
		out := make([]O, len(items))
		for i, item := range items {
			out[i] = convert(item)
		}
		return out, nil
	}
	for _, item := range items {
		if item.EntityID() == id {
			return convert(item), nil
		}
	}
	return nil, models.NotFound(kind, "read", id)
}
