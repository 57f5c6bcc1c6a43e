// ABOUTME: Visualization and reporting MCP handlers
// ABOUTME: Provides generate_graph, get_dashboard, and get_report tools
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
	"github.com/harperreed/crmsync/viz"
)

type VizHandlers struct {
	ws  *session.Workspace
	now func() time.Time
}

func NewVizHandlers(ws *session.Workspace) *VizHandlers {
	return &VizHandlers{ws: ws, now: time.Now}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline or contact"`
	EntityID string `json:"entity_id,omitempty" jsonschema:"Contact ID (required for contact graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}
	generator := viz.NewGraphGenerator(snap)

	var dot string
	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "contact":
		if input.EntityID == "" {
			return nil, GenerateGraphOutput{}, fmt.Errorf("entity_id required for contact graph")
		}
		dot, err = generator.GenerateContactGraph(ctx, models.ID(input.EntityID))
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, contact)", input.Type)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: strings.Count(dot, "[label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}

type DashboardInput struct{}

type DashboardOutput struct {
	Metrics          views.Metrics    `json:"metrics"`
	TasksDueToday    []TaskOutput     `json:"tasks_due_today"`
	OverdueTasks     int              `json:"overdue_tasks"`
	RecentActivities []ActivityOutput `json:"recent_activities"`
	UpcomingTasks    []TaskOutput     `json:"upcoming_tasks"`
}

func (h *VizHandlers) GetDashboard(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, DashboardOutput{}, err
	}
	now := h.now()
	d := views.BuildDashboard(snap, now)

	out := DashboardOutput{
		Metrics:          d.Metrics,
		OverdueTasks:     d.OverdueTasks,
		TasksDueToday:    make([]TaskOutput, len(d.TasksDueToday)),
		RecentActivities: make([]ActivityOutput, len(d.RecentActivities)),
		UpcomingTasks:    make([]TaskOutput, len(d.UpcomingTasks)),
	}
	for i, t := range d.TasksDueToday {
		out.TasksDueToday[i] = taskToOutput(t, now)
	}
	for i, a := range d.RecentActivities {
		out.RecentActivities[i] = activityToOutput(a)
	}
	for i, t := range d.UpcomingTasks {
		out.UpcomingTasks[i] = taskToOutput(t, now)
	}
	return nil, out, nil
}

type ReportInput struct{}

func (h *VizHandlers) GetReport(ctx context.Context, _ *mcp.CallToolRequest, _ ReportInput) (*mcp.CallToolResult, views.Report, error) {
	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, views.Report{}, err
	}
	return nil, views.BuildReport(snap), nil
}
