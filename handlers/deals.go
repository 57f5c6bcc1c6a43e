// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, update_deal, move_deal, delete_deal, and get_pipeline tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

type DealHandlers struct {
	ws *session.Workspace
}

func NewDealHandlers(ws *session.Workspace) *DealHandlers {
	return &DealHandlers{ws: ws}
}

type CreateDealInput struct {
	Title         string  `json:"title" jsonschema:"Deal title (required)"`
	Value         float64 `json:"value,omitempty" jsonschema:"Deal value in dollars"`
	ContactID     string  `json:"contact_id,omitempty" jsonschema:"Primary contact ID"`
	Stage         string  `json:"stage,omitempty" jsonschema:"lead, qualified, proposal, negotiation, closed-won, or closed-lost (default lead)"`
	Probability   int     `json:"probability,omitempty" jsonschema:"Win probability 0-100"`
	ExpectedClose string  `json:"expected_close,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}
	closeDate, err := optionalDate("expected_close", &input.ExpectedClose)
	if err != nil {
		return nil, DealOutput{}, err
	}

	stage := models.Stage(input.Stage)
	if stage == "" {
		stage = models.StageLead
	}
	deal, err := h.ws.CreateDeal(ctx, models.Deal{
		Title:         input.Title,
		Value:         input.Value,
		ContactID:     models.ID(input.ContactID),
		Stage:         stage,
		Probability:   input.Probability,
		ExpectedClose: closeDate,
	})
	if err != nil {
		return nil, DealOutput{}, err
	}
	return nil, dealToOutput(deal), nil
}

type UpdateDealInput struct {
	ID            string   `json:"id" jsonschema:"Deal ID (required)"`
	Title         *string  `json:"title,omitempty" jsonschema:"Updated title"`
	Value         *float64 `json:"value,omitempty" jsonschema:"Updated value in dollars"`
	ContactID     *string  `json:"contact_id,omitempty" jsonschema:"Updated contact ID"`
	Stage         *string  `json:"stage,omitempty" jsonschema:"Updated stage"`
	Probability   *int     `json:"probability,omitempty" jsonschema:"Updated win probability 0-100"`
	ExpectedClose *string  `json:"expected_close,omitempty" jsonschema:"Updated expected close date (YYYY-MM-DD)"`
}

func (h *DealHandlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}
	closeDate, err := optionalDate("expected_close", input.ExpectedClose)
	if err != nil {
		return nil, DealOutput{}, err
	}

	patch := models.DealPatch{
		Title:         input.Title,
		Value:         input.Value,
		Probability:   input.Probability,
		ExpectedClose: closeDate,
	}
	if input.ContactID != nil {
		patch.ContactID = models.Ptr(models.ID(*input.ContactID))
	}
	if input.Stage != nil {
		patch.Stage = models.Ptr(models.Stage(*input.Stage))
	}

	deal, err := h.ws.UpdateDeal(ctx, models.ID(input.ID), patch)
	if err != nil {
		return nil, DealOutput{}, err
	}
	return nil, dealToOutput(deal), nil
}

type MoveDealInput struct {
	ID    string `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage (required)"`
}

func (h *DealHandlers) MoveDeal(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" || input.Stage == "" {
		return nil, DealOutput{}, fmt.Errorf("id and stage are required")
	}
	stage := models.Stage(input.Stage)
	if !stage.Valid() {
		return nil, DealOutput{}, fmt.Errorf("unknown stage %q", input.Stage)
	}
	if err := h.ws.Refresh(ctx); err != nil {
		return nil, DealOutput{}, err
	}

	deal, err := h.ws.MoveDeal(ctx, models.ID(input.ID), stage)
	if err != nil {
		return nil, DealOutput{}, err
	}
	return nil, dealToOutput(deal), nil
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.ws.DeleteDeal(ctx, models.ID(input.ID)); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Success: true, Message: fmt.Sprintf("Deleted deal: %s", input.ID)}, nil
}

type PipelineInput struct{}

type PipelineStageOutput struct {
	Stage string       `json:"stage"`
	Label string       `json:"label"`
	Value float64      `json:"value"`
	Deals []DealOutput `json:"deals"`
}

type PipelineOutput struct {
	Stages []PipelineStageOutput `json:"stages"`
}

func (h *DealHandlers) GetPipeline(ctx context.Context, _ *mcp.CallToolRequest, _ PipelineInput) (*mcp.CallToolResult, PipelineOutput, error) {
	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, PipelineOutput{}, err
	}

	buckets := views.GroupByStage(snap.Deals)
	out := PipelineOutput{Stages: make([]PipelineStageOutput, len(buckets))}
	for i, b := range buckets {
		stage := PipelineStageOutput{Stage: string(b.Stage), Label: b.Label, Value: b.Value, Deals: make([]DealOutput, len(b.Deals))}
		for j, d := range b.Deals {
			stage.Deals[j] = dealToOutput(d)
		}
		out.Stages[i] = stage
	}
	return nil, out, nil
}
