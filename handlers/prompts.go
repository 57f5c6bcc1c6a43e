// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds contact-summary, deal-analysis, and follow-up-suggestions prompts from live data
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

// Prompts lists the templates served by GetPrompt.
var Prompts = []*mcp.Prompt{
	{
		Name:        "contact-summary",
		Description: "Summarize a contact with their deals, tasks, and recent activity",
		Arguments:   []*mcp.PromptArgument{{Name: "contact_id", Description: "Contact ID", Required: true}},
	},
	{Name: "deal-analysis", Description: "Analyze the deal pipeline and suggest where to focus"},
	{Name: "follow-up-suggestions", Description: "Suggest follow-ups from overdue tasks and quiet contacts"},
}

type PromptHandlers struct {
	ws  *session.Workspace
	now func() time.Time
}

func NewPromptHandlers(ws *session.Workspace) *PromptHandlers {
	return &PromptHandlers{ws: ws, now: time.Now}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, err
	}

	switch request.Params.Name {
	case "contact-summary":
		return h.contactSummary(snap, request.Params.Arguments)
	case "deal-analysis":
		return h.dealAnalysis(snap)
	case "follow-up-suggestions":
		return h.followUps(snap)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) contactSummary(snap views.Snapshot, args map[string]string) (*mcp.GetPromptResult, error) {
	id := models.ID(args["contact_id"])
	if id == "" {
		return nil, fmt.Errorf("contact_id is required")
	}
	var contact *models.Contact
	for i := range snap.Contacts {
		if snap.Contacts[i].ID == id {
			contact = &snap.Contacts[i]
		}
	}
	if contact == nil {
		return nil, models.NotFound(models.KindContact, "summarize", id)
	}

	var text strings.Builder
	text.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	fmt.Fprintf(&text, "Name: %s\n", contact.Name)
	if contact.Email != "" {
		fmt.Fprintf(&text, "Email: %s\n", contact.Email)
	}
	if contact.Company != "" {
		fmt.Fprintf(&text, "Company: %s\n", contact.Company)
	}
	if len(contact.Tags) > 0 {
		fmt.Fprintf(&text, "Tags: %s\n", strings.Join(contact.Tags, ", "))
	}
	if !contact.LastActivity.IsZero() {
		fmt.Fprintf(&text, "Last Activity: %s\n", contact.LastActivity.Format(dateLayout))
	}

	for _, d := range snap.Deals {
		if d.ContactID == id {
			fmt.Fprintf(&text, "Deal: %s (%s, %s)\n", d.Title, d.Stage.Label(), viz.FormatMoney(d.Value))
		}
	}
	for _, t := range snap.Tasks {
		if t.ContactID == id && !t.Completed {
			fmt.Fprintf(&text, "Open task: %s due %s\n", t.Title, t.DueDate.Format(dateLayout))
		}
	}
	for _, a := range views.RecentActivities(snap.Activities, len(snap.Activities)) {
		if a.ContactID == id {
			fmt.Fprintf(&text, "Activity %s: %s %s\n", a.Date.Format(dateLayout), a.Type, a.Description)
		}
	}

	text.WriteString("\nPlease analyze this contact and provide:")
	text.WriteString("\n1. A brief summary of the relationship")
	text.WriteString("\n2. Recommendations for next steps or follow-up actions")
	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), text.String()), nil
}

func (h *PromptHandlers) dealAnalysis(snap views.Snapshot) (*mcp.GetPromptResult, error) {
	m := views.ComputeMetrics(snap.Contacts, snap.Deals, snap.Activities)

	var text strings.Builder
	text.WriteString("Please analyze this sales pipeline:\n\n")
	for _, b := range views.GroupByStage(snap.Deals) {
		fmt.Fprintf(&text, "%s: %d deals, %s\n", b.Label, len(b.Deals), viz.FormatMoney(b.Value))
	}
	fmt.Fprintf(&text, "\nActive deals: %d\nRevenue: %s\nConversion rate: %.1f%%\nAverage deal size: %s\n",
		m.ActiveDeals, viz.FormatMoney(m.Revenue), m.ConversionRate, viz.FormatMoney(m.AverageDealSize))
	text.WriteString("\nIdentify bottlenecks and the deals most worth attention this week.")
	return userPrompt("Pipeline analysis", text.String()), nil
}

func (h *PromptHandlers) followUps(snap views.Snapshot) (*mcp.GetPromptResult, error) {
	now := h.now()

	var text strings.Builder
	text.WriteString("Suggest follow-up actions based on this CRM state:\n\n")
	overdue := views.FilterTasks(snap.Tasks, views.TasksOverdue, now)
	fmt.Fprintf(&text, "Overdue tasks (%d):\n", len(overdue))
	for _, t := range overdue {
		fmt.Fprintf(&text, "- %s (due %s, %s priority)\n", t.Title, t.DueDate.Format(dateLayout), t.Priority)
	}

	cutoff := now.AddDate(0, 0, -30)
	text.WriteString("\nContacts with no activity in 30 days:\n")
	for _, c := range snap.Contacts {
		if c.LastActivity.Before(cutoff) {
			fmt.Fprintf(&text, "- %s (%s)\n", c.Name, c.Company)
		}
	}
	return userPrompt("Follow-up suggestions", text.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}
