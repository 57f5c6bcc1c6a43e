// ABOUTME: MCP server assembly
// ABOUTME: Registers every CRM tool, resource, and prompt against one workspace
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/session"
)

// NewServer builds an MCP server whose tools all act through ws.
func NewServer(ws *session.Workspace, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "crmsync", Version: version}, nil)

	contacts := NewContactHandlers(ws)
	deals := NewDealHandlers(ws)
	tasks := NewTaskHandlers(ws)
	activities := NewActivityHandlers(ws)
	query := NewQueryHandlers(ws)
	vizHandlers := NewVizHandlers(ws)

	mcp.AddTool(server, &mcp.Tool{Name: "add_contact", Description: "Add a new contact to the CRM"}, contacts.AddContact)
	mcp.AddTool(server, &mcp.Tool{Name: "find_contacts", Description: "Search contacts by name, email, or company, optionally by tag"}, contacts.FindContacts)
	mcp.AddTool(server, &mcp.Tool{Name: "update_contact", Description: "Update an existing contact's information"}, contacts.UpdateContact)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_contact", Description: "Delete a contact"}, contacts.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{Name: "create_deal", Description: "Create a new deal in the pipeline"}, deals.CreateDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "update_deal", Description: "Update an existing deal"}, deals.UpdateDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "move_deal", Description: "Move a deal to another pipeline stage"}, deals.MoveDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_deal", Description: "Delete a deal"}, deals.DeleteDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "get_pipeline", Description: "Deals grouped by stage with stage totals"}, deals.GetPipeline)

	mcp.AddTool(server, &mcp.Tool{Name: "add_task", Description: "Add a task with a due date"}, tasks.AddTask)
	mcp.AddTool(server, &mcp.Tool{Name: "list_tasks", Description: "List tasks by status: all, pending, completed, or overdue"}, tasks.ListTasks)
	mcp.AddTool(server, &mcp.Tool{Name: "toggle_task", Description: "Mark a task complete or reopen it"}, tasks.ToggleTask)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_task", Description: "Delete a task"}, tasks.DeleteTask)

	mcp.AddTool(server, &mcp.Tool{Name: "log_activity", Description: "Log a call, email, meeting, or note and update the contact's last activity"}, activities.LogActivity)
	mcp.AddTool(server, &mcp.Tool{Name: "list_activities", Description: "Recent activities, newest first"}, activities.ListActivities)

	mcp.AddTool(server, &mcp.Tool{Name: "query_crm", Description: "Universal query tool for filtering contacts, deals, tasks, or activities"}, query.QueryCRM)
	mcp.AddTool(server, &mcp.Tool{Name: "generate_graph", Description: "Generate a GraphViz graph of the pipeline or a contact's network"}, vizHandlers.GenerateGraph)
	mcp.AddTool(server, &mcp.Tool{Name: "get_dashboard", Description: "Dashboard metrics, today's tasks, and recent activity"}, vizHandlers.GetDashboard)
	mcp.AddTool(server, &mcp.Tool{Name: "get_report", Description: "Pipeline value by stage and activity counts"}, vizHandlers.GetReport)

	resources := NewResourceHandlers(ws)
	for _, uri := range ResourceURIs {
		server.AddResource(&mcp.Resource{URI: uri, Name: uri, MIMEType: "application/json"}, resources.ReadResource)
	}

	prompts := NewPromptHandlers(ws)
	for _, p := range Prompts {
		server.AddPrompt(p, prompts.GetPrompt)
	}
	return server
}
