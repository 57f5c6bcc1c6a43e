// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, and delete_contact tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

type ContactHandlers struct {
	ws *session.Workspace
}

func NewContactHandlers(ws *session.Workspace) *ContactHandlers {
	return &ContactHandlers{ws: ws}
}

type AddContactInput struct {
	Name    string `json:"name" jsonschema:"Contact name (required)"`
	Email   string `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone   string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Company string `json:"company,omitempty" jsonschema:"Company name"`
	Tags    string `json:"tags,omitempty" jsonschema:"Comma-separated tags"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	contact, err := h.ws.CreateContact(ctx, models.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Tags:    models.ParseTags(input.Tags),
	})
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search name, email, or company"`
	Tag   string `json:"tag,omitempty" jsonschema:"Only contacts carrying this tag"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Tags     []string        `json:"tags"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, FindContactsOutput{}, err
	}

	found := views.FilterContacts(snap.Contacts, views.ContactFilter{Search: input.Query, Tag: input.Tag})
	if limit := limitOrDefault(input.Limit, 10); len(found) > limit {
		found = found[:limit]
	}

	out := FindContactsOutput{Contacts: make([]ContactOutput, len(found)), Tags: views.AllTags(snap.Contacts)}
	for i, c := range found {
		out.Contacts[i] = contactToOutput(c)
	}
	return nil, out, nil
}

type UpdateContactInput struct {
	ID      string  `json:"id" jsonschema:"Contact ID (required)"`
	Name    *string `json:"name,omitempty" jsonschema:"Updated contact name"`
	Email   *string `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone   *string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company *string `json:"company,omitempty" jsonschema:"Updated company"`
	Tags    *string `json:"tags,omitempty" jsonschema:"Replacement comma-separated tags"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	patch := models.ContactPatch{Name: input.Name, Email: input.Email, Phone: input.Phone, Company: input.Company}
	if input.Tags != nil {
		patch.Tags = models.Ptr(models.ParseTags(*input.Tags))
	}

	contact, err := h.ws.UpdateContact(ctx, models.ID(input.ID), patch)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, contactToOutput(contact), nil
}

type DeleteInput struct {
	ID string `json:"id" jsonschema:"Record ID (required)"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.ws.DeleteContact(ctx, models.ID(input.ID)); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Success: true, Message: fmt.Sprintf("Deleted contact: %s", input.ID)}, nil
}
