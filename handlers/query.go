// ABOUTME: Universal query tool handler
// ABOUTME: Implements flexible filtering across all CRM entity types
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
)

type QueryHandlers struct {
	ws  *session.Workspace
	now func() time.Time
}

func NewQueryHandlers(ws *session.Workspace) *QueryHandlers {
	return &QueryHandlers{ws: ws, now: time.Now}
}

type QueryCRMInput struct {
	EntityType string                 `json:"entity_type" jsonschema:"Type of entity to query (contact, deal, task, activity)"`
	Query      string                 `json:"query,omitempty" jsonschema:"Case-insensitive text search"`
	Filters    map[string]interface{} `json:"filters,omitempty" jsonschema:"Filters: tag, stage, status, type, contact_id, min_value, max_value"`
	Limit      int                    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string        `json:"entity_type"`
	Results    []interface{} `json:"results"`
	Count      int           `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, _ *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	input.Limit = limitOrDefault(input.Limit, 10)

	kind := models.Kind(input.EntityType)
	switch kind {
	case models.KindContact, models.KindDeal, models.KindTask, models.KindActivity:
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: contact, deal, task, activity)", input.EntityType)
	}

	snap, err := snapshot(ctx, h.ws)
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	var results []interface{}
	switch kind {
	case models.KindContact:
		results, err = h.queryContacts(snap, input)
	case models.KindDeal:
		results, err = h.queryDeals(snap, input)
	case models.KindTask:
		results, err = h.queryTasks(snap, input)
	case models.KindActivity:
		results, err = h.queryActivities(snap, input)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	if len(results) > input.Limit {
		results = results[:input.Limit]
	}
	if results == nil {
		results = []interface{}{}
	}
	return nil, QueryCRMOutput{EntityType: input.EntityType, Results: results, Count: len(results)}, nil
}

func (h *QueryHandlers) queryContacts(snap views.Snapshot, input QueryCRMInput) ([]interface{}, error) {
	tag, _ := stringFilter(input.Filters, "tag")
	var results []interface{}
	for _, c := range views.FilterContacts(snap.Contacts, views.ContactFilter{Search: input.Query, Tag: tag}) {
		results = append(results, contactToOutput(c))
	}
	return results, nil
}

func (h *QueryHandlers) queryDeals(snap views.Snapshot, input QueryCRMInput) ([]interface{}, error) {
	stage, _ := stringFilter(input.Filters, "stage")
	if stage != "" && !models.Stage(stage).Valid() {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	contactID, _ := stringFilter(input.Filters, "contact_id")
	minValue, hasMin := numberFilter(input.Filters, "min_value")
	maxValue, hasMax := numberFilter(input.Filters, "max_value")

	var results []interface{}
	for _, d := range snap.Deals {
		switch {
		case stage != "" && d.Stage != models.Stage(stage):
		case contactID != "" && d.ContactID != models.ID(contactID):
		case hasMin && d.Value < minValue:
		case hasMax && d.Value > maxValue:
		case !containsFold(input.Query, d.Title):
		default:
			results = append(results, dealToOutput(d))
		}
	}
	return results, nil
}

func (h *QueryHandlers) queryTasks(snap views.Snapshot, input QueryCRMInput) ([]interface{}, error) {
	status, _ := stringFilter(input.Filters, "status")
	filter := views.TaskFilter(status)
	if filter == "" {
		filter = views.TasksAll
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	contactID, _ := stringFilter(input.Filters, "contact_id")

	now := h.now()
	var results []interface{}
	for _, t := range views.FilterTasks(snap.Tasks, filter, now) {
		if contactID != "" && t.ContactID != models.ID(contactID) {
			continue
		}
		if containsFold(input.Query, t.Title) {
			results = append(results, taskToOutput(t, now))
		}
	}
	return results, nil
}

func (h *QueryHandlers) queryActivities(snap views.Snapshot, input QueryCRMInput) ([]interface{}, error) {
	typ, _ := stringFilter(input.Filters, "type")
	contactID, _ := stringFilter(input.Filters, "contact_id")

	var results []interface{}
	for _, a := range views.RecentActivities(snap.Activities, len(snap.Activities)) {
		switch {
		case typ != "" && a.Type != models.ActivityType(typ):
		case contactID != "" && a.ContactID != models.ID(contactID):
		case !containsFold(input.Query, a.Description):
		default:
			results = append(results, activityToOutput(a))
		}
	}
	return results, nil
}

func stringFilter(filters map[string]interface{}, key string) (string, bool) {
	s, ok := filters[key].(string)
	return s, ok && s != ""
}

// numberFilter reads a JSON number; MCP arguments decode as float64.
func numberFilter(filters map[string]interface{}, key string) (float64, bool) {
	switch v := filters[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func containsFold(query, field string) bool {
	query = strings.TrimSpace(query)
	return query == "" || strings.Contains(strings.ToLower(field), strings.ToLower(query))
}
