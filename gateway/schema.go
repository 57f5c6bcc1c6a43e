// ABOUTME: Per-kind mapping between entity types and backend records
// ABOUTME: Each schema names its table, default ordering, allow-list, and codecs

package gateway

import (
	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

// Schema describes how one entity kind is stored by the record service.
// Fields is the allow-list: encoded keys outside it never reach the backend.
type Schema[T models.Entity[T], P models.Patch[T]] struct {
	Kind   models.Kind
	Table  string
	Fields []string
	Order  []records.OrderBy

	Encode      func(T) (records.Record, error)
	EncodePatch func(P) (records.Record, error)
	Decode      func(records.Record) T
}

var ContactSchema = Schema[models.Contact, models.ContactPatch]{
	Kind:   models.KindContact,
	Table:  records.TableContact,
	Fields: []string{records.FieldName, records.FieldTags, "email", "phone", "company", "last_activity"},
	Order:  []records.OrderBy{{FieldName: records.FieldCreatedOn, SortType: records.SortDesc}},

	Encode: func(c models.Contact) (records.Record, error) {
		return records.Record{
			records.FieldName: c.Name,
			records.FieldTags: models.JoinTags(c.Tags),
			"email":           c.Email,
			"phone":           c.Phone,
			"company":         c.Company,
			"last_activity":   encodeTime(c.LastActivity),
		}, nil
	},
	EncodePatch: func(p models.ContactPatch) (records.Record, error) {
		r := records.Record{}
		if p.Name != nil {
			r[records.FieldName] = *p.Name
		}
		if p.Email != nil {
			r["email"] = *p.Email
		}
		if p.Phone != nil {
			r["phone"] = *p.Phone
		}
		if p.Company != nil {
			r["company"] = *p.Company
		}
		if p.Tags != nil {
			r[records.FieldTags] = models.JoinTags(*p.Tags)
		}
		if p.LastActivity != nil {
			r["last_activity"] = encodeTime(*p.LastActivity)
		}
		return r, nil
	},
	Decode: func(r records.Record) models.Contact {
		return models.Contact{
			ID:           decodeID(r[records.FieldID]),
			Name:         records.String(r[records.FieldName]),
			Email:        records.String(r["email"]),
			Phone:        records.String(r["phone"]),
			Company:      records.String(r["company"]),
			Tags:         models.ParseTags(records.String(r[records.FieldTags])),
			CreatedAt:    decodeTime(r[records.FieldCreatedOn]),
			LastActivity: decodeTime(r["last_activity"]),
		}
	},
}

var DealSchema = Schema[models.Deal, models.DealPatch]{
	Kind:   models.KindDeal,
	Table:  records.TableDeal,
	Fields: []string{"title", "value", "contact_id", "stage", "probability", "expected_close", "created_at"},
	Order:  []records.OrderBy{{FieldName: records.FieldCreatedOn, SortType: records.SortDesc}},

	Encode: func(d models.Deal) (records.Record, error) {
		contact, err := encodeRef("contact_id", d.ContactID)
		if err != nil {
			return nil, err
		}
		r := records.Record{
			"title":       d.Title,
			"value":       d.Value,
			"contact_id":  contact,
			"stage":       string(d.Stage),
			"probability": d.Probability,
			"created_at":  encodeTime(d.CreatedAt),
		}
		if d.ExpectedClose != nil {
			r["expected_close"] = encodeDate(*d.ExpectedClose)
		}
		return r, nil
	},
	EncodePatch: func(p models.DealPatch) (records.Record, error) {
		r := records.Record{}
		if p.Title != nil {
			r["title"] = *p.Title
		}
		if p.Value != nil {
			r["value"] = *p.Value
		}
		if p.ContactID != nil {
			contact, err := encodeRef("contact_id", *p.ContactID)
			if err != nil {
				return nil, err
			}
			r["contact_id"] = contact
		}
		if p.Stage != nil {
			r["stage"] = string(*p.Stage)
		}
		if p.Probability != nil {
			r["probability"] = *p.Probability
		}
		if p.ExpectedClose != nil {
			r["expected_close"] = encodeDate(*p.ExpectedClose)
		}
		return r, nil
	},
	Decode: func(r records.Record) models.Deal {
		d := models.Deal{
			ID:          decodeID(r[records.FieldID]),
			Title:       records.String(r["title"]),
			Value:       decodeFloat(r["value"]),
			ContactID:   decodeID(r["contact_id"]),
			Stage:       models.Stage(records.String(r["stage"])),
			Probability: decodeInt(r["probability"]),
			CreatedAt:   decodeTime(r["created_at"]),
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = decodeTime(r[records.FieldCreatedOn])
		}
		if closeDate := decodeDate(r["expected_close"]); !closeDate.IsZero() {
			d.ExpectedClose = &closeDate
		}
		return d
	},
}

var TaskSchema = Schema[models.Task, models.TaskPatch]{
	Kind:   models.KindTask,
	Table:  records.TableTask,
	Fields: []string{"title", "contact_id", "due_date", "priority", "completed"},
	Order:  []records.OrderBy{{FieldName: "due_date", SortType: records.SortAsc}},

	Encode: func(t models.Task) (records.Record, error) {
		contact, err := encodeRef("contact_id", t.ContactID)
		if err != nil {
			return nil, err
		}
		return records.Record{
			"title":      t.Title,
			"contact_id": contact,
			"due_date":   encodeDate(t.DueDate),
			"priority":   string(t.Priority),
			"completed":  t.Completed,
		}, nil
	},
	EncodePatch: func(p models.TaskPatch) (records.Record, error) {
		r := records.Record{}
		if p.Title != nil {
			r["title"] = *p.Title
		}
		if p.ContactID != nil {
			contact, err := encodeRef("contact_id", *p.ContactID)
			if err != nil {
				return nil, err
			}
			r["contact_id"] = contact
		}
		if p.DueDate != nil {
			r["due_date"] = encodeDate(*p.DueDate)
		}
		if p.Priority != nil {
			r["priority"] = string(*p.Priority)
		}
		if p.Completed != nil {
			r["completed"] = *p.Completed
		}
		return r, nil
	},
	Decode: func(r records.Record) models.Task {
		return models.Task{
			ID:        decodeID(r[records.FieldID]),
			Title:     records.String(r["title"]),
			ContactID: decodeID(r["contact_id"]),
			DueDate:   decodeDate(r["due_date"]),
			Priority:  models.Priority(records.String(r["priority"])),
			Completed: records.Bool(r["completed"]),
		}
	},
}

var ActivitySchema = Schema[models.Activity, models.ActivityPatch]{
	Kind:   models.KindActivity,
	Table:  records.TableActivity,
	Fields: []string{records.FieldName, records.FieldTags, "type", "description", "date", "contact_id", "deal_id", "completed"},
	Order:  []records.OrderBy{{FieldName: "date", SortType: records.SortDesc}},

	Encode: func(a models.Activity) (records.Record, error) {
		contact, err := encodeRef("contact_id", a.ContactID)
		if err != nil {
			return nil, err
		}
		deal, err := encodeRef("deal_id", a.DealID)
		if err != nil {
			return nil, err
		}
		return records.Record{
			"type":        string(a.Type),
			"description": a.Description,
			"date":        encodeTime(a.Date),
			"contact_id":  contact,
			"deal_id":     deal,
			"completed":   a.Completed,
		}, nil
	},
	EncodePatch: func(p models.ActivityPatch) (records.Record, error) {
		r := records.Record{}
		if p.Type != nil {
			r["type"] = string(*p.Type)
		}
		if p.Description != nil {
			r["description"] = *p.Description
		}
		if p.Date != nil {
			r["date"] = encodeTime(*p.Date)
		}
		if p.ContactID != nil {
			contact, err := encodeRef("contact_id", *p.ContactID)
			if err != nil {
				return nil, err
			}
			r["contact_id"] = contact
		}
		if p.DealID != nil {
			deal, err := encodeRef("deal_id", *p.DealID)
			if err != nil {
				return nil, err
			}
			r["deal_id"] = deal
		}
		if p.Completed != nil {
			r["completed"] = *p.Completed
		}
		return r, nil
	},
	Decode: func(r records.Record) models.Activity {
		return models.Activity{
			ID:          decodeID(r[records.FieldID]),
			Type:        models.ActivityType(records.String(r["type"])),
			ContactID:   decodeID(r["contact_id"]),
			DealID:      decodeID(r["deal_id"]),
			Description: records.String(r["description"]),
			Date:        decodeTime(r["date"]),
			Completed:   records.Bool(r["completed"]),
		}
	},
}
