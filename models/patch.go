// ABOUTME: Partial-update payloads for each entity kind
// ABOUTME: Nil fields are "not supplied" and never touch the stored record
package models

import (
	"fmt"
	"strings"
	"time"
)

// Patch merges the supplied fields of an update over an existing record.
type Patch[T any] interface {
	Apply(T) T
	Validate() error
}

type ContactPatch struct {
	Name         *string    `json:"name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Company      *string    `json:"company,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

func (p ContactPatch) Apply(c Contact) Contact {
	c = c.Clone()
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Tags != nil {
		c.Tags = NormalizeTags(*p.Tags)
	}
	if p.LastActivity != nil {
		c.LastActivity = *p.LastActivity
	}
	return c
}

func (p ContactPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid(KindContact, "name must not be empty")
	}
	return nil
}

type DealPatch struct {
	Title         *string    `json:"title,omitempty"`
	Value         *float64   `json:"value,omitempty"`
	ContactID     *ID        `json:"contact_id,omitempty"`
	Stage         *Stage     `json:"stage,omitempty"`
	Probability   *int       `json:"probability,omitempty"`
	ExpectedClose *time.Time `json:"expected_close,omitempty"`
}

func (p DealPatch) Apply(d Deal) Deal {
	d = d.Clone()
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.ContactID != nil {
		d.ContactID = *p.ContactID
	}
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Probability != nil {
		d.Probability = *p.Probability
	}
	if p.ExpectedClose != nil {
		t := DateOnly(*p.ExpectedClose)
		d.ExpectedClose = &t
	}
	return d
}

func (p DealPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid(KindDeal, "title must not be empty")
	}
	if p.Value != nil {
		if err := validateValue(*p.Value); err != nil {
			return err
		}
	}
	if p.Stage != nil && !p.Stage.Valid() {
		return invalid(KindDeal, fmt.Sprintf("unknown stage %q", *p.Stage))
	}
	if p.Probability != nil {
		return validateProbability(*p.Probability)
	}
	return nil
}

type TaskPatch struct {
	Title     *string    `json:"title,omitempty"`
	ContactID *ID        `json:"contact_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  *Priority  `json:"priority,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.ContactID != nil {
		t.ContactID = *p.ContactID
	}
	if p.DueDate != nil {
		t.DueDate = DateOnly(*p.DueDate)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid(KindTask, "title must not be empty")
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		return invalid(KindTask, "due date must not be empty")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid(KindTask, fmt.Sprintf("unknown priority %q", *p.Priority))
	}
	return nil
}

type ActivityPatch struct {
	Type        *ActivityType `json:"type,omitempty"`
	ContactID   *ID           `json:"contact_id,omitempty"`
	DealID      *ID           `json:"deal_id,omitempty"`
	Description *string       `json:"description,omitempty"`
	Date        *time.Time    `json:"date,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
}

func (p ActivityPatch) Apply(a Activity) Activity {
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.ContactID != nil {
		a.ContactID = *p.ContactID
	}
	if p.DealID != nil {
		a.DealID = *p.DealID
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Completed != nil {
		a.Completed = *p.Completed
	}
	return a
}

func (p ActivityPatch) Validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return invalid(KindActivity, fmt.Sprintf("unknown activity type %q", *p.Type))
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return invalid(KindActivity, "description must not be empty")
	}
	return nil
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[V any](v V) *V {
	return &v
}
