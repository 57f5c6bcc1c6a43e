// ABOUTME: Entity contract shared by every backing store and the service facade
// ABOUTME: Provides deep copies, server-managed defaults, and boundary validation
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Entity is implemented by the four record types. Methods use value
// receivers so records can be passed and stored by value.
type Entity[T any] interface {
	EntityID() ID
	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() T
	// Stamp assigns id and fills server-managed timestamps left at zero.
	Stamp(id ID, now time.Time) T
	Validate() error
}

func (c Contact) EntityID() ID { return c.ID }

func (c Contact) Clone() Contact {
	c.Tags = append([]string{}, c.Tags...)
	return c
}

func (c Contact) Stamp(id ID, now time.Time) Contact {
	c = c.Clone()
	c.ID = id
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.LastActivity.IsZero() {
		c.LastActivity = now
	}
	c.Tags = NormalizeTags(c.Tags)
	return c
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid(KindContact, "name is required")
	}
	return nil
}

func (d Deal) EntityID() ID { return d.ID }

func (d Deal) Clone() Deal {
	if d.ExpectedClose != nil {
		t := *d.ExpectedClose
		d.ExpectedClose = &t
	}
	return d
}

func (d Deal) Stamp(id ID, now time.Time) Deal {
	d = d.Clone()
	d.ID = id
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.ExpectedClose != nil {
		*d.ExpectedClose = DateOnly(*d.ExpectedClose)
	}
	return d
}

func (d Deal) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return invalid(KindDeal, "title is required")
	}
	if err := validateValue(d.Value); err != nil {
		return err
	}
	if !d.Stage.Valid() {
		return invalid(KindDeal, fmt.Sprintf("unknown stage %q", d.Stage))
	}
	return validateProbability(d.Probability)
}

func (t Task) EntityID() ID { return t.ID }

func (t Task) Clone() Task { return t }

func (t Task) Stamp(id ID, _ time.Time) Task {
	t.ID = id
	t.DueDate = DateOnly(t.DueDate)
	return t
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid(KindTask, "title is required")
	}
	if t.DueDate.IsZero() {
		return invalid(KindTask, "due date is required")
	}
	if !t.Priority.Valid() {
		return invalid(KindTask, fmt.Sprintf("unknown priority %q", t.Priority))
	}
	return nil
}

func (a Activity) EntityID() ID { return a.ID }

func (a Activity) Clone() Activity { return a }

func (a Activity) Stamp(id ID, now time.Time) Activity {
	a.ID = id
	if a.Date.IsZero() {
		a.Date = now
	}
	return a
}

func (a Activity) Validate() error {
	if !a.Type.Valid() {
		return invalid(KindActivity, fmt.Sprintf("unknown activity type %q", a.Type))
	}
	if strings.TrimSpace(a.Description) == "" {
		return invalid(KindActivity, "description is required")
	}
	return nil
}

func validateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(KindDeal, "value must be a finite number")
	}
	if v < 0 {
		return invalid(KindDeal, "value must not be negative")
	}
	return nil
}

func validateProbability(p int) error {
	if p < 0 || p > 100 {
		return invalid(KindDeal, fmt.Sprintf("probability %d outside 0-100", p))
	}
	return nil
}
