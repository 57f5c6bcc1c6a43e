// ABOUTME: Embedded demo dataset used by the mock store and the migrate tool
// ABOUTME: Parses seed.yaml and resolves day offsets against a reference time

package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/crmsync/models"
)

//go:embed seed.yaml
var raw []byte

// Dataset holds one collection per entity kind. References between records
// use the seed's own IDs.
type Dataset struct {
	Contacts   []models.Contact
	Deals      []models.Deal
	Tasks      []models.Task
	Activities []models.Activity
}

type file struct {
	Contacts []struct {
		ID                  string   `yaml:"id"`
		Name                string   `yaml:"name"`
		Email               string   `yaml:"email"`
		Phone               string   `yaml:"phone"`
		Company             string   `yaml:"company"`
		Tags                []string `yaml:"tags"`
		CreatedDaysAgo      int      `yaml:"created_days_ago"`
		LastActivityDaysAgo int      `yaml:"last_activity_days_ago"`
	} `yaml:"contacts"`
	Deals []struct {
		ID                  string  `yaml:"id"`
		Title               string  `yaml:"title"`
		Value               float64 `yaml:"value"`
		Contact             string  `yaml:"contact"`
		Stage               string  `yaml:"stage"`
		Probability         int     `yaml:"probability"`
		ExpectedCloseInDays *int    `yaml:"expected_close_in_days"`
		CreatedDaysAgo      int     `yaml:"created_days_ago"`
	} `yaml:"deals"`
	Tasks []struct {
		ID        string `yaml:"id"`
		Title     string `yaml:"title"`
		Contact   string `yaml:"contact"`
		DueInDays int    `yaml:"due_in_days"`
		Priority  string `yaml:"priority"`
		Completed bool   `yaml:"completed"`
	} `yaml:"tasks"`
	Activities []struct {
		ID          string `yaml:"id"`
		Type        string `yaml:"type"`
		Contact     string `yaml:"contact"`
		Deal        string `yaml:"deal"`
		Description string `yaml:"description"`
		DaysAgo     int    `yaml:"days_ago"`
		Completed   bool   `yaml:"completed"`
	} `yaml:"activities"`
}

// Load parses the embedded dataset relative to now.
func Load(now time.Time) (*Dataset, error) {
	return Parse(raw, now)
}

// Parse reads a dataset in seed.yaml's format and checks every record and
// reference.
func Parse(data []byte, now time.Time) (*Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	today := models.StartOfDay(now)
	ds := &Dataset{}
	contacts := map[string]bool{}
	deals := map[string]bool{}

	for _, c := range f.Contacts {
		ds.Contacts = append(ds.Contacts, models.Contact{
			ID:           models.ID(c.ID),
			Name:         c.Name,
			Email:        c.Email,
			Phone:        c.Phone,
			Company:      c.Company,
			Tags:         models.NormalizeTags(c.Tags),
			CreatedAt:    now.AddDate(0, 0, -c.CreatedDaysAgo),
			LastActivity: now.AddDate(0, 0, -c.LastActivityDaysAgo),
		})
		contacts[c.ID] = true
	}

	for _, d := range f.Deals {
		if d.Contact != "" && !contacts[d.Contact] {
			return nil, fmt.Errorf("deal %s references unknown contact %s", d.ID, d.Contact)
		}
		deal := models.Deal{
			ID:          models.ID(d.ID),
			Title:       d.Title,
			Value:       d.Value,
			ContactID:   models.ID(d.Contact),
			Stage:       models.Stage(d.Stage),
			Probability: d.Probability,
			CreatedAt:   now.AddDate(0, 0, -d.CreatedDaysAgo),
		}
		if d.ExpectedCloseInDays != nil {
			closeDate := today.AddDate(0, 0, *d.ExpectedCloseInDays)
			deal.ExpectedClose = &closeDate
		}
		ds.Deals = append(ds.Deals, deal)
		deals[d.ID] = true
	}

	for _, t := range f.Tasks {
		if t.Contact != "" && !contacts[t.Contact] {
			return nil, fmt.Errorf("task %s references unknown contact %s", t.ID, t.Contact)
		}
		ds.Tasks = append(ds.Tasks, models.Task{
			ID:        models.ID(t.ID),
			Title:     t.Title,
			ContactID: models.ID(t.Contact),
			DueDate:   today.AddDate(0, 0, t.DueInDays),
			Priority:  models.Priority(t.Priority),
			Completed: t.Completed,
		})
	}

	for i, a := range f.Activities {
		if a.Contact != "" && !contacts[a.Contact] {
			return nil, fmt.Errorf("activity %s references unknown contact %s", a.ID, a.Contact)
		}
		if a.Deal != "" && !deals[a.Deal] {
			return nil, fmt.Errorf("activity %s references unknown deal %s", a.ID, a.Deal)
		}
		ds.Activities = append(ds.Activities, models.Activity{
			ID:          models.ID(a.ID),
			Type:        models.ActivityType(a.Type),
			ContactID:   models.ID(a.Contact),
			DealID:      models.ID(a.Deal),
			Description: a.Description,
			// keep same-day entries in file order
			Date:      now.AddDate(0, 0, -a.DaysAgo).Add(-time.Duration(i) * time.Minute),
			Completed: a.Completed,
		})
	}

	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *Dataset) validate() error {
	seen := map[models.ID]bool{}
	check := func(id models.ID, err error) error {
		if id == "" {
			return fmt.Errorf("seed record without id")
		}
		if seen[id] {
			return fmt.Errorf("duplicate seed id %s", id)
		}
		seen[id] = true
		if err != nil {
			return fmt.Errorf("seed record %s: %w", id, err)
		}
		return nil
	}

	for _, c := range ds.Contacts {
		if err := check(c.ID, c.Validate()); err != nil {
			return err
		}
	}
	for _, d := range ds.Deals {
		if err := check(d.ID, d.Validate()); err != nil {
			return err
		}
	}
	for _, t := range ds.Tasks {
		if err := check(t.ID, t.Validate()); err != nil {
			return err
		}
	}
	for _, a := range ds.Activities {
		if err := check(a.ID, a.Validate()); err != nil {
			return err
		}
	}
	return nil
}
