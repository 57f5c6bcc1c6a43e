// ABOUTME: Contact list derivations: text search, tag filter, and the tag picker
// ABOUTME: Pure functions over a snapshot; inputs are never modified
package views

import (
	"strings"

	"github.com/harperreed/crmsync/models"
)

// ContactFilter combines a search term and a tag. Zero values match everything.
type ContactFilter struct {
	Search string
	Tag    string
}

// FilterContacts keeps contacts matching both the search term (a
// case-insensitive substring of name, email, or company) and the tag.
func FilterContacts(contacts []models.Contact, f ContactFilter) []models.Contact {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if term != "" && !matchesSearch(c, term) {
			continue
		}
		if f.Tag != "" && !models.HasTag(c.Tags, f.Tag) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesSearch(c models.Contact, term string) bool {
	for _, field := range []string{c.Name, c.Email, c.Company} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// AllTags lists every tag in first-seen order.
func AllTags(contacts []models.Contact) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range contacts {
		for _, tag := range c.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}
