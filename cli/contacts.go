// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

// AddContactCommand adds a new contact.
func AddContactCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("add-contact", out)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	tags := fs.String("tags", "", "Comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	contact, err := ws.CreateContact(ctx, models.Contact{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Company: *company,
		Tags:    models.ParseTags(*tags),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	if contact.Email != "" {
		fmt.Fprintf(out, "  Email: %s\n", contact.Email)
	}
	if len(contact.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(contact.Tags, ", "))
	}
	return nil
}

// ListContactsCommand lists contacts matching a search and tag.
func ListContactsCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("list-contacts", out)
	query := fs.String("query", "", "Search by name, email, or company")
	tag := fs.String("tag", "", "Only contacts with this tag")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}
	contacts := views.FilterContacts(snap.Contacts, views.ContactFilter{Search: *query, Tag: *tag})
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No contacts found")
		return nil
	}
	if len(contacts) > *limit {
		contacts = contacts[:*limit]
	}

	w := newTable(out, "NAME", "EMAIL", "COMPANY", "TAGS", "ID")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Name, orDash(c.Email), orDash(c.Company), orDash(strings.Join(c.Tags, ",")), c.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// UpdateContactCommand updates the flags given; flags come before the ID.
func UpdateContactCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("update-contact", out)
	name := fs.String("name", "", "Contact name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	tags := fs.String("tags", "", "Replacement comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireID(fs, "contact")
	if err != nil {
		return err
	}

	set := setFlags(fs)
	var patch models.ContactPatch
	if set["name"] {
		patch.Name = name
	}
	if set["email"] {
		patch.Email = email
	}
	if set["phone"] {
		patch.Phone = phone
	}
	if set["company"] {
		patch.Company = company
	}
	if set["tags"] {
		patch.Tags = models.Ptr(models.ParseTags(*tags))
	}

	contact, err := ws.UpdateContact(ctx, models.ID(id), patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Contact updated: %s (ID: %s)\n", contact.Name, contact.ID)
	return nil
}

func DeleteContactCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("delete-contact", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireID(fs, "contact")
	if err != nil {
		return err
	}
	if err := ws.DeleteContact(ctx, models.ID(id)); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Deleted contact: %s\n", id)
	return nil
}
