// ABOUTME: Database schema definitions for the self-hosted record service
// ABOUTME: Creates one table per entity kind with the hosted service's system columns
package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/crmsync/records"
)

// Table describes a stored table: its writable columns and SQL types.
// Every table also carries the system columns (Id, Name, Tags, Owner,
// CreatedOn, CreatedBy, ModifiedOn, ModifiedBy).
type Table struct {
	Name    string
	Columns []Column
}

// Column types are SQLite affinities. Date-typed columns are declared TEXT
// so the driver hands back the stored strings instead of converting them.
type Column struct {
	Name    string
	Type    string
	NotNull bool
}

var systemColumns = []Column{
	{Name: "Name", Type: "TEXT"},
	{Name: "Tags", Type: "TEXT"},
	{Name: "Owner", Type: "TEXT"},
	{Name: "CreatedOn", Type: "TEXT"},
	{Name: "CreatedBy", Type: "TEXT"},
	{Name: "ModifiedOn", Type: "TEXT"},
	{Name: "ModifiedBy", Type: "TEXT"},
}

// Tables are the four CRM tables, named as the hosted service names them.
var Tables = []Table{
	{
		Name: records.TableContact,
		Columns: []Column{
			{Name: "email", Type: "TEXT"},
			{Name: "phone", Type: "TEXT"},
			{Name: "company", Type: "TEXT"},
			{Name: "last_activity", Type: "TEXT"},
		},
	},
	{
		Name: records.TableDeal,
		Columns: []Column{
			{Name: "title", Type: "TEXT", NotNull: true},
			{Name: "value", Type: "REAL"},
			{Name: "contact_id", Type: "INTEGER"},
			{Name: "stage", Type: "TEXT"},
			{Name: "probability", Type: "INTEGER"},
			{Name: "expected_close", Type: "TEXT"},
			{Name: "created_at", Type: "TEXT"},
		},
	},
	{
		Name: records.TableTask,
		Columns: []Column{
			{Name: "title", Type: "TEXT", NotNull: true},
			{Name: "contact_id", Type: "INTEGER"},
			{Name: "due_date", Type: "TEXT"},
			{Name: "priority", Type: "TEXT"},
			{Name: "completed", Type: "INTEGER"},
		},
	},
	{
		Name: records.TableActivity,
		Columns: []Column{
			{Name: "type", Type: "TEXT"},
			{Name: "description", Type: "TEXT", NotNull: true},
			{Name: "date", Type: "TEXT"},
			{Name: "contact_id", Type: "INTEGER"},
			{Name: "deal_id", Type: "INTEGER"},
			{Name: "completed", Type: "INTEGER"},
		},
	},
}

// schemaSQL renders CREATE statements for every table.
func schemaSQL() string {
	var b strings.Builder
	for _, t := range Tables {
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %q (\n\tId INTEGER PRIMARY KEY AUTOINCREMENT", t.Name)
		for _, c := range append(append([]Column{}, systemColumns...), t.Columns...) {
			fmt.Fprintf(&b, ",\n\t%q %s", c.Name, c.Type)
			if c.NotNull {
				b.WriteString(" NOT NULL")
			}
		}
		b.WriteString("\n);\n")
		fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %q ON %q(CreatedOn);\n", "idx_"+strings.ToLower(t.Name)+"_created", t.Name)
	}
	b.WriteString("CREATE INDEX IF NOT EXISTS idx_task_due_date ON task(due_date);\n")
	b.WriteString("CREATE INDEX IF NOT EXISTS idx_activity1_date ON \"Activity1\"(date);\n")
	return b.String()
}

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL())
	return err
}
