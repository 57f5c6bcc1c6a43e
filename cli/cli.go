// ABOUTME: Shared plumbing for the crm subcommands
// ABOUTME: Flag parsing helpers, table output, and the subcommand router
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

// Command runs one crm subcommand against a workspace.
type Command func(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error

// Commands maps "crmsync crm <name>" to its handler.
var Commands = map[string]Command{
	"add-contact":     AddContactCommand,
	"list-contacts":   ListContactsCommand,
	"update-contact":  UpdateContactCommand,
	"delete-contact":  DeleteContactCommand,
	"add-deal":        AddDealCommand,
	"list-deals":      ListDealsCommand,
	"move-deal":       MoveDealCommand,
	"delete-deal":     DeleteDealCommand,
	"add-task":        AddTaskCommand,
	"list-tasks":      ListTasksCommand,
	"toggle-task":     ToggleTaskCommand,
	"delete-task":     DeleteTaskCommand,
	"log-activity":    LogActivityCommand,
	"list-activities": ListActivitiesCommand,
	"dashboard":       DashboardCommand,
	"report":          ReportCommand,
	"graph":           GraphCommand,
}

// Run dispatches a crm subcommand.
func Run(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("crm requires a subcommand")
	}
	cmd, ok := Commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown crm command: %s", args[0])
	}
	return cmd(ctx, ws, args[1:], out)
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// setFlags reports which flags were given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// requireID returns the first positional argument.
func requireID(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("%s ID is required", what)
	}
	return fs.Arg(0), nil
}

func load(ctx context.Context, ws *session.Workspace) (views.Snapshot, error) {
	if err := ws.Refresh(ctx); err != nil {
		return views.Snapshot{}, err
	}
	return ws.Snapshot(), nil
}

func newTable(out io.Writer, header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, h)
	}
	_, _ = fmt.Fprintln(w)
	return w
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
