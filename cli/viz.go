// ABOUTME: Visualization CLI commands
// ABOUTME: Handles dashboard, report, and graph generation commands
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
	"github.com/harperreed/crmsync/viz"
)

func DashboardCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("dashboard", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}
	fmt.Fprint(out, viz.RenderDashboard(views.BuildDashboard(snap, time.Now()), views.GroupByStage(snap.Deals)))
	return nil
}

func ReportCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("report", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}
	fmt.Fprint(out, viz.RenderReport(views.BuildReport(snap)))
	return nil
}

// GraphCommand writes DOT source: graph pipeline | graph contact <id>.
func GraphCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("graph", out)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("graph requires a type (pipeline or contact)")
	}

	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}
	generator := viz.NewGraphGenerator(snap)

	var dot string
	switch fs.Arg(0) {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "contact":
		if fs.NArg() < 2 {
			return fmt.Errorf("contact ID is required")
		}
		dot, err = generator.GenerateContactGraph(ctx, models.ID(fs.Arg(1)))
	default:
		return fmt.Errorf("unknown graph type: %s", fs.Arg(0))
	}
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}
	fmt.Fprintln(out, dot)
	return nil
}
