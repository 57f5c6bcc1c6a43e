// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for managing deals and moving them through the pipeline
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/viz"
)

// AddDealCommand adds a new deal.
func AddDealCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("add-deal", out)
	title := fs.String("title", "", "Deal title (required)")
	value := fs.Float64("value", 0, "Deal value in dollars")
	contact := fs.String("contact", "", "Contact ID")
	stage := fs.String("stage", string(models.StageLead), "Stage (lead, qualified, proposal, negotiation, closed-won, closed-lost)")
	probability := fs.Int("probability", 0, "Win probability 0-100")
	closeDate := fs.String("close", "", "Expected close date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	deal := models.Deal{
		Title:       *title,
		Value:       *value,
		ContactID:   models.ID(*contact),
		Stage:       models.Stage(*stage),
		Probability: *probability,
	}
	if *closeDate != "" {
		t, err := time.ParseInLocation("2006-01-02", *closeDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --close date: %w", err)
		}
		deal.ExpectedClose = &t
	}

	created, err := ws.CreateDeal(ctx, deal)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Deal created: %s (ID: %s)\n", created.Title, created.ID)
	fmt.Fprintf(out, "  Value: %s\n", viz.FormatMoney(created.Value))
	fmt.Fprintf(out, "  Stage: %s\n", created.Stage.Label())
	return nil
}

// ListDealsCommand lists deals, optionally one stage only.
func ListDealsCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("list-deals", out)
	stage := fs.String("stage", "", "Filter by stage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *stage != "" && !models.Stage(*stage).Valid() {
		return fmt.Errorf("unknown stage %q", *stage)
	}

	snap, err := load(ctx, ws)
	if err != nil {
		return err
	}

	w := newTable(out, "TITLE", "VALUE", "STAGE", "PROB", "CLOSE", "ID")
	count := 0
	for _, d := range snap.Deals {
		if *stage != "" && d.Stage != models.Stage(*stage) {
			continue
		}
		closeDate := "-"
		if d.ExpectedClose != nil {
			closeDate = d.ExpectedClose.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\n",
			d.Title, viz.FormatMoney(d.Value), d.Stage.Label(), d.Probability, closeDate, d.ID)
		count++
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal: %d deal(s)\n", count)
	return nil
}

// MoveDealCommand moves a deal to another stage: move-deal <id> <stage>.
func MoveDealCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("move-deal", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: move-deal <id> <stage>")
	}
	stage := models.Stage(fs.Arg(1))
	if !stage.Valid() {
		return fmt.Errorf("unknown stage %q", stage)
	}
	if err := ws.Refresh(ctx); err != nil {
		return err
	}

	deal, err := ws.MoveDeal(ctx, models.ID(fs.Arg(0)), stage)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ %s is now in %s\n", deal.Title, deal.Stage.Label())
	return nil
}

func DeleteDealCommand(ctx context.Context, ws *session.Workspace, args []string, out io.Writer) error {
	fs := newFlagSet("delete-deal", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireID(fs, "deal")
	if err != nil {
		return err
	}
	if err := ws.DeleteDeal(ctx, models.ID(id)); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Deleted deal: %s\n", id)
	return nil
}
