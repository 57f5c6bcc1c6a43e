// ABOUTME: GraphViz rendering of the deal pipeline and a contact's network
// ABOUTME: Produces DOT source from a workspace snapshot
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/views"
)

// GraphGenerator renders graphs from one snapshot.
type GraphGenerator struct {
	snap views.Snapshot
}

func NewGraphGenerator(snap views.Snapshot) *GraphGenerator {
	return &GraphGenerator{snap: snap}
}

// render opens a graph, lets build populate it, and returns the DOT output.
func render(ctx context.Context, label string, build func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)
	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// GeneratePipelineGraph draws the six stages in order with each deal hanging
// off its stage and linked to its contact.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	return render(ctx, "Deal Pipeline", func(graph *cgraph.Graph) error {
		contacts := g.contactNodes()
		var prev *cgraph.Node
		for _, bucket := range views.GroupByStage(g.snap.Deals) {
			stage, err := graph.CreateNodeByName("stage_" + string(bucket.Stage))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			stage.SetLabel(fmt.Sprintf("%s\n%d deals, %s", bucket.Label, len(bucket.Deals), FormatMoney(bucket.Value)))
			stage.SetShape("box")
			stage.SetStyle("filled")
			stage.SetFillColor(stageColor(bucket.Stage))

			if prev != nil {
				edge, err := graph.CreateEdgeByName("next", prev, stage)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = stage

			for _, deal := range bucket.Deals {
				node, err := graph.CreateNodeByName("deal_" + string(deal.ID))
				if err != nil {
					return fmt.Errorf("failed to create deal node: %w", err)
				}
				node.SetLabel(fmt.Sprintf("%s\n%s", deal.Title, FormatMoney(deal.Value)))
				node.SetShape("diamond")
				if _, err := graph.CreateEdgeByName("in", stage, node); err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}

				name, ok := contacts[deal.ContactID]
				if !ok {
					continue
				}
				contact, err := graph.CreateNodeByName("contact_" + string(deal.ContactID))
				if err != nil {
					return fmt.Errorf("failed to create contact node: %w", err)
				}
				contact.SetLabel(name)
				contact.SetShape("ellipse")
				edge, err := graph.CreateEdgeByName("contact", node, contact)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("dotted")
			}
		}
		return nil
	})
}

// GenerateContactGraph centers on one contact and links its deals, tasks,
// and activities.
func (g *GraphGenerator) GenerateContactGraph(ctx context.Context, id models.ID) (string, error) {
	var contact *models.Contact
	for i := range g.snap.Contacts {
		if g.snap.Contacts[i].ID == id {
			contact = &g.snap.Contacts[i]
			break
		}
	}
	if contact == nil {
		return "", models.NotFound(models.KindContact, "graph", id)
	}

	return render(ctx, contact.Name, func(graph *cgraph.Graph) error {
		center, err := graph.CreateNodeByName("contact_" + string(contact.ID))
		if err != nil {
			return fmt.Errorf("failed to create contact node: %w", err)
		}
		center.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Company))
		center.SetStyle("filled")
		center.SetFillColor("lightgreen")

		link := func(name, label, shape, edgeLabel string) error {
			node, err := graph.CreateNodeByName(name)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}
			node.SetLabel(label)
			node.SetShape(cgraph.Shape(shape))
			edge, err := graph.CreateEdgeByName(edgeLabel, center, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel(edgeLabel)
			return nil
		}

		for _, d := range g.snap.Deals {
			if d.ContactID == id {
				if err := link("deal_"+string(d.ID), fmt.Sprintf("%s\n%s", d.Title, d.Stage.Label()), "diamond", "deal"); err != nil {
					return err
				}
			}
		}
		for _, t := range g.snap.Tasks {
			if t.ContactID == id {
				if err := link("task_"+string(t.ID), t.Title, "note", "task"); err != nil {
					return err
				}
			}
		}
		for _, a := range g.snap.Activities {
			if a.ContactID == id {
				if err := link("activity_"+string(a.ID), fmt.Sprintf("%s\n%s", a.Type, a.Date.Format("2006-01-02")), "box", string(a.Type)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (g *GraphGenerator) contactNodes() map[models.ID]string {
	names := make(map[models.ID]string, len(g.snap.Contacts))
	for _, c := range g.snap.Contacts {
		names[c.ID] = c.Name
	}
	return names
}

func stageColor(s models.Stage) string {
	switch s {
	case models.StageClosedWon:
		return "palegreen"
	case models.StageClosedLost:
		return "lightpink"
	}
	return "lightblue"
}
