// ABOUTME: Tests for dashboard text rendering and graph generation
// ABOUTME: Uses the seed dataset as a realistic snapshot
package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/seed"
	"github.com/harperreed/crmsync/views"
)

func seedSnapshot(t *testing.T) views.Snapshot {
	t.Helper()
	ds, err := seed.Load(time.Now())
	require.NoError(t, err)
	return views.Snapshot{Contacts: ds.Contacts, Deals: ds.Deals, Tasks: ds.Tasks, Activities: ds.Activities}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$950", FormatMoney(950))
	assert.Equal(t, "$45K", FormatMoney(45000))
	assert.Equal(t, "$1.2M", FormatMoney(1_250_000))
}

func TestRenderDashboard(t *testing.T) {
	snap := seedSnapshot(t)
	out := RenderDashboard(views.BuildDashboard(snap, time.Now()), views.GroupByStage(snap.Deals))

	assert.Contains(t, out, "CRM DASHBOARD")
	assert.Contains(t, out, "8 contacts")
	for _, s := range models.Stages {
		assert.Contains(t, out, s.Label())
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(views.BuildReport(seedSnapshot(t)))
	assert.Contains(t, out, "VALUE BY STAGE")
	assert.Contains(t, out, "meeting")
}

func TestBarBounds(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), bar(0, 0))
	assert.Equal(t, strings.Repeat("█", 10), bar(5, 5))
}

func TestGeneratePipelineGraph(t *testing.T) {
	snap := seedSnapshot(t)
	dot, err := NewGraphGenerator(snap).GeneratePipelineGraph(context.Background())
	require.NoError(t, err)
	assert.Contains(t, dot, "Deal Pipeline")
	assert.Contains(t, dot, snap.Deals[0].Title)
}

func TestGenerateContactGraph(t *testing.T) {
	snap := seedSnapshot(t)
	g := NewGraphGenerator(snap)

	dot, err := g.GenerateContactGraph(context.Background(), snap.Contacts[0].ID)
	require.NoError(t, err)
	assert.Contains(t, dot, snap.Contacts[0].Name)

	_, err = g.GenerateContactGraph(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
