// ABOUTME: Tests for the web server's JSON views, metrics, and hosted record routes
// ABOUTME: Exercises a remote client end to end against an SQLite-backed server
package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/crmsync/db"
	"github.com/harperreed/crmsync/mockstore"
	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
	"github.com/harperreed/crmsync/seed"
	"github.com/harperreed/crmsync/service"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

func setupServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	ds, err := seed.Load(time.Now())
	require.NoError(t, err)
	ws := session.New(service.NewMock(ds, mockstore.Options{}, zap.NewNop()), session.Options{})
	t.Cleanup(ws.Close)

	s, err := NewServer(ws, opts)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestAPIPipeline(t *testing.T) {
	srv := setupServer(t, Options{})

	resp, body := get(t, srv.URL+"/api/pipeline")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var buckets []views.StageBucket
	require.NoError(t, json.Unmarshal([]byte(body), &buckets))
	require.Len(t, buckets, len(models.Stages))
	for i, b := range buckets {
		assert.Equal(t, models.Stages[i], b.Stage)
	}
}

func TestAPIDashboardAndReport(t *testing.T) {
	srv := setupServer(t, Options{})

	_, body := get(t, srv.URL+"/api/dashboard")
	var dash views.Dashboard
	require.NoError(t, json.Unmarshal([]byte(body), &dash))
	assert.Positive(t, dash.Metrics.TotalContacts)
	assert.LessOrEqual(t, len(dash.RecentActivities), views.DashboardListSize)

	_, body = get(t, srv.URL+"/api/report")
	var report views.Report
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	assert.Len(t, report.Stages, len(models.Stages))
	assert.Len(t, report.Activities, len(models.ActivityTypes))
}

func TestHTMLPages(t *testing.T) {
	srv := setupServer(t, Options{})

	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Dashboard</h1>")
	assert.Contains(t, body, "Pipeline value")

	_, body = get(t, srv.URL+"/pipeline")
	assert.Contains(t, body, "Negotiation")
}

func TestRequestIDAndMetrics(t *testing.T) {
	srv := setupServer(t, Options{})

	resp, _ := get(t, srv.URL+"/api/report")
	assert.NotEmpty(t, resp.Header.Get(records.HeaderRequestID))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/report", nil)
	require.NoError(t, err)
	req.Header.Set(records.HeaderRequestID, "fixed-id")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp2.Body.Close()
	assert.Equal(t, "fixed-id", resp2.Header.Get(records.HeaderRequestID))

	_, body := get(t, srv.URL+"/metrics")
	assert.Contains(t, body, `crmsync_http_requests_total{method="GET",path="GET /api/report",status="200"}`)
}

func TestRecordRoutesNotMountedWithoutBackend(t *testing.T) {
	srv := setupServer(t, Options{})
	resp, _ := get(t, srv.URL+"/v1/tables/Contacts/records/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHostedBackendServesRemoteClient(t *testing.T) {
	conn, err := db.OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	store := db.NewRecordStore(conn, "tester")

	srv := setupServer(t, Options{
		Backend: store,
		Access:  records.HandlerOptions{ProjectID: "proj", PublicKey: "key"},
	})

	client, err := records.NewClient(records.ClientOptions{BaseURL: srv.URL, ProjectID: "proj", PublicKey: "key"})
	require.NoError(t, err)
	remote := service.FromBackend(client, zap.NewNop())

	ctx := context.Background()
	created, err := remote.Contacts.Create(ctx, models.Contact{Name: "Hosted Person", Email: "hosted@example.com", Tags: []string{"self-hosted"}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := remote.Contacts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hosted Person", got.Name)
	assert.Equal(t, []string{"self-hosted"}, got.Tags)

	bad, err := records.NewClient(records.ClientOptions{BaseURL: srv.URL, ProjectID: "proj", PublicKey: "wrong"})
	require.NoError(t, err)
	_, err = service.FromBackend(bad, zap.NewNop()).Contacts.GetAll(ctx)
	assert.Error(t, err)
}
