// ABOUTME: Tests for the remote data gateway against SQLite, HTTP, and scripted backends
// ABOUTME: Covers round trips, patch semantics, batch failures, and allow-list filtering

package gateway

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/crmsync/db"
	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

var fixedNow = time.Date(2026, 4, 14, 15, 30, 0, 0, time.UTC)

func sqliteBackend(t *testing.T) records.Backend {
	t.Helper()
	conn, err := db.OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return db.NewRecordStore(conn, "test")
}

func newGateway[T models.Entity[T], P models.Patch[T]](backend records.Backend, schema Schema[T, P]) *Gateway[T, P] {
	g := New(backend, schema, zap.NewNop())
	g.now = func() time.Time { return fixedNow }
	return g
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestRoundTripEveryKind(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)

	contacts := newGateway(backend, ContactSchema)
	contact, err := contacts.Create(ctx, models.Contact{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Tags:  []string{" vip", "prospect ", "", "vip"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID("1"), contact.ID)
	assert.Equal(t, []string{"vip", "prospect"}, contact.Tags)
	assert.True(t, contact.LastActivity.Equal(fixedNow), "last_activity is injected")

	got, err := contacts.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, cmp.Diff(contact, *got))

	closeDate := day(2026, 6, 30)
	deals := newGateway(backend, DealSchema)
	deal, err := deals.Create(ctx, models.Deal{
		Title:         "Platform rollout",
		Value:         48000,
		ContactID:     contact.ID,
		Stage:         models.StageProposal,
		Probability:   60,
		ExpectedClose: &closeDate,
	})
	require.NoError(t, err)
	assert.Equal(t, contact.ID, deal.ContactID)
	assert.True(t, deal.CreatedAt.Equal(fixedNow))
	require.NotNil(t, deal.ExpectedClose)
	assert.True(t, deal.ExpectedClose.Equal(closeDate))

	gotDeal, err := deals.GetByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(deal, *gotDeal))

	tasks := newGateway(backend, TaskSchema)
	task, err := tasks.Create(ctx, models.Task{
		Title:    "Send contract",
		DueDate:  time.Date(2026, 4, 20, 17, 45, 0, 0, time.Local),
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	assert.True(t, task.DueDate.Equal(day(2026, 4, 20)), "due dates are calendar days")
	assert.False(t, task.Completed)

	activities := newGateway(backend, ActivitySchema)
	activity, err := activities.Create(ctx, models.Activity{
		Type:        models.ActivityCall,
		ContactID:   contact.ID,
		DealID:      deal.ID,
		Description: "Kickoff call",
	})
	require.NoError(t, err)
	assert.True(t, activity.Date.Equal(fixedNow), "date defaults to creation time")
	assert.Equal(t, deal.ID, activity.DealID)

	gotActivity, err := activities.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(activity, *gotActivity))
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	deals := newGateway(sqliteBackend(t), DealSchema)

	deal, err := deals.Create(ctx, models.Deal{Title: "Renewal", Value: 900, Stage: models.StageLead, Probability: 10})
	require.NoError(t, err)

	updated, err := deals.Update(ctx, deal.ID, models.DealPatch{Stage: models.Ptr(models.StageNegotiation)})
	require.NoError(t, err)

	want := deal
	want.Stage = models.StageNegotiation
	assert.Empty(t, cmp.Diff(want, updated))
}

func TestDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	tasks := newGateway(sqliteBackend(t), TaskSchema)

	keep, err := tasks.Create(ctx, models.Task{Title: "keep", DueDate: day(2026, 4, 1), Priority: models.PriorityLow})
	require.NoError(t, err)
	drop, err := tasks.Create(ctx, models.Task{Title: "drop", DueDate: day(2026, 3, 1), Priority: models.PriorityLow})
	require.NoError(t, err)

	ok, err := tasks.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := tasks.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := tasks.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	_, err = tasks.Delete(ctx, drop.ID)
	assert.ErrorIs(t, err, models.ErrPartialBatch, "deleting twice reports the backend's failure")
}

func TestGetAllUsesKindOrder(t *testing.T) {
	ctx := context.Background()
	tasks := newGateway(sqliteBackend(t), TaskSchema)

	for _, d := range []int{15, 3, 9} {
		_, err := tasks.Create(ctx, models.Task{Title: "t", DueDate: day(2026, 5, d), Priority: models.PriorityMedium})
		require.NoError(t, err)
	}

	all, err := tasks.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].DueDate.Day())
	assert.Equal(t, 9, all[1].DueDate.Day())
	assert.Equal(t, 15, all[2].DueDate.Day())
}

func TestGetAllEmptyIsNotNil(t *testing.T) {
	contacts := newGateway(sqliteBackend(t), ContactSchema)
	all, err := contacts.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGetByIDNonNumericIsAbsent(t *testing.T) {
	contacts := newGateway(sqliteBackend(t), ContactSchema)
	got, err := contacts.GetByID(context.Background(), "01HZX3ULIDISH")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRoundTripOverHTTP(t *testing.T) {
	srv := httptest.NewServer(records.NewHandler(sqliteBackend(t), records.HandlerOptions{ProjectID: "p", PublicKey: "k"}))
	defer srv.Close()

	client, err := records.NewClient(records.ClientOptions{BaseURL: srv.URL, ProjectID: "p", PublicKey: "k"})
	require.NoError(t, err)

	ctx := context.Background()
	tasks := newGateway(client, TaskSchema)

	task, err := tasks.Create(ctx, models.Task{Title: "Follow up", DueDate: day(2026, 7, 1), Priority: models.PriorityLow})
	require.NoError(t, err)

	toggled, err := tasks.Update(ctx, task.ID, models.TaskPatch{Completed: models.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, "Follow up", toggled.Title)
}

// scripted is a backend whose responses are set per test.
type scripted struct {
	err      error
	batch    *records.BatchResponse
	fetch    *records.FetchResponse
	received []records.Record
}

func (s *scripted) FetchRecords(context.Context, string, records.FetchParams) (*records.FetchResponse, error) {
	return s.fetch, s.err
}

func (s *scripted) GetRecordByID(context.Context, string, int64, []string) (*records.GetResponse, error) {
	return &records.GetResponse{Success: true}, s.err
}

func (s *scripted) CreateRecord(_ context.Context, _ string, recs []records.Record) (*records.BatchResponse, error) {
	s.received = recs
	return s.batch, s.err
}

func (s *scripted) UpdateRecord(_ context.Context, _ string, recs []records.Record) (*records.BatchResponse, error) {
	s.received = recs
	return s.batch, s.err
}

func (s *scripted) DeleteRecord(context.Context, string, []int64) (*records.BatchResponse, error) {
	return s.batch, s.err
}

func TestPartialBatchUsesFirstFailureMessage(t *testing.T) {
	backend := &scripted{batch: &records.BatchResponse{Success: true, Results: []records.Result{
		{Success: false, Message: "title is required"},
		{Success: false, Message: "second failure"},
	}}}
	deals := newGateway(backend, DealSchema)

	_, err := deals.Create(context.Background(), models.Deal{Title: "x", Stage: models.StageLead})
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())
	assert.ErrorIs(t, err, models.ErrPartialBatch)

	var opErr *models.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, models.KindDeal, opErr.Kind)
	assert.Equal(t, "create", opErr.Op)
}

func TestTransportFailureUsesFallbackMessage(t *testing.T) {
	backend := &scripted{err: errors.New("connection refused")}
	contacts := newGateway(backend, ContactSchema)

	_, err := contacts.GetAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch contact", err.Error())
	assert.ErrorIs(t, err, models.ErrBackend)
	assert.ErrorContains(t, errors.Unwrap(err), "connection refused")
}

func TestBackendReportedFetchFailure(t *testing.T) {
	backend := &scripted{fetch: &records.FetchResponse{Success: false, Message: "invalid public key"}}
	tasks := newGateway(backend, TaskSchema)

	_, err := tasks.GetAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, "invalid public key", err.Error())
}

func TestAllowListDropsUnknownKeys(t *testing.T) {
	schema := ContactSchema
	schema.Encode = func(c models.Contact) (records.Record, error) {
		r, err := ContactSchema.Encode(c)
		r["internal_score"] = 99
		return r, err
	}
	backend := &scripted{batch: &records.BatchResponse{Success: true, Results: []records.Result{
		{Success: true, Data: records.Record{"Id": float64(5), "Name": "Ada", "Tags": "vip"}},
	}}}
	contacts := newGateway(backend, schema)

	created, err := contacts.Create(context.Background(), models.Contact{Name: "Ada", Tags: []string{"vip"}})
	require.NoError(t, err)
	assert.Equal(t, models.ID("5"), created.ID)

	require.Len(t, backend.received, 1)
	assert.NotContains(t, backend.received[0], "internal_score")
	assert.Equal(t, "vip", backend.received[0][records.FieldTags])
}

func TestUpdateSendsIdAndPatchOnly(t *testing.T) {
	backend := &scripted{batch: &records.BatchResponse{Success: true, Results: []records.Result{
		{Success: true, Data: records.Record{"Id": float64(3), "title": "t", "completed": true, "due_date": "2026-01-02"}},
	}}}
	tasks := newGateway(backend, TaskSchema)

	_, err := tasks.Update(context.Background(), "3", models.TaskPatch{Completed: models.Ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, records.Record{"Id": int64(3), "completed": true}, backend.received[0])
}

func TestInvalidReferenceIsRejected(t *testing.T) {
	tasks := newGateway(&scripted{}, TaskSchema)
	_, err := tasks.Create(context.Background(), models.Task{Title: "t", ContactID: "not-a-number", DueDate: day(2026, 1, 1), Priority: models.PriorityLow})
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestUnwrapBatch(t *testing.T) {
	_, msg, err := UnwrapBatch(&records.BatchResponse{Success: false, Message: "quota exceeded"})
	assert.ErrorIs(t, err, models.ErrBackend)
	assert.Equal(t, "quota exceeded", msg)

	_, _, err = UnwrapBatch(&records.BatchResponse{Success: true})
	assert.ErrorIs(t, err, models.ErrBackend)

	data, _, err := UnwrapBatch(&records.BatchResponse{Success: true, Results: []records.Result{{Success: true, Data: records.Record{"Id": 1}}}})
	require.NoError(t, err)
	assert.Equal(t, records.Record{"Id": 1}, data)
}
