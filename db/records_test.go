// ABOUTME: Tests for the SQLite record store
// ABOUTME: Covers ordering, paging, projection, batch writes, and not-found handling
package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/crmsync/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewRecordStore(db, "tester")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return store
}

func ids(t *testing.T, recs []records.Record) []int64 {
	t.Helper()
	out := []int64{}
	for _, r := range recs {
		id, ok := records.RecordID(r)
		require.True(t, ok)
		out = append(out, id)
	}
	return out
}

func TestCreateAndGetRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resp, err := store.CreateRecord(ctx, "deal", []records.Record{{
		"title":       "Renewal",
		"value":       1200.5,
		"contact_id":  int64(3),
		"stage":       "lead",
		"probability": float64(10),
	}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.True(t, resp.Results[0].Success, resp.Results[0].Message)

	saved := resp.Results[0].Data
	id, ok := records.RecordID(saved)
	require.True(t, ok)
	assert.Equal(t, "Renewal", saved["title"])
	assert.Equal(t, 1200.5, saved["value"])
	assert.Equal(t, int64(3), saved["contact_id"])
	assert.Equal(t, "tester", saved[records.FieldCreatedBy])
	assert.Equal(t, "2026-03-01T09:00:01.000Z", saved[records.FieldCreatedOn])

	got, err := store.GetRecordByID(ctx, "deal", id, []string{"stage"})
	require.NoError(t, err)
	assert.Equal(t, records.Record{"Id": id, "stage": "lead"}, got.Data)
}

func TestGetMissingRecord(t *testing.T) {
	store := newTestStore(t)

	resp, err := store.GetRecordByID(context.Background(), "contact", 42, nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Data)
}

func TestUnknownTableAndField(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resp, err := store.FetchRecords(ctx, "widgets", records.FetchParams{})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = store.FetchRecords(ctx, "task", records.FetchParams{Fields: []string{"bogus"}})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "bogus")

	created, err := store.CreateRecord(ctx, "task", []records.Record{{"title": "x", "bogus": 1}})
	require.NoError(t, err)
	assert.False(t, created.Results[0].Success)
}

func TestFetchOrdersAndPages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var batch []records.Record
	for _, due := range []string{"2026-03-05", "2026-03-01", "2026-03-03"} {
		batch = append(batch, records.Record{"title": "task " + due, "due_date": due, "priority": "low", "completed": false})
	}
	_, err := store.CreateRecord(ctx, "task", batch)
	require.NoError(t, err)

	resp, err := store.FetchRecords(ctx, "task", records.FetchParams{
		OrderBy: []records.OrderBy{{FieldName: "due_date", SortType: records.SortAsc}},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, []int64{2, 3, 1}, ids(t, resp.Data))
	assert.Equal(t, int64(0), resp.Data[0]["completed"])

	resp, err = store.FetchRecords(ctx, "task", records.FetchParams{
		OrderBy:    []records.OrderBy{{FieldName: records.FieldCreatedOn, SortType: records.SortDesc}},
		PagingInfo: &records.PagingInfo{Limit: 2, Offset: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(t, resp.Data))
}

func TestFetchCapsPageSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var batch []records.Record
	for i := 0; i < records.MaxPageSize+5; i++ {
		batch = append(batch, records.Record{"Name": fmt.Sprintf("Contact %d", i)})
	}
	_, err := store.CreateRecord(ctx, "contact", batch)
	require.NoError(t, err)

	resp, err := store.FetchRecords(ctx, "contact", records.FetchParams{PagingInfo: &records.PagingInfo{Limit: 500}})
	require.NoError(t, err)
	assert.Len(t, resp.Data, records.MaxPageSize)
}

func TestUpdateRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecord(ctx, "deal", []records.Record{{"title": "Pilot", "stage": "lead"}})
	require.NoError(t, err)
	id, _ := records.RecordID(created.Results[0].Data)

	resp, err := store.UpdateRecord(ctx, "deal", []records.Record{
		{"Id": float64(id), "stage": "proposal"},
		{"Id": float64(999), "stage": "proposal"},
		{"stage": "proposal"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "proposal", resp.Results[0].Data["stage"])
	assert.Equal(t, "Pilot", resp.Results[0].Data["title"], "unpatched fields are kept")
	assert.NotEqual(t, resp.Results[0].Data[records.FieldCreatedOn], resp.Results[0].Data[records.FieldModifiedOn])

	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "record 999 not found", resp.Results[1].Message)
	assert.False(t, resp.Results[2].Success)
}

func TestCreateBatchIsPerRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resp, err := store.CreateRecord(ctx, "Activity1", []records.Record{
		{"type": "call", "description": "Intro call"},
		{"type": "note"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Contains(t, resp.Results[1].Message, "NOT NULL")

	all, err := store.FetchRecords(ctx, "Activity1", records.FetchParams{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 1, "the successful record stays stored")
}

func TestDeleteRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRecord(ctx, "contact", []records.Record{{"Name": "Ada"}})
	require.NoError(t, err)
	id, _ := records.RecordID(created.Results[0].Data)

	resp, err := store.DeleteRecord(ctx, "contact", []int64{id, id})
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)

	got, err := store.GetRecordByID(ctx, "contact", id, nil)
	require.NoError(t, err)
	assert.Nil(t, got.Data)
}

func TestCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.CreateRecord(ctx, "contact", []records.Record{{"Name": "Ada"}})
	assert.ErrorIs(t, err, context.Canceled)
}
