// ABOUTME: Tests for the Charm KV record store using a local badger client
// ABOUTME: Covers id allocation, ordering, patch merge, and not-found results

package charm

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/crmsync/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s := NewRecordStore(NewTestClient(t), "tester")
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func TestCharmCreateAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	resp, err := s.CreateRecord(ctx, records.TableContact, []records.Record{{"Name": "Ada"}, {"Name": "Grace"}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	first, _ := records.RecordID(resp.Results[0].Data)
	second, _ := records.RecordID(resp.Results[1].Data)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, "tester", resp.Results[0].Data[records.FieldOwner])

	got, err := s.GetRecordByID(ctx, records.TableContact, 2, []string{"Name"})
	require.NoError(t, err)
	assert.Equal(t, records.Record{"Id": float64(2), "Name": "Grace"}, got.Data)
}

func TestCharmRejectsSystemFields(t *testing.T) {
	s := newTestStore(t)

	resp, err := s.CreateRecord(context.Background(), records.TableDeal, []records.Record{
		{"title": "ok"},
		{"title": "bad", records.FieldCreatedOn: "yesterday"},
		{"Id": 5, "title": "bad"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.False(t, resp.Results[2].Success)
}

func TestCharmFetchOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := s.CreateRecord(ctx, records.TableDeal, []records.Record{{"title": title}})
		require.NoError(t, err)
	}

	resp, err := s.FetchRecords(ctx, records.TableDeal, records.FetchParams{
		Fields:     []string{"title"},
		OrderBy:    []records.OrderBy{{FieldName: records.FieldCreatedOn, SortType: records.SortDesc}},
		PagingInfo: &records.PagingInfo{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "three", resp.Data[0]["title"])
	assert.Equal(t, "two", resp.Data[1]["title"])
	assert.NotContains(t, resp.Data[0], records.FieldOwner, "fields projects the record")
}

func TestCharmUpdateMergesPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRecord(ctx, records.TableTask, []records.Record{{"title": "Call back", "completed": false}})
	require.NoError(t, err)

	resp, err := s.UpdateRecord(ctx, records.TableTask, []records.Record{
		{"Id": float64(1), "completed": true},
		{"Id": float64(7), "completed": true},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, true, resp.Results[0].Data["completed"])
	assert.Equal(t, "Call back", resp.Results[0].Data["title"])
	assert.Equal(t, "2026-05-01T08:02:00.000Z", resp.Results[0].Data[records.FieldModifiedOn])

	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "record 7 not found", resp.Results[1].Message)
}

func TestCharmDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRecord(ctx, records.TableActivity, []records.Record{{"type": "note", "description": "hi"}})
	require.NoError(t, err)

	resp, err := s.DeleteRecord(ctx, records.TableActivity, []int64{1, 1})
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)

	all, err := s.FetchRecords(ctx, records.TableActivity, records.FetchParams{})
	require.NoError(t, err)
	assert.Empty(t, all.Data)

	next, err := s.CreateRecord(ctx, records.TableActivity, []records.Record{{"type": "note", "description": "again"}})
	require.NoError(t, err)
	id, _ := records.RecordID(next.Results[0].Data)
	assert.Equal(t, int64(2), id, "ids are not reused")
}

func TestCharmUnknownTable(t *testing.T) {
	s := newTestStore(t)
	resp, err := s.FetchRecords(context.Background(), "widgets", records.FetchParams{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}
