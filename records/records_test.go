// ABOUTME: Tests for the record-service contract helpers, HTTP client, and handler
// ABOUTME: Runs the client against the handler over httptest with a fake backend
package records

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	lastTable  string
	lastParams FetchParams
	lastFields []string
	lastRecs   []Record
	lastIDs    []int64
	rows       []Record
}

func (f *fakeBackend) FetchRecords(_ context.Context, table string, params FetchParams) (*FetchResponse, error) {
	f.lastTable, f.lastParams = table, params
	return &FetchResponse{Success: true, Data: f.rows}, nil
}

func (f *fakeBackend) GetRecordByID(_ context.Context, table string, id int64, fields []string) (*GetResponse, error) {
	f.lastTable, f.lastFields = table, fields
	for _, r := range f.rows {
		if rid, _ := RecordID(r); rid == id {
			return &GetResponse{Success: true, Data: r}, nil
		}
	}
	return &GetResponse{Success: true}, nil
}

func (f *fakeBackend) CreateRecord(_ context.Context, table string, recs []Record) (*BatchResponse, error) {
	f.lastTable, f.lastRecs = table, recs
	out := &BatchResponse{Success: true}
	for _, r := range recs {
		if r["title"] == "" {
			out.Results = append(out.Results, Failed("title is required"))
			continue
		}
		saved := Project(r, nil)
		saved[FieldID] = 9
		out.Results = append(out.Results, Result{Success: true, Data: saved})
	}
	return out, nil
}

func (f *fakeBackend) UpdateRecord(_ context.Context, table string, recs []Record) (*BatchResponse, error) {
	f.lastTable, f.lastRecs = table, recs
	return &BatchResponse{Success: true, Results: []Result{{Success: true, Data: recs[0]}}}, nil
}

func (f *fakeBackend) DeleteRecord(_ context.Context, table string, ids []int64) (*BatchResponse, error) {
	f.lastTable, f.lastIDs = table, ids
	return &BatchResponse{Success: true, Results: []Result{{Success: true}}}, nil
}

func newTestClient(t *testing.T, backend Backend, opts HandlerOptions) *Client {
	t.Helper()
	srv := httptest.NewServer(NewHandler(backend, opts))
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{BaseURL: srv.URL + "/", ProjectID: "proj", PublicKey: "key"})
	require.NoError(t, err)
	return c
}

func TestClientFetchSendsParams(t *testing.T) {
	fb := &fakeBackend{rows: []Record{{"Id": 1, "title": "a"}}}
	c := newTestClient(t, fb, HandlerOptions{})

	params := FetchParams{
		Fields:     []string{"title"},
		OrderBy:    []OrderBy{{FieldName: "due_date", SortType: SortAsc}},
		PagingInfo: &PagingInfo{Limit: 100},
	}
	resp, err := c.FetchRecords(context.Background(), "Activity1", params)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, float64(1), resp.Data[0]["Id"], "numbers arrive as JSON floats")
	assert.Equal(t, "Activity1", fb.lastTable)
	assert.Equal(t, params, fb.lastParams)
}

func TestClientGetByIDPassesFields(t *testing.T) {
	fb := &fakeBackend{rows: []Record{{"Id": 4, "title": "x"}}}
	c := newTestClient(t, fb, HandlerOptions{})

	resp, err := c.GetRecordByID(context.Background(), "deal", 4, []string{"title", "stage"})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Data["title"])
	assert.Equal(t, []string{"title", "stage"}, fb.lastFields)

	missing, err := c.GetRecordByID(context.Background(), "deal", 5, nil)
	require.NoError(t, err)
	assert.True(t, missing.Success)
	assert.Nil(t, missing.Data)
}

func TestClientBatchOperations(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb, HandlerOptions{})
	ctx := context.Background()

	created, err := c.CreateRecord(ctx, "deal", []Record{{"title": "ok"}, {"title": ""}})
	require.NoError(t, err)
	require.Len(t, created.Results, 2)
	assert.True(t, created.Results[0].Success)
	assert.False(t, created.Results[1].Success)
	assert.Equal(t, "title is required", created.Results[1].Message)

	_, err = c.UpdateRecord(ctx, "deal", []Record{{"Id": 9, "stage": "lead"}})
	require.NoError(t, err)
	assert.Equal(t, "lead", fb.lastRecs[0]["stage"])

	_, err = c.DeleteRecord(ctx, "deal", []int64{9})
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, fb.lastIDs)
}

func TestHandlerRejectsWrongCredentials(t *testing.T) {
	fb := &fakeBackend{}
	srv := httptest.NewServer(NewHandler(fb, HandlerOptions{ProjectID: "other"}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: srv.URL, ProjectID: "proj", PublicKey: "key"})
	require.NoError(t, err)

	resp, err := c.FetchRecords(context.Background(), "contact", FetchParams{})
	require.NoError(t, err, "backend-reported failures are not transport errors")
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown project", resp.Message)
}

func TestClientTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: srv.URL, ProjectID: "p", PublicKey: "k"})
	require.NoError(t, err)

	_, err = c.FetchRecords(context.Background(), "contact", FetchParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClientSendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: srv.URL, ProjectID: "p1", PublicKey: "k1"})
	require.NoError(t, err)
	_, err = c.FetchRecords(context.Background(), "contact", FetchParams{})
	require.NoError(t, err)

	assert.Equal(t, "p1", got.Get(HeaderProjectID))
	assert.Equal(t, "k1", got.Get(HeaderPublicKey))
	assert.NotEmpty(t, got.Get(HeaderRequestID))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseURL: "http://x"})
	assert.Error(t, err)
	_, err = NewClient(ClientOptions{ProjectID: "p", PublicKey: "k"})
	assert.Error(t, err)
}

func TestSortRecordsMixedTypes(t *testing.T) {
	recs := []Record{
		{"Id": int64(1), "due_date": "2026-03-02"},
		{"Id": int64(2), "due_date": nil},
		{"Id": int64(3), "due_date": "2026-01-15"},
	}
	SortRecords(recs, []OrderBy{{FieldName: "due_date", SortType: SortAsc}})
	ids := []int64{}
	for _, r := range recs {
		id, _ := RecordID(r)
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)

	SortRecords(recs, []OrderBy{{FieldName: "Id", SortType: SortDesc}})
	first, _ := RecordID(recs[0])
	assert.Equal(t, int64(3), first)
}

func TestPageClampsToMax(t *testing.T) {
	recs := make([]Record, 150)
	for i := range recs {
		recs[i] = Record{"Id": i}
	}
	assert.Len(t, Page(recs, nil), MaxPageSize)
	assert.Len(t, Page(recs, &PagingInfo{Limit: 500}), MaxPageSize)
	assert.Len(t, Page(recs, &PagingInfo{Limit: 10, Offset: 145}), 5)
	assert.Empty(t, Page(recs, &PagingInfo{Offset: 200}))
}

func TestCoercions(t *testing.T) {
	n, ok := Int("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	n, ok = Int(float64(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = Int("abc")
	assert.False(t, ok)

	f, ok := Float("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)

	assert.True(t, Bool(int64(1)))
	assert.True(t, Bool("true"))
	assert.False(t, Bool(nil))
	assert.Equal(t, "12", String(float64(12)))
}
