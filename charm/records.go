// ABOUTME: Record-service Backend stored in Charm KV
// ABOUTME: Keeps one JSON value per record under "<table>/<id>" and syncs through charm cloud

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/crmsync/records"
)

const seqKey = "_seq"

// RecordStore implements records.Backend over a Client. Ordering and paging
// happen in memory after a prefix scan.
type RecordStore struct {
	client *Client
	owner  string
	now    func() time.Time

	// serializes id allocation and read-modify-write updates
	mu sync.Mutex
}

var _ records.Backend = (*RecordStore)(nil)

func NewRecordStore(c *Client, owner string) *RecordStore {
	if owner == "" {
		owner = "charm"
	}
	return &RecordStore{client: c, owner: owner, now: time.Now}
}

func recordKey(table string, id int64) []byte {
	return []byte(table + "/" + strconv.FormatInt(id, 10))
}

func (s *RecordStore) FetchRecords(ctx context.Context, table string, params records.FetchParams) (*records.FetchResponse, error) {
	if !records.KnownTable(table) {
		return &records.FetchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := s.scan(table)
	if err != nil {
		return nil, err
	}

	records.SortRecords(all, records.WithTiebreak(params.OrderBy))
	page := records.Page(all, params.PagingInfo)

	data := make([]records.Record, len(page))
	for i, r := range page {
		data[i] = records.Project(r, params.Fields)
	}
	return &records.FetchResponse{Success: true, Data: data}, nil
}

func (s *RecordStore) GetRecordByID(ctx context.Context, table string, id int64, fields []string) (*records.GetResponse, error) {
	if !records.KnownTable(table) {
		return &records.GetResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := s.load(table, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &records.GetResponse{Success: true}, nil
	}
	return &records.GetResponse{Success: true, Data: records.Project(rec, fields)}, nil
}

func (s *RecordStore) CreateRecord(ctx context.Context, table string, recs []records.Record) (*records.BatchResponse, error) {
	if !records.KnownTable(table) {
		return &records.BatchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := &records.BatchResponse{Success: true}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := r[records.FieldID]; ok {
			out.Results = append(out.Results, records.Failed("record Id is assigned by the store"))
			continue
		}
		if err := checkWritable(r); err != nil {
			out.Results = append(out.Results, records.Failed("%v", err))
			continue
		}

		id, err := s.nextID(table)
		if err != nil {
			out.Results = append(out.Results, records.Failed("failed to allocate id: %v", err))
			continue
		}

		stamp := s.now().UTC().Format(records.TimestampFormat)
		saved := records.Project(r, nil)
		saved[records.FieldID] = id
		saved[records.FieldOwner] = s.owner
		saved[records.FieldCreatedOn] = stamp
		saved[records.FieldCreatedBy] = s.owner
		saved[records.FieldModifiedOn] = stamp
		saved[records.FieldModifiedBy] = s.owner

		out.Results = append(out.Results, s.save(table, id, saved))
	}
	return out, nil
}

func (s *RecordStore) UpdateRecord(ctx context.Context, table string, recs []records.Record) (*records.BatchResponse, error) {
	if !records.KnownTable(table) {
		return &records.BatchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := &records.BatchResponse{Success: true}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := records.RecordID(r)
		if !ok {
			out.Results = append(out.Results, records.Failed("record Id is required"))
			continue
		}
		patch := records.Project(r, nil)
		delete(patch, records.FieldID)
		if err := checkWritable(patch); err != nil {
			out.Results = append(out.Results, records.Failed("%v", err))
			continue
		}

		current, err := s.load(table, id)
		if err != nil {
			out.Results = append(out.Results, records.Failed("%v", err))
			continue
		}
		if current == nil {
			out.Results = append(out.Results, records.Failed("record %d not found", id))
			continue
		}

		for k, v := range patch {
			current[k] = v
		}
		current[records.FieldModifiedOn] = s.now().UTC().Format(records.TimestampFormat)
		current[records.FieldModifiedBy] = s.owner

		out.Results = append(out.Results, s.save(table, id, current))
	}
	return out, nil
}

func (s *RecordStore) DeleteRecord(ctx context.Context, table string, ids []int64) (*records.BatchResponse, error) {
	if !records.KnownTable(table) {
		return &records.BatchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := &records.BatchResponse{Success: true}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current, err := s.load(table, id)
		if err != nil {
			out.Results = append(out.Results, records.Failed("%v", err))
			continue
		}
		if current == nil {
			out.Results = append(out.Results, records.Failed("record %d not found", id))
			continue
		}
		if err := s.client.Delete(recordKey(table, id)); err != nil {
			out.Results = append(out.Results, records.Failed("failed to delete record %d: %v", id, err))
			continue
		}
		out.Results = append(out.Results, records.Result{Success: true, Data: records.Record{records.FieldID: id}})
	}
	return out, nil
}

// checkWritable rejects system fields other than Name and Tags.
func checkWritable(r records.Record) error {
	for k := range r {
		switch k {
		case records.FieldOwner, records.FieldCreatedOn, records.FieldCreatedBy, records.FieldModifiedOn, records.FieldModifiedBy:
			return fmt.Errorf("field %q is maintained by the store", k)
		}
	}
	return nil
}

func (s *RecordStore) nextID(table string) (int64, error) {
	key := []byte(table + "/" + seqKey)
	var n int64
	data, err := s.client.Get(key)
	switch {
	case errors.Is(err, ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if n, err = strconv.ParseInt(string(data), 10, 64); err != nil {
			return 0, fmt.Errorf("corrupt sequence for %s: %w", table, err)
		}
	}
	n++
	if err := s.client.Set(key, []byte(strconv.FormatInt(n, 10))); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *RecordStore) save(table string, id int64, rec records.Record) records.Result {
	data, err := json.Marshal(rec)
	if err != nil {
		return records.Failed("failed to encode record %d: %v", id, err)
	}
	if err := s.client.Set(recordKey(table, id), data); err != nil {
		return records.Failed("failed to store record %d: %v", id, err)
	}
	// hand back what a later read would return
	var stored records.Record
	if err := json.Unmarshal(data, &stored); err != nil {
		return records.Failed("failed to decode record %d: %v", id, err)
	}
	return records.Result{Success: true, Data: stored}
}

func (s *RecordStore) load(table string, id int64) (records.Record, error) {
	data, err := s.client.Get(recordKey(table, id))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %d: %w", table, id, err)
	}
	var rec records.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", table, id, err)
	}
	return rec, nil
}

func (s *RecordStore) scan(table string) ([]records.Record, error) {
	prefix := table + "/"
	keys, err := s.client.KeysWithPrefix([]byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}

	out := make([]records.Record, 0, len(keys))
	for _, k := range keys {
		suffix := strings.TrimPrefix(string(k), prefix)
		id, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		rec, err := s.load(table, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}
