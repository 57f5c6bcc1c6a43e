// ABOUTME: SQLite implementation of the record-service Backend
// ABOUTME: Stores the four CRM tables locally with the hosted service's batch semantics
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/crmsync/records"
)

// RecordStore serves the record-service contract from a SQLite database.
// Batch writes are applied record by record; one failing record does not
// undo the others.
type RecordStore struct {
	db    *sql.DB
	owner string
	now   func() time.Time
}

var _ records.Backend = (*RecordStore)(nil)

// NewRecordStore wraps an opened database. owner is written to the Owner,
// CreatedBy and ModifiedBy columns.
func NewRecordStore(db *sql.DB, owner string) *RecordStore {
	if owner == "" {
		owner = "local"
	}
	return &RecordStore{db: db, owner: owner, now: time.Now}
}

func lookupTable(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// writable reports whether callers may set field on t.
func (t Table) writable(field string) bool {
	if field == records.FieldName || field == records.FieldTags {
		return true
	}
	for _, c := range t.Columns {
		if c.Name == field {
			return true
		}
	}
	return false
}

// readable reports whether field exists on t at all.
func (t Table) readable(field string) bool {
	for _, f := range records.SystemFields {
		if f == field {
			return true
		}
	}
	return t.writable(field)
}

func (s *RecordStore) FetchRecords(ctx context.Context, table string, params records.FetchParams) (*records.FetchResponse, error) {
	t, ok := lookupTable(table)
	if !ok {
		return &records.FetchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	cols, err := t.selectList(params.Fields)
	if err != nil {
		return &records.FetchResponse{Success: false, Message: err.Error()}, nil
	}

	var order []string
	for _, o := range records.WithTiebreak(params.OrderBy) {
		if !t.readable(o.FieldName) {
			return &records.FetchResponse{Success: false, Message: fmt.Sprintf("unknown field %q", o.FieldName)}, nil
		}
		dir := "ASC"
		if strings.EqualFold(o.SortType, records.SortDesc) {
			dir = "DESC"
		}
		order = append(order, fmt.Sprintf("%q %s", o.FieldName, dir))
	}

	limit, offset := records.MaxPageSize, 0
	if p := params.PagingInfo; p != nil {
		if p.Limit > 0 && p.Limit < records.MaxPageSize {
			limit = p.Limit
		}
		if p.Offset > 0 {
			offset = p.Offset
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %q ORDER BY %s LIMIT ? OFFSET ?", cols, t.Name, strings.Join(order, ", "))
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	defer rows.Close()

	data, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	return &records.FetchResponse{Success: true, Data: data}, nil
}

func (s *RecordStore) GetRecordByID(ctx context.Context, table string, id int64, fields []string) (*records.GetResponse, error) {
	t, ok := lookupTable(table)
	if !ok {
		return &records.GetResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}
	cols, err := t.selectList(fields)
	if err != nil {
		return &records.GetResponse{Success: false, Message: err.Error()}, nil
	}

	rec, err := s.get(ctx, t, cols, id)
	if err != nil {
		return nil, err
	}
	return &records.GetResponse{Success: true, Data: rec}, nil
}

func (s *RecordStore) CreateRecord(ctx context.Context, table string, recs []records.Record) (*records.BatchResponse, error) {
	t, ok := lookupTable(table)
	if !ok {
		return &records.BatchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	out := &records.BatchResponse{Success: true}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Results = append(out.Results, s.insert(ctx, t, r))
	}
	return out, nil
}

func (s *RecordStore) UpdateRecord(ctx context.Context, table string, recs []records.Record) (*records.BatchResponse, error) {
	t, ok := lookupTable(table)
	if !ok {
		return &records.BatchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	out := &records.BatchResponse{Success: true}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Results = append(out.Results, s.update(ctx, t, r))
	}
	return out, nil
}

func (s *RecordStore) DeleteRecord(ctx context.Context, table string, ids []int64) (*records.BatchResponse, error) {
	t, ok := lookupTable(table)
	if !ok {
		return &records.BatchResponse{Success: false, Message: fmt.Sprintf("unknown table %q", table)}, nil
	}

	out := &records.BatchResponse{Success: true}
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q WHERE Id = ?", t.Name), id)
		if err != nil {
			out.Results = append(out.Results, records.Failed("failed to delete record %d: %v", id, err))
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			out.Results = append(out.Results, records.Failed("record %d not found", id))
			continue
		}
		out.Results = append(out.Results, records.Result{Success: true, Data: records.Record{records.FieldID: id}})
	}
	return out, nil
}

func (s *RecordStore) insert(ctx context.Context, t Table, r records.Record) records.Result {
	keys, args, err := t.assignments(r, false)
	if err != nil {
		return records.Failed("%v", err)
	}

	stamp := s.now().UTC().Format(records.TimestampFormat)
	keys = append(keys, records.FieldOwner, records.FieldCreatedOn, records.FieldCreatedBy, records.FieldModifiedOn, records.FieldModifiedBy)
	args = append(args, s.owner, stamp, s.owner, stamp, s.owner)

	quoted := make([]string, len(keys))
	marks := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
		marks[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", t.Name, strings.Join(quoted, ", "), strings.Join(marks, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return records.Failed("%v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return records.Failed("%v", err)
	}

	saved, err := s.get(ctx, t, "*", id)
	if err != nil || saved == nil {
		return records.Failed("record %d was not readable after insert", id)
	}
	return records.Result{Success: true, Data: saved}
}

func (s *RecordStore) update(ctx context.Context, t Table, r records.Record) records.Result {
	id, ok := records.RecordID(r)
	if !ok {
		return records.Failed("record Id is required")
	}
	keys, args, err := t.assignments(r, true)
	if err != nil {
		return records.Failed("%v", err)
	}

	keys = append(keys, records.FieldModifiedOn, records.FieldModifiedBy)
	args = append(args, s.now().UTC().Format(records.TimestampFormat), s.owner)

	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = fmt.Sprintf("%q = ?", k)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %q SET %s WHERE Id = ?", t.Name, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return records.Failed("%v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return records.Failed("record %d not found", id)
	}

	saved, err := s.get(ctx, t, "*", id)
	if err != nil || saved == nil {
		return records.Failed("record %d was not readable after update", id)
	}
	return records.Result{Success: true, Data: saved}
}

func (s *RecordStore) get(ctx context.Context, t Table, cols string, id int64) (records.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %q WHERE Id = ?", cols, t.Name), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", t.Name, id, err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", t.Name, id, err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// selectList renders the column list for fields; Id is always included.
func (t Table) selectList(fields []string) (string, error) {
	if len(fields) == 0 {
		return "*", nil
	}
	cols := []string{`"Id"`}
	for _, f := range fields {
		if f == records.FieldID {
			continue
		}
		if !t.readable(f) {
			return "", fmt.Errorf("unknown field %q", f)
		}
		cols = append(cols, fmt.Sprintf("%q", f))
	}
	return strings.Join(cols, ", "), nil
}

// assignments returns the writable keys of r in a stable order together
// with their SQL arguments.
func (t Table) assignments(r records.Record, skipID bool) ([]string, []any, error) {
	keys := make([]string, 0, len(r))
	for k := range r {
		if k == records.FieldID {
			if skipID {
				continue
			}
			return nil, nil, errors.New("record Id is assigned by the store")
		}
		if !t.writable(k) {
			return nil, nil, fmt.Errorf("field %q is not writable on %s", k, t.Name)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, len(keys))
	for i, k := range keys {
		v, err := sqlValue(r[k])
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", k, err)
		}
		args[i] = v
	}
	return keys, args, nil
}

func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, float64, int64, int:
		return x, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}

func scanRecords(rows *sql.Rows) ([]records.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []records.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(records.Record, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = values[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
