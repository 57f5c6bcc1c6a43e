// ABOUTME: Wire contract of the hosted record-management service
// ABOUTME: Defines fetch/get/create/update/delete requests, batch results, and the Backend interface
package records

import (
	"context"
	"fmt"
	"strconv"
)

// Record is one stored row keyed by backend field name.
type Record map[string]any

// System fields present on every table.
const (
	FieldID         = "Id"
	FieldName       = "Name"
	FieldTags       = "Tags"
	FieldOwner      = "Owner"
	FieldCreatedOn  = "CreatedOn"
	FieldCreatedBy  = "CreatedBy"
	FieldModifiedOn = "ModifiedOn"
	FieldModifiedBy = "ModifiedBy"
)

// SystemFields are maintained by the backend, never by callers, except
// Name and Tags which tables may expose as writable.
var SystemFields = []string{
	FieldID, FieldName, FieldTags, FieldOwner,
	FieldCreatedOn, FieldCreatedBy, FieldModifiedOn, FieldModifiedBy,
}

// Table names as the hosted service knows them.
const (
	TableContact  = "contact"
	TableDeal     = "deal"
	TableTask     = "task"
	TableActivity = "Activity1"
)

var Tables = []string{TableContact, TableDeal, TableTask, TableActivity}

func KnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// TimestampFormat is how stores write CreatedOn and ModifiedOn: fixed-width
// UTC so the text sorts chronologically.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Sort directions.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// MaxPageSize caps every fetch.
const MaxPageSize = 100

type OrderBy struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"SortType"`
}

type PagingInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type FetchParams struct {
	Fields     []string    `json:"fields,omitempty"`
	OrderBy    []OrderBy   `json:"orderBy,omitempty"`
	PagingInfo *PagingInfo `json:"pagingInfo,omitempty"`
}

type FetchResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    []Record `json:"data"`
}

type GetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    Record `json:"data"`
}

// Result reports the outcome for one record of a batch.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    Record `json:"data,omitempty"`
}

type BatchResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Results []Result `json:"results"`
}

type BatchRequest struct {
	Records []Record `json:"records"`
}

type DeleteRequest struct {
	RecordIds []int64 `json:"RecordIds"`
}

// Backend speaks the record-service contract. A returned error means the
// call itself could not complete; backend-reported failures come back as
// Success=false responses or failed batch results.
type Backend interface {
	FetchRecords(ctx context.Context, table string, params FetchParams) (*FetchResponse, error)
	GetRecordByID(ctx context.Context, table string, id int64, fields []string) (*GetResponse, error)
	CreateRecord(ctx context.Context, table string, recs []Record) (*BatchResponse, error)
	UpdateRecord(ctx context.Context, table string, recs []Record) (*BatchResponse, error)
	DeleteRecord(ctx context.Context, table string, ids []int64) (*BatchResponse, error)
}

// Failed builds a failed batch result.
func Failed(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// RecordID reads the Id field of r as an integer.
func RecordID(r Record) (int64, bool) {
	return Int(r[FieldID])
}

// Int coerces JSON numbers, SQLite integers, and numeric strings.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(n, 64)
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	}
	return 0, false
}

// Float coerces numbers and numeric strings.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Bool coerces booleans, 0/1 integers, and "true"/"1" strings.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	}
	if n, ok := Int(v); ok {
		return n != 0
	}
	return false
}

// String renders scalars as text; nil becomes "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	}
	return fmt.Sprint(v)
}
