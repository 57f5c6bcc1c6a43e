// ABOUTME: Remote data gateway translating entity operations into record-service calls
// ABOUTME: Applies allow-lists and coercion, unwraps single-record batches, and logs failures once

package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

// Gateway serves one entity kind from a records.Backend.
type Gateway[T models.Entity[T], P models.Patch[T]] struct {
	backend records.Backend
	schema  Schema[T, P]
	logger  *zap.Logger
	now     func() time.Time
}

func New[T models.Entity[T], P models.Patch[T]](backend records.Backend, schema Schema[T, P], logger *zap.Logger) *Gateway[T, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway[T, P]{
		backend: backend,
		schema:  schema,
		logger:  logger.With(zap.String("kind", string(schema.Kind))),
		now:     time.Now,
	}
}

// GetAll returns the first page of the collection in the kind's default order.
func (g *Gateway[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return g.GetPage(ctx, 0)
}

// GetPage returns up to one page starting at offset, in default order.
func (g *Gateway[T, P]) GetPage(ctx context.Context, offset int) ([]T, error) {
	resp, err := g.backend.FetchRecords(ctx, g.schema.Table, records.FetchParams{
		OrderBy:    g.schema.Order,
		PagingInfo: &records.PagingInfo{Limit: records.MaxPageSize, Offset: offset},
	})
	if err != nil {
		return nil, g.fail("fetch", "", "", models.ErrBackend, err)
	}
	if !resp.Success {
		return nil, g.fail("fetch", "", resp.Message, models.ErrBackend, nil)
	}

	out := make([]T, 0, len(resp.Data))
	for _, r := range resp.Data {
		out = append(out, g.schema.Decode(r))
	}
	return out, nil
}

// GetByID returns nil with no error when the record does not exist.
func (g *Gateway[T, P]) GetByID(ctx context.Context, id models.ID) (*T, error) {
	rid, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	resp, err := g.backend.GetRecordByID(ctx, g.schema.Table, rid, nil)
	if err != nil {
		return nil, g.fail("get", id, "", models.ErrBackend, err)
	}
	if !resp.Success {
		return nil, g.fail("get", id, resp.Message, models.ErrBackend, nil)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	item := g.schema.Decode(resp.Data)
	return &item, nil
}

// Create sends item as a single-record batch and returns the stored record.
func (g *Gateway[T, P]) Create(ctx context.Context, item T) (T, error) {
	var zero T

	rec, err := g.schema.Encode(item.Stamp("", g.now()))
	if err != nil {
		return zero, g.invalid("create", "", err)
	}
	rec = g.allow(rec)

	resp, err := g.backend.CreateRecord(ctx, g.schema.Table, []records.Record{rec})
	if err != nil {
		return zero, g.fail("create", "", "", models.ErrBackend, err)
	}
	data, msg, sentinel := UnwrapBatch(resp)
	if sentinel != nil {
		return zero, g.fail("create", "", msg, sentinel, nil)
	}
	return g.confirmed(ctx, "create", "", data)
}

// Update sends only the supplied patch fields plus Id.
func (g *Gateway[T, P]) Update(ctx context.Context, id models.ID, patch P) (T, error) {
	var zero T

	rid, ok := parseID(id)
	if !ok {
		return zero, models.NotFound(g.schema.Kind, "update", id)
	}
	rec, err := g.schema.EncodePatch(patch)
	if err != nil {
		return zero, g.invalid("update", id, err)
	}
	rec = g.allow(rec)
	rec[records.FieldID] = rid

	resp, err := g.backend.UpdateRecord(ctx, g.schema.Table, []records.Record{rec})
	if err != nil {
		return zero, g.fail("update", id, "", models.ErrBackend, err)
	}
	data, msg, sentinel := UnwrapBatch(resp)
	if sentinel != nil {
		return zero, g.fail("update", id, msg, sentinel, nil)
	}
	return g.confirmed(ctx, "update", id, data)
}

// Delete removes the record; any failed result fails the call.
func (g *Gateway[T, P]) Delete(ctx context.Context, id models.ID) (bool, error) {
	rid, ok := parseID(id)
	if !ok {
		return false, models.NotFound(g.schema.Kind, "delete", id)
	}
	resp, err := g.backend.DeleteRecord(ctx, g.schema.Table, []int64{rid})
	if err != nil {
		return false, g.fail("delete", id, "", models.ErrBackend, err)
	}
	if _, msg, sentinel := UnwrapBatch(resp); sentinel != nil {
		return false, g.fail("delete", id, msg, sentinel, nil)
	}
	return true, nil
}

// confirmed decodes the record a batch handed back. Backends that only echo
// the Id are read back so callers always see the stored version.
func (g *Gateway[T, P]) confirmed(ctx context.Context, op string, id models.ID, data records.Record) (T, error) {
	var zero T
	if len(data) > 1 {
		return g.schema.Decode(data), nil
	}

	stored := decodeID(data[records.FieldID])
	if stored == "" {
		stored = id
	}
	item, err := g.GetByID(ctx, stored)
	if err != nil {
		return zero, err
	}
	if item == nil {
		return zero, g.fail(op, stored, "", models.ErrBackend, nil)
	}
	return *item, nil
}

// allow drops every key outside the schema's allow-list.
func (g *Gateway[T, P]) allow(rec records.Record) records.Record {
	allowed := make(map[string]bool, len(g.schema.Fields))
	for _, f := range g.schema.Fields {
		allowed[f] = true
	}

	out := make(records.Record, len(rec))
	for k, v := range rec {
		if !allowed[k] {
			g.logger.Debug("dropping field outside allow-list", zap.String("field", k))
			continue
		}
		out[k] = v
	}
	return out
}

func (g *Gateway[T, P]) invalid(op string, id models.ID, err error) error {
	return &models.OpError{Kind: g.schema.Kind, Op: op, ID: id, Message: err.Error(), Err: models.ErrInvalid}
}

// fail builds the error for a failed call and logs it. message is the
// backend's explanation, if any.
func (g *Gateway[T, P]) fail(op string, id models.ID, message string, sentinel, cause error) error {
	if message == "" {
		message = models.FallbackMessage(op, g.schema.Kind)
	}
	wrapped := sentinel
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", sentinel, cause)
	}

	g.logger.Error("record service call failed",
		zap.String("op", op),
		zap.String("id", string(id)),
		zap.String("message", message),
		zap.Error(wrapped),
	)
	return &models.OpError{Kind: g.schema.Kind, Op: op, ID: id, Message: message, Err: wrapped}
}

// UnwrapBatch returns the data of the single submitted record. When the batch
// or any of its results failed it returns the first failure's message and the
// sentinel describing it; partial successes are not surfaced.
func UnwrapBatch(resp *records.BatchResponse) (records.Record, string, error) {
	if resp == nil || !resp.Success {
		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		return nil, msg, models.ErrBackend
	}
	for _, r := range resp.Results {
		if !r.Success {
			return nil, r.Message, models.ErrPartialBatch
		}
	}
	if len(resp.Results) == 0 {
		return nil, "", models.ErrBackend
	}
	return resp.Results[0].Data, "", nil
}
