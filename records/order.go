// ABOUTME: In-memory ordering, paging, and projection for record backends
// ABOUTME: Used by stores that cannot push ORDER BY / LIMIT down to a query engine
package records

import (
	"sort"
	"strings"
)

// SortRecords stably orders recs by each OrderBy in turn. Missing values
// sort first ascending and last descending, like SQLite NULLs.
func SortRecords(recs []Record, orderBy []OrderBy) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, o := range orderBy {
			c := compare(recs[i][o.FieldName], recs[j][o.FieldName])
			if c == 0 {
				continue
			}
			if strings.EqualFold(o.SortType, SortDesc) {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Page applies paging, clamping the limit to MaxPageSize.
func Page(recs []Record, p *PagingInfo) []Record {
	limit, offset := MaxPageSize, 0
	if p != nil {
		if p.Limit > 0 && p.Limit < MaxPageSize {
			limit = p.Limit
		}
		if p.Offset > 0 {
			offset = p.Offset
		}
	}
	if offset >= len(recs) {
		return []Record{}
	}
	end := offset + limit
	if end > len(recs) {
		end = len(recs)
	}
	return recs[offset:end]
}

// Project returns a copy of r restricted to fields. Id is always kept.
// An empty field list keeps everything.
func Project(r Record, fields []string) Record {
	out := make(Record, len(r))
	if len(fields) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	out[FieldID] = r[FieldID]
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

func compare(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	af, aNum := number(a)
	bf, bNum := number(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(String(a), String(b))
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return Float(v)
	}
	return 0, false
}

// WithTiebreak appends an Id ordering in the direction of the first entry,
// so rows with equal sort keys come back in a stable order.
func WithTiebreak(orderBy []OrderBy) []OrderBy {
	dir := SortAsc
	for _, o := range orderBy {
		if o.FieldName == FieldID {
			return orderBy
		}
	}
	if len(orderBy) > 0 && strings.EqualFold(orderBy[0].SortType, SortDesc) {
		dir = SortDesc
	}
	out := append([]OrderBy{}, orderBy...)
	return append(out, OrderBy{FieldName: FieldID, SortType: dir})
}
