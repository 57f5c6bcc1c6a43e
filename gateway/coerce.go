// ABOUTME: Value coercion between typed entity fields and record-service values
// ABOUTME: Tolerates JSON floats, SQLite integers, and strings on the way in

package gateway

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/records"
)

const dateLayout = "2006-01-02"

// parseID converts an entity ID to the integer the backend expects.
func parseID(id models.ID) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// encodeRef encodes a reference to another record; the empty ID is null.
func encodeRef(field string, id models.ID) (any, error) {
	if id == "" {
		return nil, nil
	}
	n, ok := parseID(id)
	if !ok {
		return nil, fmt.Errorf("%s %q is not a record id", field, id)
	}
	return n, nil
}

func encodeDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func encodeTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func decodeID(v any) models.ID {
	if n, ok := records.Int(v); ok && n > 0 {
		return models.ID(strconv.FormatInt(n, 10))
	}
	return ""
}

func decodeInt(v any) int {
	n, _ := records.Int(v)
	return int(n)
}

func decodeFloat(v any) float64 {
	f, _ := records.Float(v)
	return f
}

// decodeDate reads a calendar date as local midnight.
func decodeDate(v any) time.Time {
	s := strings.TrimSpace(records.String(v))
	if s == "" {
		return time.Time{}
	}
	if len(s) >= len(dateLayout) {
		if t, err := time.ParseInLocation(dateLayout, s[:len(dateLayout)], time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeTime reads an RFC3339 timestamp; bare dates are read as local midnight.
func decodeTime(v any) time.Time {
	s := strings.TrimSpace(records.String(v))
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t
	}
	return decodeDate(s)
}
