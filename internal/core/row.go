package core

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Row is a schemaless result row. It decodes from a JSON object with the
// usual encoding/json mapping (numbers arrive as float64) and offers typed
// accessors that shrug off missing keys and nulls:
//
//	var rows []pgrest.Row
//	err := client.From("events").Limit(10).All(&rows)
//	for _, r := range rows {
//	    fmt.Println(r.String("name"), r.Int("hits"))
//	}
type Row map[string]interface{}

// Get returns the raw value and whether the key is present.
func (r Row) Get(key string) (interface{}, bool) {
	v, ok := r[key]
	return v, ok
}

// Has reports whether the key is present, even when its value is null.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// IsNull reports whether the key is present with a null value.
func (r Row) IsNull(key string) bool {
	v, ok := r[key]
	return ok && v == nil
}

// Keys returns the column names in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value as a string, or "" for missing and null keys.
// Non-string values are formatted.
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Int returns the value as an int64, or 0 for missing, null and
// non-numeric keys. Numeric strings are parsed.
func (r Row) Int(key string) int64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float returns the value as a float64, or 0 for missing, null and
// non-numeric keys.
func (r Row) Float(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool returns the value as a bool, or false for missing and null keys.
func (r Row) Bool(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}

// rowTimeFormats covers the timestamp renderings PostgreSQL emits over
// JSON: RFC 3339 for timestamptz, a zoneless variant for timestamp, and
// a bare date.
var rowTimeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Time parses the value as a timestamp. The zero time is returned for
// missing, null and unparseable keys.
func (r Row) Time(key string) time.Time {
	s, ok := r[key].(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range rowTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
