package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeRow goes through encoding/json so values carry the types a real
// response produces: numbers as float64, nulls as nil.
func decodeRow(t *testing.T, raw string) Row {
	t.Helper()
	var r Row
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestRow_Presence(t *testing.T) {
	r := decodeRow(t, `{"name":"Ada","deleted_at":null}`)

	v, ok := r.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.True(t, r.Has("deleted_at"))
	assert.False(t, r.Has("missing"))

	assert.True(t, r.IsNull("deleted_at"))
	assert.False(t, r.IsNull("name"))
	assert.False(t, r.IsNull("missing"))
}

func TestRow_Keys(t *testing.T) {
	r := decodeRow(t, `{"zeta":1,"alpha":2,"mid":3}`)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Keys())
}

func TestRow_String(t *testing.T) {
	r := decodeRow(t, `{"name":"Ada","hits":42,"score":1.5,"active":true,"gone":null}`)

	assert.Equal(t, "Ada", r.String("name"))
	assert.Equal(t, "42", r.String("hits"))
	assert.Equal(t, "1.5", r.String("score"))
	assert.Equal(t, "true", r.String("active"))
	assert.Equal(t, "", r.String("gone"))
	assert.Equal(t, "", r.String("missing"))
}

func TestRow_Int(t *testing.T) {
	r := decodeRow(t, `{"hits":42,"score":1.9,"text":"17","junk":"abc","gone":null}`)

	assert.Equal(t, int64(42), r.Int("hits"))
	assert.Equal(t, int64(1), r.Int("score"), "fractional part truncates")
	assert.Equal(t, int64(17), r.Int("text"))
	assert.Equal(t, int64(0), r.Int("junk"))
	assert.Equal(t, int64(0), r.Int("gone"))
	assert.Equal(t, int64(0), r.Int("missing"))
}

func TestRow_Float(t *testing.T) {
	r := decodeRow(t, `{"score":1.5,"hits":42,"text":"2.25","junk":"abc"}`)

	assert.Equal(t, 1.5, r.Float("score"))
	assert.Equal(t, 42.0, r.Float("hits"))
	assert.Equal(t, 2.25, r.Float("text"))
	assert.Equal(t, 0.0, r.Float("junk"))
	assert.Equal(t, 0.0, r.Float("missing"))
}

func TestRow_Bool(t *testing.T) {
	r := decodeRow(t, `{"active":true,"off":false,"text":"true","junk":"maybe","num":1}`)

	assert.True(t, r.Bool("active"))
	assert.False(t, r.Bool("off"))
	assert.True(t, r.Bool("text"))
	assert.False(t, r.Bool("junk"))
	assert.False(t, r.Bool("num"), "numbers do not coerce")
	assert.False(t, r.Bool("missing"))
}

func TestRow_Time(t *testing.T) {
	r := decodeRow(t, `{
		"tz":"2025-06-01T12:30:00.5Z",
		"naive":"2025-06-01T12:30:00",
		"date":"2025-06-01",
		"junk":"yesterday",
		"num":42
	}`)

	tz := r.Time("tz")
	require.False(t, tz.IsZero())
	assert.Equal(t, 2025, tz.Year())
	assert.Equal(t, 500*time.Millisecond, time.Duration(tz.Nanosecond()))

	naive := r.Time("naive")
	require.False(t, naive.IsZero())
	assert.Equal(t, 12, naive.Hour())

	date := r.Time("date")
	require.False(t, date.IsZero())
	assert.Equal(t, time.June, date.Month())

	assert.True(t, r.Time("junk").IsZero())
	assert.True(t, r.Time("num").IsZero())
	assert.True(t, r.Time("missing").IsZero())
}
